package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"tripvote/internal/config"
	"tripvote/pkg/logger"
)

// Record is a single row in an Airtable table.
type Record struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

type recordList struct {
	Records []Record `json:"records"`
}

type createRequest struct {
	Records []createRecord `json:"records"`
}

type createRecord struct {
	Fields map[string]interface{} `json:"fields"`
}

// Client handles all interactions with the Airtable REST API.
type Client struct {
	baseURL    string
	baseID     string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new Airtable client
func NewClient(cfg *config.Config, logger *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.AirtableAPIURL,
		baseID:  cfg.AirtableBaseID,
		token:   cfg.AirtableToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// ListRecords returns all rows of a table in store iteration order.
func (c *Client) ListRecords(ctx context.Context, table string) ([]Record, error) {
	return c.fetchRecords(ctx, c.tableURL(table))
}

// FindFirst returns the first row matching the filter formula, or nil
// when no row matches.
func (c *Client) FindFirst(ctx context.Context, table, formula string) (*Record, error) {
	u, err := url.Parse(c.tableURL(table))
	if err != nil {
		return nil, fmt.Errorf("failed to build table URL: %w", err)
	}
	q := u.Query()
	q.Set("maxRecords", "1")
	q.Set("filterByFormula", formula)
	u.RawQuery = q.Encode()

	records, err := c.fetchRecords(ctx, u.String())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// CreateRecord inserts a single row and returns it with its generated id.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (*Record, error) {
	body, err := json.Marshal(createRequest{Records: []createRecord{{Fields: fields}}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(table), bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created recordList
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	if len(created.Records) == 0 {
		return nil, fmt.Errorf("airtable create returned no records for table %s", table)
	}
	return &created.Records[0], nil
}

func (c *Client) fetchRecords(ctx context.Context, url string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var list recordList
	if err := c.do(req, &list); err != nil {
		return nil, err
	}
	return list.Records, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Airtable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Airtable %d: %s", resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"response_body": truncate(body, 200),
			"status_code":   resp.StatusCode,
		}).Error("Failed to parse Airtable response")
		return fmt.Errorf("failed to parse Airtable response: %w", err)
	}

	return nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
