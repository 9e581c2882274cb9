package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"tripvote/internal/airtable"
	"tripvote/internal/config"
	"tripvote/internal/domain"
	"tripvote/internal/middleware"
	"tripvote/internal/repository"
	"tripvote/internal/service"
	"tripvote/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAirtable is an in-memory table store speaking just enough of the
// Airtable REST dialect for the repositories: list, filterByFormula
// with exact field matches, and single-record create.
type fakeAirtable struct {
	mu     sync.Mutex
	tables map[string][]airtableRow
	nextID int
	fail   bool
}

type airtableRow struct {
	ID     string                 `json:"id"`
	Fields map[string]interface{} `json:"fields"`
}

var formulaClause = regexp.MustCompile(`\{(\w+)\}="((?:[^"\\]|\\")*)"`)

func newFakeAirtable() *fakeAirtable {
	return &fakeAirtable{tables: map[string][]airtableRow{
		"Destinations": {},
		"Activities":   {},
		"Votes":        {},
	}}
}

func (f *fakeAirtable) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"SERVICE_UNAVAILABLE"}`))
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		table := parts[len(parts)-1]
		rows, ok := f.tables[table]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.Method {
		case http.MethodGet:
			matched := rows
			if formula := r.URL.Query().Get("filterByFormula"); formula != "" {
				matched = filterRows(rows, formula)
			}
			if r.URL.Query().Get("maxRecords") == "1" && len(matched) > 1 {
				matched = matched[:1]
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"records": matched})

		case http.MethodPost:
			var req struct {
				Records []struct {
					Fields map[string]interface{} `json:"fields"`
				} `json:"records"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Records) == 0 {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			f.nextID++
			row := airtableRow{
				ID:     fmt.Sprintf("rec%03d", f.nextID),
				Fields: req.Records[0].Fields,
			}
			f.tables[table] = append(rows, row)
			json.NewEncoder(w).Encode(map[string]interface{}{"records": []airtableRow{row}})

		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func filterRows(rows []airtableRow, formula string) []airtableRow {
	clauses := formulaClause.FindAllStringSubmatch(formula, -1)
	matched := make([]airtableRow, 0)
	for _, row := range rows {
		ok := true
		for _, clause := range clauses {
			field, want := clause[1], strings.ReplaceAll(clause[2], `\"`, `"`)
			if got, _ := row.Fields[field].(string); got != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, row)
		}
	}
	return matched
}

func (f *fakeAirtable) rowCount(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tables[table])
}

// newTestAPI wires the full stack (client → repositories → service →
// handler → router) against the fake store.
func newTestAPI(t *testing.T) (*fakeAirtable, *httptest.Server) {
	t.Helper()

	store := newFakeAirtable()
	storeServer := httptest.NewServer(store.handler())
	t.Cleanup(storeServer.Close)

	log, err := logger.New("error")
	require.NoError(t, err)

	cfg := &config.Config{
		AirtableAPIURL: storeServer.URL,
		AirtableBaseID: "appTEST",
		AirtableToken:  "secret",
		AllowedOrigins: []string{"*"},
	}

	client := airtable.NewClient(cfg, log)
	optionRepo := repository.NewAirtableOptionRepository(client)
	voteRepo := repository.NewAirtableVoteRepository(client)
	pollService := service.NewPollService(optionRepo, voteRepo, service.NewCacheService(nil, zap.NewNop()), zap.NewNop())
	pollHandler := NewPollHandler(pollService, log)

	r := chi.NewRouter()
	r.Use(middleware.CORS(&middleware.CORSConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}, log))
	r.Route("/api", func(r chi.Router) {
		r.Get("/options", pollHandler.GetOptions)
		r.Get("/results", pollHandler.GetResults)
		r.Post("/vote", pollHandler.SubmitVote)
	})

	apiServer := httptest.NewServer(r)
	t.Cleanup(apiServer.Close)

	return store, apiServer
}

func postVote(t *testing.T, apiURL string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(apiURL+"/api/vote", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getResults(t *testing.T, apiURL string) *domain.ResultsResponse {
	t.Helper()

	resp, err := http.Get(apiURL + "/api/results")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results domain.ResultsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	return &results
}

func TestAPI_EmptyStore(t *testing.T) {
	_, api := newTestAPI(t)

	results := getResults(t, api.URL)
	assert.Equal(t, 0, results.Destination.Total)
	assert.Empty(t, results.Destination.Rows)
	assert.Equal(t, 0, results.Activity.Total)
	assert.Empty(t, results.Activity.Rows)
}

func TestAPI_VoteThenResults(t *testing.T) {
	_, api := newTestAPI(t)

	resp, body := postVote(t, api.URL, map[string]interface{}{
		"deviceId":    "x",
		"destination": map[string]string{"type": "new", "name": "Brésil"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.Empty(t, body["warnings"])

	results := getResults(t, api.URL)
	require.Len(t, results.Destination.Rows, 1)
	assert.Equal(t, "Brésil", results.Destination.Rows[0].Name)
	assert.Equal(t, 1, results.Destination.Rows[0].Count)
	assert.Equal(t, 100, results.Destination.Rows[0].Percent)

	// The proposed destination is now listed as an option.
	optResp, err := http.Get(api.URL + "/api/options")
	require.NoError(t, err)
	defer optResp.Body.Close()

	var options domain.OptionsResponse
	require.NoError(t, json.NewDecoder(optResp.Body).Decode(&options))
	require.Len(t, options.Destinations, 1)
	assert.Equal(t, "Brésil", options.Destinations[0].Name)
}

func TestAPI_DuplicateVoteWarning(t *testing.T) {
	_, api := newTestAPI(t)

	postVote(t, api.URL, map[string]interface{}{
		"deviceId":    "x",
		"destination": map[string]string{"type": "new", "name": "Brésil"},
	})

	resp, body := postVote(t, api.URL, map[string]interface{}{
		"deviceId":    "x",
		"destination": map[string]string{"type": "new", "name": "Japon"},
		"activity":    map[string]string{"type": "new", "name": "Surf"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	warnings, ok := body["warnings"].([]interface{})
	require.True(t, ok)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Destination: déjà voté pour cet appareil.", warnings[0])

	results := getResults(t, api.URL)
	assert.Equal(t, 1, results.Destination.Total)
	assert.Equal(t, 1, results.Activity.Total)
}

func TestAPI_Validation(t *testing.T) {
	tests := []struct {
		name        string
		body        interface{}
		errContains string
	}{
		{
			name:        "missing deviceId",
			body:        map[string]interface{}{},
			errContains: "deviceId manquant",
		},
		{
			name:        "no category",
			body:        map[string]interface{}{"deviceId": "x"},
			errContains: "Aucun vote fourni",
		},
		{
			name: "name too short",
			body: map[string]interface{}{
				"deviceId":    "x",
				"destination": map[string]string{"type": "new", "name": "A"},
			},
			errContains: "nom trop court",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, api := newTestAPI(t)

			resp, body := postVote(t, api.URL, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["error"], tt.errContains)

			// No side effects on any table.
			assert.Equal(t, 0, store.rowCount("Destinations"))
			assert.Equal(t, 0, store.rowCount("Activities"))
			assert.Equal(t, 0, store.rowCount("Votes"))
		})
	}
}

func TestAPI_MalformedJSON(t *testing.T) {
	_, api := newTestAPI(t)

	resp, err := http.Post(api.URL+"/api/vote", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_StoreFailure(t *testing.T) {
	store, api := newTestAPI(t)
	store.mu.Lock()
	store.fail = true
	store.mu.Unlock()

	resp, err := http.Get(api.URL + "/api/results")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "Airtable 503")
}

func TestAPI_PreflightCORS(t *testing.T) {
	_, api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.URL+"/api/vote", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.github.io")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestAPI_ResultsETag(t *testing.T) {
	_, api := newTestAPI(t)

	first, err := http.Get(api.URL + "/api/results")
	require.NoError(t, err)
	first.Body.Close()

	etag := first.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, api.URL+"/api/results", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)

	second, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	second.Body.Close()

	assert.Equal(t, http.StatusNotModified, second.StatusCode)
}
