package repository

import (
	"context"

	"tripvote/internal/airtable"
	"tripvote/internal/domain"
)

// AirtableOptionRepository reads and writes option rows through the
// Airtable client, one table per category.
type AirtableOptionRepository struct {
	client *airtable.Client
}

// NewAirtableOptionRepository creates a new option repository
func NewAirtableOptionRepository(client *airtable.Client) *AirtableOptionRepository {
	return &AirtableOptionRepository{client: client}
}

// List returns all options of a category in store iteration order.
// Rows without a name field are skipped.
func (r *AirtableOptionRepository) List(ctx context.Context, category domain.Category) ([]domain.Option, error) {
	records, err := r.client.ListRecords(ctx, category.Table())
	if err != nil {
		return nil, err
	}

	options := make([]domain.Option, 0, len(records))
	for _, rec := range records {
		name, ok := rec.Fields["name"].(string)
		if !ok || name == "" {
			continue
		}
		options = append(options, domain.Option{ID: rec.ID, Name: name})
	}
	return options, nil
}

// FindByName looks up an option by exact name match, nil when absent.
func (r *AirtableOptionRepository) FindByName(ctx context.Context, category domain.Category, name string) (*domain.Option, error) {
	rec, err := r.client.FindFirst(ctx, category.Table(), airtable.EqualsField("name", name))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	storedName, _ := rec.Fields["name"].(string)
	return &domain.Option{ID: rec.ID, Name: storedName}, nil
}

// Create inserts a new option row and returns it with its generated id.
func (r *AirtableOptionRepository) Create(ctx context.Context, category domain.Category, name string) (*domain.Option, error) {
	rec, err := r.client.CreateRecord(ctx, category.Table(), map[string]interface{}{
		"name": name,
	})
	if err != nil {
		return nil, err
	}
	return &domain.Option{ID: rec.ID, Name: name}, nil
}
