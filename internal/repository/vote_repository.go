package repository

import (
	"context"

	"tripvote/internal/airtable"
	"tripvote/internal/domain"
)

// AirtableVoteRepository reads and writes vote rows through the
// Airtable client.
type AirtableVoteRepository struct {
	client *airtable.Client
}

// NewAirtableVoteRepository creates a new vote repository
func NewAirtableVoteRepository(client *airtable.Client) *AirtableVoteRepository {
	return &AirtableVoteRepository{client: client}
}

// List returns every raw vote row. Rows with missing fields are
// returned as-is; the aggregation pass decides what to ignore.
func (r *AirtableVoteRepository) List(ctx context.Context) ([]domain.Vote, error) {
	records, err := r.client.ListRecords(ctx, domain.VotesTable)
	if err != nil {
		return nil, err
	}

	votes := make([]domain.Vote, 0, len(records))
	for _, rec := range records {
		category, _ := rec.Fields["category"].(string)
		optionID, _ := rec.Fields["optionId"].(string)
		deviceID, _ := rec.Fields["deviceId"].(string)
		voterName, _ := rec.Fields["voterName"].(string)

		votes = append(votes, domain.Vote{
			ID:        rec.ID,
			Category:  domain.Category(category),
			OptionID:  optionID,
			DeviceID:  deviceID,
			VoterName: voterName,
		})
	}
	return votes, nil
}

// HasVoted reports whether any vote row matches (category, deviceId)
// exactly. Any match counts, stale or malformed included.
func (r *AirtableVoteRepository) HasVoted(ctx context.Context, category domain.Category, deviceID string) (bool, error) {
	formula := airtable.And(
		airtable.EqualsField("category", string(category)),
		airtable.EqualsField("deviceId", deviceID),
	)
	rec, err := r.client.FindFirst(ctx, domain.VotesTable, formula)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Create inserts a vote row. voterName is only stored when provided.
func (r *AirtableVoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	fields := map[string]interface{}{
		"category": string(vote.Category),
		"optionId": vote.OptionID,
		"deviceId": vote.DeviceID,
	}
	if vote.VoterName != "" {
		fields["voterName"] = vote.VoterName
	}

	rec, err := r.client.CreateRecord(ctx, domain.VotesTable, fields)
	if err != nil {
		return err
	}
	vote.ID = rec.ID
	return nil
}
