package service

import (
	"context"
	"math"
	"sort"

	"tripvote/internal/domain"
	"tripvote/internal/repository"
	apperrors "tripvote/pkg/errors"

	"go.uber.org/zap"
)

// PollService implements the aggregation core: option listing, vote
// submission with the advisory one-vote-per-device-per-category check,
// and ranked percent results recomputed from raw votes.
type PollService struct {
	optionRepo repository.OptionRepository
	voteRepo   repository.VoteRepository
	cache      *CacheService
	logger     *zap.Logger
}

// NewPollService creates a new poll service. cache may be built over a
// nil Redis client, in which case every read goes to the record store.
func NewPollService(optionRepo repository.OptionRepository, voteRepo repository.VoteRepository, cache *CacheService, logger *zap.Logger) *PollService {
	return &PollService{
		optionRepo: optionRepo,
		voteRepo:   voteRepo,
		cache:      cache,
		logger:     logger,
	}
}

// ListOptions returns all known options of both categories in store
// iteration order.
func (s *PollService) ListOptions(ctx context.Context) (*domain.OptionsResponse, error) {
	if cached := s.cache.GetOptions(ctx); cached != nil {
		return cached, nil
	}

	destinations, err := s.optionRepo.List(ctx, domain.CategoryDestination)
	if err != nil {
		return nil, storeError(err)
	}
	activities, err := s.optionRepo.List(ctx, domain.CategoryActivity)
	if err != nil {
		return nil, storeError(err)
	}

	response := &domain.OptionsResponse{
		Destinations: destinations,
		Activities:   activities,
	}
	s.cache.SetOptions(ctx, response)
	return response, nil
}

// SubmitVote validates and records a vote request. Each category
// present in the request is processed independently: a duplicate in one
// category produces a warning without blocking the other. The duplicate
// check is a read followed by a conditional write with no isolation
// from the store, so two racing submissions from the same device can
// both land; the next aggregation just counts the extra row.
func (s *PollService) SubmitVote(ctx context.Context, req *domain.VoteRequest) (*domain.VoteResponse, error) {
	if req.DeviceID == "" {
		return nil, apperrors.NewValidationError("deviceId manquant")
	}
	if req.Destination == nil && req.Activity == nil {
		return nil, apperrors.NewValidationError("Aucun vote fourni")
	}

	// Reject malformed references before any side effect.
	for _, category := range domain.Categories {
		if ref := req.Ref(category); ref != nil {
			if err := ref.Validate(category); err != nil {
				return nil, apperrors.NewValidationError(err.Error())
			}
		}
	}

	warnings := []string{}
	recorded := false

	for _, category := range domain.Categories {
		ref := req.Ref(category)
		if ref == nil {
			continue
		}

		already, err := s.voteRepo.HasVoted(ctx, category, req.DeviceID)
		if err != nil {
			return nil, storeError(err)
		}
		if already {
			warnings = append(warnings, category.Label()+": déjà voté pour cet appareil.")
			continue
		}

		optionID, err := s.ensureOption(ctx, category, ref)
		if err != nil {
			return nil, err
		}

		vote := &domain.Vote{
			Category:  category,
			OptionID:  optionID,
			DeviceID:  req.DeviceID,
			VoterName: req.VoterName,
		}
		if err := s.voteRepo.Create(ctx, vote); err != nil {
			return nil, storeError(err)
		}
		recorded = true

		s.logger.Info("Vote recorded",
			zap.String("category", string(category)),
			zap.String("option_id", optionID),
			zap.String("device_id", req.DeviceID))
	}

	if recorded {
		s.cache.InvalidatePoll(ctx)
	}

	return &domain.VoteResponse{OK: true, Warnings: warnings}, nil
}

// ensureOption resolves an option reference to a concrete option id.
// For new names it reuses an existing row with the exact same name, so
// two voters proposing "Brésil" end up behind one option. The
// find-then-create sequence is not transactional; concurrent identical
// proposals can still create two rows with the same name.
func (s *PollService) ensureOption(ctx context.Context, category domain.Category, ref *domain.OptionRef) (string, error) {
	if ref.Type == domain.OptionRefExisting {
		return ref.ID, nil
	}

	name := ref.TrimmedName()

	existing, err := s.optionRepo.FindByName(ctx, category, name)
	if err != nil {
		return "", storeError(err)
	}
	if existing != nil {
		return existing.ID, nil
	}

	created, err := s.optionRepo.Create(ctx, category, name)
	if err != nil {
		return "", storeError(err)
	}

	s.logger.Info("Option created",
		zap.String("category", string(category)),
		zap.String("option_id", created.ID),
		zap.String("name", name))

	return created.ID, nil
}

// GetResults folds all raw votes into per-category counts and maps
// every known option to a ranked, percentage-annotated row.
func (s *PollService) GetResults(ctx context.Context) (*domain.ResultsResponse, error) {
	if cached := s.cache.GetResults(ctx); cached != nil {
		return cached, nil
	}

	votes, err := s.voteRepo.List(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	counts := map[domain.Category]map[string]int{
		domain.CategoryDestination: {},
		domain.CategoryActivity:    {},
	}
	for _, v := range votes {
		if v.OptionID == "" || !v.Category.Valid() {
			continue
		}
		counts[v.Category][v.OptionID]++
	}

	destinations, err := s.optionRepo.List(ctx, domain.CategoryDestination)
	if err != nil {
		return nil, storeError(err)
	}
	activities, err := s.optionRepo.List(ctx, domain.CategoryActivity)
	if err != nil {
		return nil, storeError(err)
	}

	response := &domain.ResultsResponse{
		Destination: rankedPercent(destinations, counts[domain.CategoryDestination]),
		Activity:    rankedPercent(activities, counts[domain.CategoryActivity]),
	}
	s.cache.SetResults(ctx, response)
	return response, nil
}

// rankedPercent converts per-option counts into sorted percentage rows.
// The total sums every counted vote, including votes referencing
// options that no longer resolve to a row; those degrade by omission.
// Percentages use round-half-away-from-zero and are not adjusted to
// sum to 100.
func rankedPercent(options []domain.Option, counts map[string]int) domain.AggregateResult {
	total := 0
	for _, c := range counts {
		total += c
	}

	rows := make([]domain.ResultRow, 0, len(options))
	for _, o := range options {
		count := counts[o.ID]
		percent := 0
		if total > 0 {
			percent = int(math.Round(float64(count) / float64(total) * 100))
		}
		rows = append(rows, domain.ResultRow{
			ID:      o.ID,
			Name:    o.Name,
			Count:   count,
			Percent: percent,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Count > rows[j].Count
	})

	return domain.AggregateResult{Total: total, Rows: rows}
}

// storeError wraps a record store failure so the request boundary
// reports it with an upstream status instead of a generic 500.
func storeError(err error) error {
	return apperrors.NewExternalError(err.Error(), err)
}
