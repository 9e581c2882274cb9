package repository

import (
	"context"

	"tripvote/internal/domain"
)

// OptionRepository provides access to the per-category option tables.
//
// FindByName performs an exact, case-sensitive match against stored
// names; Create does not check for duplicates itself, so callers doing
// find-then-create accept the race documented in the service layer.
type OptionRepository interface {
	List(ctx context.Context, category domain.Category) ([]domain.Option, error)
	FindByName(ctx context.Context, category domain.Category, name string) (*domain.Option, error)
	Create(ctx context.Context, category domain.Category, name string) (*domain.Option, error)
}

// VoteRepository provides access to the vote table. HasVoted is an
// advisory read; the store offers no isolation between it and a
// subsequent Create.
type VoteRepository interface {
	List(ctx context.Context) ([]domain.Vote, error)
	HasVoted(ctx context.Context, category domain.Category, deviceID string) (bool, error)
	Create(ctx context.Context, vote *domain.Vote) error
}
