package ports

import (
	"context"

	"github.com/bearcrabs/bookbot/internal/domain"
)

type ReadingRegistry interface {
	Set(ctx context.Context, entry domain.ReadingEntry) error
	// Get returns domain.ErrReadingNotFound when the user has no entry.
	Get(ctx context.Context, user domain.UserID) (domain.ReadingEntry, error)
	Clear(ctx context.Context, user domain.UserID) (bool, error)
}
