package ports

import (
	"context"

	"github.com/bearcrabs/bookbot/internal/domain"
)

type ReviewStore interface {
	Append(ctx context.Context, review domain.Review) error
	// List returns every review of the user, oldest first.
	List(ctx context.Context, user domain.UserID) ([]domain.Review, error)
	// ListRecent returns the last n reviews of the user, oldest first.
	ListRecent(ctx context.Context, user domain.UserID, n int) ([]domain.Review, error)
}
