package ports

import (
	"context"

	"github.com/bearcrabs/bookbot/internal/domain"
)

// BookSearcher resolves a free-text query into at most limit candidate books.
// Zero matches is an empty slice with a nil error.
type BookSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.BookRecord, error)
}
