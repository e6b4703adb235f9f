package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
)

// ReviewStore is an append-only, per-user review log kept in memory.
// It has no size cap.
type ReviewStore struct {
	mu      sync.RWMutex
	reviews map[domain.UserID][]domain.Review
}

var _ ports.ReviewStore = (*ReviewStore)(nil)

func NewReviewStore() *ReviewStore {
	return &ReviewStore{reviews: make(map[domain.UserID][]domain.Review)}
}

func (s *ReviewStore) Append(ctx context.Context, review domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("validate review: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews[review.SubmittedBy] = append(s.reviews[review.SubmittedBy], review.Clone())
	return nil
}

func (s *ReviewStore) List(ctx context.Context, user domain.UserID) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneReviews(s.reviews[user]), nil
}

func (s *ReviewStore) ListRecent(ctx context.Context, user domain.UserID, n int) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []domain.Review{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.reviews[user]
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return cloneReviews(all), nil
}

func cloneReviews(reviews []domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(reviews))
	for _, review := range reviews {
		out = append(out, review.Clone())
	}
	return out
}
