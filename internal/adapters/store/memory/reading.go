package memory

import (
	"context"
	"sync"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
)

// ReadingRegistry keeps one currently-reading entry per user for the lifetime of the process.
type ReadingRegistry struct {
	mu      sync.RWMutex
	entries map[domain.UserID]domain.ReadingEntry
}

var _ ports.ReadingRegistry = (*ReadingRegistry)(nil)

func NewReadingRegistry() *ReadingRegistry {
	return &ReadingRegistry{entries: make(map[domain.UserID]domain.ReadingEntry)}
}

func (r *ReadingRegistry) Set(ctx context.Context, entry domain.ReadingEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entry.User] = entry.Clone()
	return nil
}

func (r *ReadingRegistry) Get(ctx context.Context, user domain.UserID) (domain.ReadingEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.ReadingEntry{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[user]
	if !ok {
		return domain.ReadingEntry{}, domain.ErrReadingNotFound
	}
	return entry.Clone(), nil
}

func (r *ReadingRegistry) Clear(ctx context.Context, user domain.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[user]; !ok {
		return false, nil
	}
	delete(r.entries, user)
	return true, nil
}
