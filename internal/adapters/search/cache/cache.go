package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL = 10 * time.Minute
	// sharedLookupTimeout bounds a lookup that outlives the caller that started it.
	sharedLookupTimeout = 30 * time.Second
)

// Searcher memoises successful lookups of another BookSearcher.
// Errors are never cached.
type Searcher struct {
	next   ports.BookSearcher
	cache  *gocache.Cache
	group  singleflight.Group
	logger *zap.Logger
}

var _ ports.BookSearcher = (*Searcher)(nil)

func New(next ports.BookSearcher, ttl time.Duration, logger *zap.Logger) *Searcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Searcher{
		next:   next,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger.Named("search_cache"),
	}
}

func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]domain.BookRecord, error) {
	key := cacheKey(query, limit)
	if cached, ok := s.cache.Get(key); ok {
		s.logger.Debug("cache hit", zap.String("key", key))
		return cloneBooks(cached.([]domain.BookRecord)), nil
	}

	// The shared lookup must not inherit the first caller's cancellation;
	// every caller still stops waiting when its own ctx is done.
	results := s.group.DoChan(key, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		books, err := s.next.Search(lookupCtx, query, limit)
		if err != nil {
			return nil, err
		}
		stored := cloneBooks(books)
		s.cache.SetDefault(key, stored)
		return stored, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}
		if result.Shared {
			s.logger.Debug("shared in-flight search", zap.String("key", key))
		}
		return cloneBooks(result.Val.([]domain.BookRecord)), nil
	}
}

// Len reports the number of cached queries, expired entries included until purged.
func (s *Searcher) Len() int {
	return s.cache.ItemCount()
}

func cacheKey(query string, limit int) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " ")) + "|" + strconv.Itoa(limit)
}

func cloneBooks(books []domain.BookRecord) []domain.BookRecord {
	out := make([]domain.BookRecord, len(books))
	for i, book := range books {
		out[i] = book.Clone()
	}
	return out
}
