package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bearcrabs/bookbot/internal/adapters/store/memory"
	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	Channel domain.ChannelID
	Text    string
	Card    *ports.Card
}

type recordingMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (m *recordingMessenger) SendText(_ context.Context, channel domain.ChannelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{Channel: channel, Text: text})
	return nil
}

func (m *recordingMessenger) SendCard(_ context.Context, channel domain.ChannelID, card ports.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{Channel: channel, Card: &card})
	return nil
}

func (m *recordingMessenger) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func (m *recordingMessenger) last() sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMessage{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMessenger) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

func (m *recordingMessenger) cards() []ports.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.Card
	for _, msg := range m.sent {
		if msg.Card != nil {
			out = append(out, *msg.Card)
		}
	}
	return out
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeSearcher answers queries from a fixed catalogue.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]domain.BookRecord
	err     error
	calls   int
}

func (s *fakeSearcher) Search(_ context.Context, query string, limit int) ([]domain.BookRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	books := s.results[strings.ToLower(query)]
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}

type failingReviewStore struct {
	ports.ReviewStore
	err error
}

func (s failingReviewStore) Append(context.Context, domain.Review) error {
	return s.err
}

type failingReadingRegistry struct {
	ports.ReadingRegistry
	err error
}

func (r failingReadingRegistry) Set(context.Context, domain.ReadingEntry) error {
	return r.err
}

var (
	alice = domain.User{ID: "u-alice", DisplayName: "Alice"}
	bob   = domain.User{ID: "u-bob", DisplayName: "Bob"}
)

const general domain.ChannelID = "c-general"

func book(title string, authors ...string) domain.BookRecord {
	return domain.BookRecord{
		Title:       title,
		Authors:     authors,
		Description: "About " + title,
		DetailLink:  "https://books.example/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
	}.Normalize()
}

func catalogue() map[string][]domain.BookRecord {
	return map[string][]domain.BookRecord{
		"dune": {
			book("Dune", "Frank Herbert"),
			book("Dune Messiah", "Frank Herbert"),
			book("Children of Dune", "Frank Herbert"),
		},
		"the hobbit": {book("The Hobbit", "J.R.R. Tolkien")},
	}
}

type engineFixture struct {
	engine    *Engine
	searcher  *fakeSearcher
	readings  *memory.ReadingRegistry
	reviews   *memory.ReviewStore
	messenger *recordingMessenger
	clock     *manualClock
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		searcher:  &fakeSearcher{results: catalogue()},
		readings:  memory.NewReadingRegistry(),
		reviews:   memory.NewReviewStore(),
		messenger: &recordingMessenger{},
		clock:     newManualClock(),
	}
	f.engine = NewEngine(f.searcher, f.readings, f.reviews, f.messenger, f.clock, nil, DefaultEngineConfig())
	return f
}

func (f *engineFixture) say(t *testing.T, author domain.User, channel domain.ChannelID, text string) (bool, error) {
	t.Helper()
	return f.engine.Handle(context.Background(), domain.Message{Author: author, Channel: channel, Text: text})
}

func (f *engineFixture) session(t *testing.T, user domain.User, channel domain.ChannelID) domain.Session {
	t.Helper()
	session, ok := f.engine.Session(domain.SessionKey{User: user.ID, Channel: channel})
	require.True(t, ok, "expected live session for %s in %s", user.ID, channel)
	return session
}
