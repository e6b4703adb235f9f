package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine owns every live dialogue session. Sessions are keyed by (user, channel);
// the table lock is held only to look up, insert or delete entries, and each
// session carries its own lock so transitions of one session are sequential.
type Engine struct {
	searcher  ports.BookSearcher
	readings  ports.ReadingRegistry
	reviews   ports.ReviewStore
	messenger ports.Messenger
	clock     ports.Clock
	logger    *zap.Logger
	cfg       EngineConfig
	newID     func() string

	mu       sync.Mutex
	sessions map[domain.SessionKey]*liveSession
	opening  map[domain.SessionKey]struct{}
}

type liveSession struct {
	mu      sync.Mutex
	session domain.Session
	closed  bool
}

func NewEngine(
	searcher ports.BookSearcher,
	readings ports.ReadingRegistry,
	reviews ports.ReviewStore,
	messenger ports.Messenger,
	clock ports.Clock,
	logger *zap.Logger,
	cfg EngineConfig,
) *Engine {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		searcher:  searcher,
		readings:  readings,
		reviews:   reviews,
		messenger: messenger,
		clock:     clock,
		logger:    logger.Named("dialogue"),
		cfg:       cfg.withDefaults(),
		newID:     uuid.NewString,
		sessions:  make(map[domain.SessionKey]*liveSession),
		opening:   make(map[domain.SessionKey]struct{}),
	}
}

// ReviewDraft is a rating and review text supplied together with the book query.
type ReviewDraft struct {
	Rating  int
	Comment string
}

// Open resolves query against the search provider and starts the dialogue for kind.
// A single candidate skips disambiguation; a SetReading with one candidate commits at once.
func (e *Engine) Open(ctx context.Context, kind domain.SessionKind, owner domain.User, channel domain.ChannelID, query string) error {
	if !kind.Valid() {
		return fmt.Errorf("unsupported session kind %q", kind)
	}
	return e.open(ctx, kind, owner, channel, query, nil)
}

// OpenDraft starts a review whose rating and text are already known. Only the
// book is asked for; the review commits as soon as it is chosen.
func (e *Engine) OpenDraft(ctx context.Context, owner domain.User, channel domain.ChannelID, query string, draft ReviewDraft) error {
	if !domain.ValidRating(draft.Rating) {
		return fmt.Errorf("%w: got %d", domain.ErrInvalidRating, draft.Rating)
	}
	draft.Comment = strings.TrimSpace(draft.Comment)
	if draft.Comment == "" {
		return fmt.Errorf("%w: empty comment", domain.ErrInvalidInput)
	}
	return e.open(ctx, domain.SessionKindReview, owner, channel, query, &draft)
}

func (e *Engine) open(ctx context.Context, kind domain.SessionKind, owner domain.User, channel domain.ChannelID, query string, draft *ReviewDraft) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.ErrEmptyQuery
	}

	key := domain.SessionKey{User: owner.ID, Channel: channel}
	release, err := e.reserve(ctx, key)
	if err != nil {
		e.send(ctx, channel, sessionConflictText(owner))
		return err
	}
	defer release()

	searchCtx, cancel := context.WithTimeout(ctx, e.cfg.SearchTimeout)
	candidates, err := e.searcher.Search(searchCtx, query, e.cfg.SearchLimit)
	cancel()
	if err != nil {
		e.logger.Warn("book search failed", zap.String("session_key", key.String()), zap.String("query", query), zap.Error(err))
		e.send(ctx, channel, searchFailedText(query))
		return fmt.Errorf("search books: %w", err)
	}
	if len(candidates) > e.cfg.MaxCandidates {
		candidates = candidates[:e.cfg.MaxCandidates]
	}

	now := e.clock.Now()
	switch len(candidates) {
	case 0:
		e.send(ctx, channel, notFoundText(query))
		return fmt.Errorf("%w: %q", domain.ErrNoCandidates, query)
	case 1:
		book := candidates[0].Clone()
		if kind == domain.SessionKindSetReading {
			return e.storeReading(ctx, owner, channel, book)
		}

		session := e.newSession(kind, owner, channel, now, draft)
		session.Selected = &book
		if draft != nil {
			ls := &liveSession{session: session}
			ls.mu.Lock()
			defer ls.mu.Unlock()
			return e.completeDraft(ctx, ls, now)
		}
		if err := e.advance(&session, domain.StateAwaitingRating, now); err != nil {
			return err
		}
		e.install(key, session)
		e.sendCard(ctx, channel, bookCard(book))
		e.send(ctx, channel, ratingPromptText(owner, book))
		return nil
	default:
		session := e.newSession(kind, owner, channel, now, draft)
		session.Candidates = make([]domain.BookRecord, len(candidates))
		for i, candidate := range candidates {
			session.Candidates[i] = candidate.Clone()
		}
		if err := e.advance(&session, domain.StateAwaitingSelection, now); err != nil {
			return err
		}
		e.install(key, session)
		e.send(ctx, channel, selectionListText(owner, query, session.Candidates, e.cfg.CancelToken))
		return nil
	}
}

// Handle offers msg to the session owned by its author in its channel.
// It reports false when no live session claims the message.
func (e *Engine) Handle(ctx context.Context, msg domain.Message) (bool, error) {
	ls := e.lookup(domain.SessionKey{User: msg.Author.ID, Channel: msg.Channel})
	if ls == nil {
		return false, nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.closed {
		return false, nil
	}
	now := e.clock.Now()
	if ls.session.Expired(now) {
		e.timeOut(ctx, ls)
		return false, nil
	}

	text := strings.TrimSpace(msg.Text)
	if strings.EqualFold(text, e.cfg.CancelToken) {
		e.cancel(ctx, ls)
		return true, nil
	}

	switch ls.session.State {
	case domain.StateAwaitingSelection:
		return true, e.handleSelection(ctx, ls, text, now)
	case domain.StateAwaitingRating:
		return true, e.handleRating(ctx, ls, text, now)
	case domain.StateAwaitingComment:
		return true, e.handleComment(ctx, ls, text, now)
	default:
		return false, nil
	}
}

// Cancel ends the session of owner in channel. It reports false when there is none.
func (e *Engine) Cancel(ctx context.Context, owner domain.User, channel domain.ChannelID) (bool, error) {
	ls := e.lookup(domain.SessionKey{User: owner.ID, Channel: channel})
	if ls == nil {
		return false, nil
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.closed {
		return false, nil
	}
	if ls.session.Expired(e.clock.Now()) {
		e.timeOut(ctx, ls)
		return false, nil
	}

	e.cancel(ctx, ls)
	return true, nil
}

// Sweep times out every session whose deadline has passed and returns how many it expired.
func (e *Engine) Sweep(ctx context.Context) int {
	e.mu.Lock()
	live := make([]*liveSession, 0, len(e.sessions))
	for _, ls := range e.sessions {
		live = append(live, ls)
	}
	e.mu.Unlock()

	expired := 0
	for _, ls := range live {
		if e.expire(ctx, ls) {
			expired++
		}
	}
	if expired > 0 {
		e.logger.Debug("swept expired sessions", zap.Int("expired", expired))
	}
	return expired
}

// Run sweeps expired sessions every SweepInterval until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Sweep(ctx)
		}
	}
}

// Session returns a snapshot of the live session for key.
func (e *Engine) Session(key domain.SessionKey) (domain.Session, bool) {
	ls := e.lookup(key)
	if ls == nil {
		return domain.Session{}, false
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.closed {
		return domain.Session{}, false
	}
	return ls.session.Snapshot(), true
}

// Config returns the effective dialogue policy after defaults are applied.
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

func (e *Engine) handleSelection(ctx context.Context, ls *liveSession, text string, now time.Time) error {
	session := &ls.session
	index, err := strconv.Atoi(text)
	if err != nil {
		e.send(ctx, session.Channel, selectionRetryText(session.Owner, len(session.Candidates), e.cfg.CancelToken))
		return fmt.Errorf("%w: selection %q is not a number", domain.ErrInvalidInput, text)
	}
	book, err := session.Select(index)
	if err != nil {
		e.send(ctx, session.Channel, selectionRetryText(session.Owner, len(session.Candidates), e.cfg.CancelToken))
		return err
	}

	if session.Kind == domain.SessionKindSetReading {
		entry := e.readingEntry(session.Owner, book, now)
		if err := e.readings.Set(ctx, entry); err != nil {
			e.fail(ctx, ls, err)
			return fmt.Errorf("set reading: %w", err)
		}
		e.finish(ls, domain.StateCommitted)
		e.sendCard(ctx, session.Channel, readingCard(entry))
		return nil
	}

	if session.PendingComment != nil {
		return e.completeDraft(ctx, ls, now)
	}
	if err := e.advance(session, domain.StateAwaitingRating, now); err != nil {
		return err
	}
	e.send(ctx, session.Channel, ratingPromptText(session.Owner, book))
	return nil
}

func (e *Engine) handleRating(ctx context.Context, ls *liveSession, text string, now time.Time) error {
	session := &ls.session
	rating, err := strconv.Atoi(text)
	if err != nil {
		e.send(ctx, session.Channel, ratingRetryText(session.Owner, e.cfg.CancelToken))
		return fmt.Errorf("%w: rating %q is not a number", domain.ErrInvalidRating, text)
	}
	if err := session.SetRating(rating); err != nil {
		e.send(ctx, session.Channel, ratingRetryText(session.Owner, e.cfg.CancelToken))
		return err
	}

	if err := e.advance(session, domain.StateAwaitingComment, now); err != nil {
		return err
	}
	e.send(ctx, session.Channel, commentPromptText(session.Owner, rating, e.cfg.SkipToken))
	return nil
}

func (e *Engine) handleComment(ctx context.Context, ls *liveSession, text string, now time.Time) error {
	session := &ls.session
	if text == "" {
		e.send(ctx, session.Channel, commentPromptText(session.Owner, *session.PendingRating, e.cfg.SkipToken))
		return fmt.Errorf("%w: empty comment", domain.ErrInvalidInput)
	}
	return e.commitReview(ctx, ls, text, now)
}

// completeDraft walks a drafted review with a selected book through the rating
// and comment steps and commits it.
func (e *Engine) completeDraft(ctx context.Context, ls *liveSession, now time.Time) error {
	session := &ls.session
	for _, to := range []domain.SessionState{domain.StateAwaitingRating, domain.StateAwaitingComment} {
		if err := e.advance(session, to, now); err != nil {
			return err
		}
	}
	return e.commitReview(ctx, ls, *session.PendingComment, now)
}

// commitReview stores the review of a session in AwaitingComment. The skip token stores no text.
func (e *Engine) commitReview(ctx context.Context, ls *liveSession, comment string, now time.Time) error {
	session := &ls.session
	if strings.EqualFold(comment, e.cfg.SkipToken) {
		comment = ""
	}

	review := domain.Review{
		ID:              e.newID(),
		Book:            session.Selected.Clone(),
		Rating:          *session.PendingRating,
		Comment:         comment,
		SubmittedBy:     session.Owner.ID,
		SubmittedByName: session.Owner.Name(),
		Channel:         session.Channel,
		SubmittedAt:     now,
	}
	if err := e.reviews.Append(ctx, review); err != nil {
		e.fail(ctx, ls, err)
		return fmt.Errorf("append review: %w", err)
	}

	e.finish(ls, domain.StateCommitted)
	e.logger.Info("review committed",
		zap.String("session_id", session.ID),
		zap.String("user", string(review.SubmittedBy)),
		zap.String("title", review.Book.Title),
		zap.Int("rating", review.Rating),
	)
	e.send(ctx, session.Channel, reviewSubmittedText(session.Owner))
	e.sendCard(ctx, session.Channel, reviewCard(review))
	return nil
}

func (e *Engine) storeReading(ctx context.Context, owner domain.User, channel domain.ChannelID, book domain.BookRecord) error {
	entry := e.readingEntry(owner, book, e.clock.Now())
	if err := e.readings.Set(ctx, entry); err != nil {
		e.send(ctx, channel, saveFailedText(owner))
		return fmt.Errorf("set reading: %w", err)
	}

	e.sendCard(ctx, channel, readingCard(entry))
	return nil
}

func (e *Engine) readingEntry(owner domain.User, book domain.BookRecord, now time.Time) domain.ReadingEntry {
	return domain.ReadingEntry{
		User:     owner.ID,
		UserName: owner.Name(),
		Book:     book.Clone(),
		SetAt:    now,
	}
}

// reserve claims key for a session that is about to be created. An expired
// session occupying the key is timed out first.
func (e *Engine) reserve(ctx context.Context, key domain.SessionKey) (func(), error) {
	for attempt := 0; ; attempt++ {
		e.mu.Lock()
		if _, busy := e.opening[key]; busy {
			e.mu.Unlock()
			return nil, domain.ErrSessionConflict
		}
		ls, live := e.sessions[key]
		if !live {
			e.opening[key] = struct{}{}
			e.mu.Unlock()
			return func() {
				e.mu.Lock()
				delete(e.opening, key)
				e.mu.Unlock()
			}, nil
		}
		e.mu.Unlock()

		if attempt > 0 {
			return nil, domain.ErrSessionConflict
		}
		e.expire(ctx, ls)
	}
}

func (e *Engine) newSession(kind domain.SessionKind, owner domain.User, channel domain.ChannelID, now time.Time, draft *ReviewDraft) domain.Session {
	session := domain.Session{
		ID:        e.newID(),
		Owner:     owner,
		Channel:   channel,
		Kind:      kind,
		State:     domain.StateIdle,
		CreatedAt: now,
	}
	if draft != nil {
		rating, comment := draft.Rating, draft.Comment
		session.PendingRating = &rating
		session.PendingComment = &comment
	}
	return session
}

// advance moves session to a waiting state and restarts the step deadline.
func (e *Engine) advance(session *domain.Session, to domain.SessionState, now time.Time) error {
	if err := session.Transition(to); err != nil {
		e.logger.Error("session transition rejected", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}
	session.Deadline = now.Add(e.stepTimeout(to))
	return nil
}

func (e *Engine) stepTimeout(state domain.SessionState) time.Duration {
	switch state {
	case domain.StateAwaitingSelection:
		return e.cfg.SelectionTimeout
	case domain.StateAwaitingRating:
		return e.cfg.RatingTimeout
	case domain.StateAwaitingComment:
		return e.cfg.CommentTimeout
	default:
		return 0
	}
}

func (e *Engine) install(key domain.SessionKey, session domain.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[key] = &liveSession{session: session}
	e.logger.Debug("session opened",
		zap.String("session_id", session.ID),
		zap.String("session_key", key.String()),
		zap.String("kind", string(session.Kind)),
		zap.String("state", string(session.State)),
		zap.Int("candidates", len(session.Candidates)),
	)
}

func (e *Engine) lookup(key domain.SessionKey) *liveSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[key]
}

// expire times out ls if its deadline has passed. It reports whether this call expired it.
func (e *Engine) expire(ctx context.Context, ls *liveSession) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.closed || !ls.session.Expired(e.clock.Now()) {
		return false
	}
	e.timeOut(ctx, ls)
	return true
}

// The helpers below require ls.mu to be held.

func (e *Engine) timeOut(ctx context.Context, ls *liveSession) {
	e.finish(ls, domain.StateTimedOut)
	e.send(ctx, ls.session.Channel, timedOutText(ls.session.Owner))
}

func (e *Engine) cancel(ctx context.Context, ls *liveSession) {
	e.finish(ls, domain.StateCancelled)
	e.send(ctx, ls.session.Channel, cancelledText(ls.session.Owner))
}

func (e *Engine) fail(ctx context.Context, ls *liveSession, cause error) {
	e.logger.Error("commit failed", zap.String("session_id", ls.session.ID), zap.Error(cause))
	e.finish(ls, domain.StateFailed)
	e.send(ctx, ls.session.Channel, saveFailedText(ls.session.Owner))
}

func (e *Engine) finish(ls *liveSession, state domain.SessionState) {
	if err := ls.session.Transition(state); err != nil {
		e.logger.Error("session transition rejected", zap.String("session_id", ls.session.ID), zap.Error(err))
		ls.session.State = state
	}
	ls.session.Deadline = time.Time{}
	ls.closed = true

	key := ls.session.Key()
	e.mu.Lock()
	if current, ok := e.sessions[key]; ok && current == ls {
		delete(e.sessions, key)
	}
	e.mu.Unlock()

	e.logger.Debug("session closed",
		zap.String("session_id", ls.session.ID),
		zap.String("session_key", key.String()),
		zap.String("state", string(state)),
	)
}

func (e *Engine) send(ctx context.Context, channel domain.ChannelID, text string) {
	if err := e.messenger.SendText(ctx, channel, text); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn("send text failed", zap.String("channel", string(channel)), zap.Error(err))
	}
}

func (e *Engine) sendCard(ctx context.Context, channel domain.ChannelID, card ports.Card) {
	if err := e.messenger.SendCard(ctx, channel, card); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn("send card failed", zap.String("channel", string(channel)), zap.Error(err))
	}
}
