package domain

import (
	"fmt"
	"time"
)

type SessionKind string
type SessionState string

const (
	SessionKindSetReading SessionKind = "set_reading"
	SessionKindReview     SessionKind = "review"
)

const (
	StateIdle              SessionState = "idle"
	StateAwaitingSelection SessionState = "awaiting_selection"
	StateAwaitingRating    SessionState = "awaiting_rating"
	StateAwaitingComment   SessionState = "awaiting_comment"
	StateCommitted         SessionState = "committed"
	StateCancelled         SessionState = "cancelled"
	StateTimedOut          SessionState = "timed_out"
	// StateFailed is entered when the owning store rejects the commit.
	StateFailed SessionState = "failed"
)

func (k SessionKind) Valid() bool {
	switch k {
	case SessionKindSetReading, SessionKindReview:
		return true
	default:
		return false
	}
}

func (s SessionState) Terminal() bool {
	switch s {
	case StateCommitted, StateCancelled, StateTimedOut, StateFailed:
		return true
	default:
		return false
	}
}

type SessionKey struct {
	User    UserID
	Channel ChannelID
}

func (k SessionKey) String() string {
	return string(k.Channel) + "/" + string(k.User)
}

type Session struct {
	ID             string
	Owner          User
	Channel        ChannelID
	Kind           SessionKind
	Candidates     []BookRecord
	Selected       *BookRecord
	PendingRating  *int
	// PendingComment is set when the review text was given with the command.
	PendingComment *string
	State          SessionState
	CreatedAt      time.Time
	Deadline       time.Time
}

func (s Session) Key() SessionKey {
	return SessionKey{User: s.Owner.ID, Channel: s.Channel}
}

// Expired reports whether the deadline of a non-terminal state has passed.
func (s Session) Expired(now time.Time) bool {
	if s.State.Terminal() || s.Deadline.IsZero() {
		return false
	}
	return !now.Before(s.Deadline)
}

// CanTransition reports whether a session of the given kind may move from one state to another.
func CanTransition(kind SessionKind, from, to SessionState) bool {
	switch from {
	case StateIdle:
		switch to {
		case StateAwaitingSelection:
			return true
		case StateAwaitingRating:
			return kind == SessionKindReview
		}
	case StateAwaitingSelection:
		switch to {
		case StateAwaitingRating:
			return kind == SessionKindReview
		case StateCommitted:
			return kind == SessionKindSetReading
		case StateCancelled, StateTimedOut, StateFailed:
			return true
		}
	case StateAwaitingRating:
		switch to {
		case StateAwaitingComment, StateCancelled, StateTimedOut:
			return true
		}
	case StateAwaitingComment:
		switch to {
		case StateCommitted, StateCancelled, StateTimedOut, StateFailed:
			return true
		}
	}

	return false
}

func (s *Session) Transition(to SessionState) error {
	if !CanTransition(s.Kind, s.State, to) {
		return fmt.Errorf("%w: %s %s -> %s", ErrIllegalTransition, s.Kind, s.State, to)
	}
	s.State = to
	return nil
}

// Select records the candidate picked by the owner. The index is 1-based.
func (s *Session) Select(index int) (BookRecord, error) {
	if index < 1 || index > len(s.Candidates) {
		return BookRecord{}, fmt.Errorf("%w: choose a number from 1 to %d", ErrInvalidInput, len(s.Candidates))
	}
	book := s.Candidates[index-1].Clone()
	s.Selected = &book
	return book, nil
}

func (s *Session) SetRating(rating int) error {
	if !ValidRating(rating) {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	s.PendingRating = &rating
	return nil
}

// Snapshot returns a copy that can be read without holding the session lock.
func (s Session) Snapshot() Session {
	out := s
	if s.Candidates != nil {
		out.Candidates = make([]BookRecord, len(s.Candidates))
		for i, candidate := range s.Candidates {
			out.Candidates[i] = candidate.Clone()
		}
	}
	if s.Selected != nil {
		selected := s.Selected.Clone()
		out.Selected = &selected
	}
	if s.PendingRating != nil {
		rating := *s.PendingRating
		out.PendingRating = &rating
	}
	if s.PendingComment != nil {
		comment := *s.PendingComment
		out.PendingComment = &comment
	}
	return out
}
