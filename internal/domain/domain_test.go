package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookRecordNormalizeAppliesDefaults(t *testing.T) {
	book := BookRecord{Title: "  ", Authors: []string{"", "  "}}.Normalize()

	assert.Equal(t, DefaultTitle, book.Title)
	assert.Equal(t, []string{DefaultAuthor}, book.Authors)
	assert.Equal(t, DefaultDescription, book.Description)
}

func TestBookRecordNormalizeKeepsProvidedFields(t *testing.T) {
	book := BookRecord{
		Title:        "Dune",
		Authors:      []string{"Frank Herbert"},
		Description:  "Spice.",
		ThumbnailURL: " https://img/1 ",
	}.Normalize()

	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "Frank Herbert", book.AuthorsLine())
	assert.Equal(t, "Spice.", book.Description)
	assert.Equal(t, "https://img/1", book.ThumbnailURL)
}

func TestBookRecordCloneDoesNotShareAuthors(t *testing.T) {
	original := BookRecord{Title: "Good Omens", Authors: []string{"Terry Pratchett", "Neil Gaiman"}}
	clone := original.Clone()
	clone.Authors[0] = "someone else"

	assert.Equal(t, "Terry Pratchett", original.Authors[0])
	assert.Equal(t, "Terry Pratchett, Neil Gaiman", original.AuthorsLine())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short string untouched", in: "abc", limit: 10, want: "abc"},
		{name: "cut with ellipsis", in: "abcdefghij", limit: 8, want: "abcde..."},
		{name: "rune safe", in: "ééééééé", limit: 5, want: "éé..."},
		{name: "tiny limit", in: "abcdef", limit: 2, want: "ab"},
		{name: "zero limit", in: "abcdef", limit: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.limit))
		})
	}
}

func TestReviewValidate(t *testing.T) {
	review := Review{Book: BookRecord{Title: "Dune"}, Rating: 5, SubmittedBy: "u1"}
	require.NoError(t, review.Validate())

	review.Rating = 6
	require.ErrorIs(t, review.Validate(), ErrInvalidRating)

	review.Rating = 0
	require.ErrorIs(t, review.Validate(), ErrInvalidRating)

	review.Rating = 3
	review.SubmittedBy = ""
	require.Error(t, review.Validate())
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "★★★★★", Stars(9))
	assert.Equal(t, "☆☆☆☆☆", Stars(-1))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		kind SessionKind
		from SessionState
		to   SessionState
		want bool
	}{
		{SessionKindReview, StateIdle, StateAwaitingSelection, true},
		{SessionKindReview, StateIdle, StateAwaitingRating, true},
		{SessionKindSetReading, StateIdle, StateAwaitingRating, false},
		{SessionKindReview, StateAwaitingSelection, StateAwaitingRating, true},
		{SessionKindReview, StateAwaitingSelection, StateCommitted, false},
		{SessionKindSetReading, StateAwaitingSelection, StateCommitted, true},
		{SessionKindSetReading, StateAwaitingSelection, StateAwaitingRating, false},
		{SessionKindReview, StateAwaitingRating, StateAwaitingComment, true},
		{SessionKindReview, StateAwaitingRating, StateCommitted, false},
		{SessionKindReview, StateAwaitingComment, StateCommitted, true},
		{SessionKindReview, StateAwaitingComment, StateAwaitingRating, false},
		{SessionKindReview, StateAwaitingRating, StateCancelled, true},
		{SessionKindReview, StateAwaitingComment, StateTimedOut, true},
		{SessionKindReview, StateCommitted, StateCancelled, false},
		{SessionKindReview, StateTimedOut, StateAwaitingRating, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.kind, tt.from, tt.to))
		})
	}
}

func TestSessionTransitionRejectsIllegalEdge(t *testing.T) {
	session := Session{Kind: SessionKindReview, State: StateAwaitingSelection}

	err := session.Transition(StateCommitted)
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StateAwaitingSelection, session.State)

	require.NoError(t, session.Transition(StateAwaitingRating))
	assert.Equal(t, StateAwaitingRating, session.State)
}

func TestSessionSelectIsOneBased(t *testing.T) {
	session := Session{Candidates: []BookRecord{{Title: "A"}, {Title: "B"}}}

	_, err := session.Select(0)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = session.Select(3)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, session.Selected)

	book, err := session.Select(2)
	require.NoError(t, err)
	assert.Equal(t, "B", book.Title)
	require.NotNil(t, session.Selected)
	assert.Equal(t, "B", session.Selected.Title)
}

func TestSessionExpired(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := Session{State: StateAwaitingRating, Deadline: deadline}

	assert.False(t, session.Expired(deadline.Add(-time.Second)))
	assert.True(t, session.Expired(deadline))

	session.State = StateCommitted
	assert.False(t, session.Expired(deadline.Add(time.Hour)))
}

func TestSessionSnapshotIsIndependent(t *testing.T) {
	rating := 4
	selected := BookRecord{Title: "A", Authors: []string{"x"}}
	session := Session{
		Candidates:    []BookRecord{{Title: "A", Authors: []string{"x"}}},
		Selected:      &selected,
		PendingRating: &rating,
	}

	snap := session.Snapshot()
	snap.Candidates[0].Authors[0] = "changed"
	snap.Selected.Title = "changed"
	*snap.PendingRating = 1

	assert.Equal(t, "x", session.Candidates[0].Authors[0])
	assert.Equal(t, "A", session.Selected.Title)
	assert.Equal(t, 4, *session.PendingRating)
}
