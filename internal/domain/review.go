package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID              string
	Book            BookRecord
	Rating          int
	Comment         string
	SubmittedBy     UserID
	SubmittedByName string
	Channel         ChannelID
	SubmittedAt     time.Time
}

func (r Review) HasComment() bool {
	return r.Comment != ""
}

func (r Review) Validate() error {
	if strings.TrimSpace(string(r.SubmittedBy)) == "" {
		return fmt.Errorf("submitter is required")
	}
	if strings.TrimSpace(r.Book.Title) == "" {
		return fmt.Errorf("book title is required")
	}
	if !ValidRating(r.Rating) {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, r.Rating)
	}

	return nil
}

func (r Review) Clone() Review {
	out := r
	out.Book = r.Book.Clone()
	return out
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Stars renders a rating as filled and empty stars, e.g. "★★★☆☆".
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxRating {
		rating = MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", MaxRating-rating)
}
