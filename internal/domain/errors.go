package domain

import "errors"

var (
	ErrProviderUnavailable = errors.New("book search provider unavailable")
	ErrMalformedResponse   = errors.New("malformed book search response")
	ErrEmptyQuery          = errors.New("search query is empty")
	ErrInvalidLimit        = errors.New("search limit must be at least 1")
	ErrNoCandidates        = errors.New("no matching books")

	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidRating = errors.New("rating must be a whole number from 1 to 5")

	ErrSessionConflict   = errors.New("a session is already active")
	ErrIllegalTransition = errors.New("illegal session transition")

	ErrReadingNotFound = errors.New("no book is being read")
	ErrSecretNotFound  = errors.New("secret not found")
	ErrUserNotFound    = errors.New("user not found")
)
