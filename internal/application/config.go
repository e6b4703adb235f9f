package application

import "time"

const (
	DefaultSelectionTimeout = 60 * time.Second
	DefaultRatingTimeout    = 60 * time.Second
	DefaultCommentTimeout   = 90 * time.Second
	DefaultSearchTimeout    = 10 * time.Second
	DefaultSweepInterval    = 5 * time.Second
	DefaultSearchLimit      = 5
	DefaultMaxCandidates    = 25
	DefaultCancelToken      = "cancel"
	DefaultSkipToken        = "skip"
	DefaultCommandPrefix    = "!"
	DefaultListLimit        = 5
)

// EngineConfig holds the dialogue policy. Zero values fall back to the defaults above.
type EngineConfig struct {
	SelectionTimeout time.Duration
	RatingTimeout    time.Duration
	CommentTimeout   time.Duration
	SearchTimeout    time.Duration
	SweepInterval    time.Duration
	SearchLimit      int
	MaxCandidates    int
	CancelToken      string
	SkipToken        string
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{}.withDefaults()
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.SelectionTimeout <= 0 {
		c.SelectionTimeout = DefaultSelectionTimeout
	}
	if c.RatingTimeout <= 0 {
		c.RatingTimeout = DefaultRatingTimeout
	}
	if c.CommentTimeout <= 0 {
		c.CommentTimeout = DefaultCommentTimeout
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = DefaultSearchTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.SearchLimit < 1 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.MaxCandidates < 1 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	if c.CancelToken == "" {
		c.CancelToken = DefaultCancelToken
	}
	if c.SkipToken == "" {
		c.SkipToken = DefaultSkipToken
	}
	return c
}

type DispatcherConfig struct {
	Prefix    string
	ListLimit int
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Prefix == "" {
		c.Prefix = DefaultCommandPrefix
	}
	if c.ListLimit < 1 {
		c.ListLimit = DefaultListLimit
	}
	return c
}
