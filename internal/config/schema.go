package config

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	Search   searchSchema   `toml:"search"`
	Dialogue dialogueSchema `toml:"dialogue"`
	Commands commandsSchema `toml:"commands"`
	Health   healthSchema   `toml:"health"`
	Log      logSchema      `toml:"log"`
	Secrets  secretsSchema  `toml:"secrets"`
}

type searchSchema struct {
	BaseURL  string `toml:"base_url"`
	Timeout  string `toml:"timeout"`
	Limit    int    `toml:"limit"`
	CacheTTL string `toml:"cache_ttl"`
}

type dialogueSchema struct {
	SelectionTimeout string `toml:"selection_timeout"`
	RatingTimeout    string `toml:"rating_timeout"`
	CommentTimeout   string `toml:"comment_timeout"`
	SweepInterval    string `toml:"sweep_interval"`
	MaxCandidates    int    `toml:"max_candidates"`
	CancelToken      string `toml:"cancel_token"`
	SkipToken        string `toml:"skip_token"`
}

type commandsSchema struct {
	Prefix    string `toml:"prefix"`
	ListLimit int    `toml:"list_limit"`
}

type healthSchema struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

type logSchema struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type secretsSchema struct {
	Dir string `toml:"dir"`
}

func toSchema(c Config) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Search: searchSchema{
			BaseURL:  c.Search.BaseURL,
			Timeout:  c.Search.Timeout.String(),
			Limit:    c.Search.Limit,
			CacheTTL: c.Search.CacheTTL.String(),
		},
		Dialogue: dialogueSchema{
			SelectionTimeout: c.Dialogue.SelectionTimeout.String(),
			RatingTimeout:    c.Dialogue.RatingTimeout.String(),
			CommentTimeout:   c.Dialogue.CommentTimeout.String(),
			SweepInterval:    c.Dialogue.SweepInterval.String(),
			MaxCandidates:    c.Dialogue.MaxCandidates,
			CancelToken:      c.Dialogue.CancelToken,
			SkipToken:        c.Dialogue.SkipToken,
		},
		Commands: commandsSchema{
			Prefix:    c.Commands.Prefix,
			ListLimit: c.Commands.ListLimit,
		},
		Health: healthSchema{
			Enabled: c.Health.Enabled,
			Listen:  c.Health.Listen,
		},
		Log: logSchema{
			Level:      c.Log.Level,
			Format:     c.Log.Format,
			File:       c.Log.File,
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAgeDays: c.Log.MaxAgeDays,
		},
		Secrets: secretsSchema{
			Dir: c.Secrets.Dir,
		},
	}
}

// Encode renders c as a TOML document that Load can read back.
func Encode(c Config) ([]byte, error) {
	data, err := toml.Marshal(toSchema(c))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
