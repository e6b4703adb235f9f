package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bearcrabs/bookbot/internal/adapters/search/googlebooks"
	"github.com/bearcrabs/bookbot/internal/application"
	"github.com/spf13/viper"
)

const (
	configDirName  = "bookbot"
	configFileName = "config.toml"
	configType     = "toml"
	envPrefix      = "BOOKBOT"
	secretsDirName = "secrets"
)

const (
	keyVersion          = "version"
	keySearchBaseURL    = "search.base_url"
	keySearchTimeout    = "search.timeout"
	keySearchLimit      = "search.limit"
	keySearchCacheTTL   = "search.cache_ttl"
	keySelectionTimeout = "dialogue.selection_timeout"
	keyRatingTimeout    = "dialogue.rating_timeout"
	keyCommentTimeout   = "dialogue.comment_timeout"
	keySweepInterval    = "dialogue.sweep_interval"
	keyMaxCandidates    = "dialogue.max_candidates"
	keyCancelToken      = "dialogue.cancel_token"
	keySkipToken        = "dialogue.skip_token"
	keyCommandPrefix    = "commands.prefix"
	keyListLimit        = "commands.list_limit"
	keyHealthEnabled    = "health.enabled"
	keyHealthListen     = "health.listen"
	keyLogLevel         = "log.level"
	keyLogFormat        = "log.format"
	keyLogFile          = "log.file"
	keyLogMaxSizeMB     = "log.max_size_mb"
	keyLogMaxBackups    = "log.max_backups"
	keyLogMaxAgeDays    = "log.max_age_days"
	keySecretsDir       = "secrets.dir"
)

const (
	defaultHealthListen  = ":8080"
	defaultCacheTTL      = 10 * time.Minute
	defaultLogLevel      = "info"
	defaultLogFormat     = "console"
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

// Secret keys resolved through the secret store chain.
const (
	SecretDiscordToken      = "discord-token"
	SecretGoogleBooksAPIKey = "google-books-api-key"
)

type Config struct {
	// Path is the file the values were read from, empty when only defaults and env applied.
	Path     string
	Search   SearchConfig
	Dialogue DialogueConfig
	Commands CommandsConfig
	Health   HealthConfig
	Log      LogConfig
	Secrets  SecretsConfig
}

type SearchConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Limit    int
	CacheTTL time.Duration
}

type DialogueConfig struct {
	SelectionTimeout time.Duration
	RatingTimeout    time.Duration
	CommentTimeout   time.Duration
	SweepInterval    time.Duration
	MaxCandidates    int
	CancelToken      string
	SkipToken        string
}

type CommandsConfig struct {
	Prefix    string
	ListLimit int
}

type HealthConfig struct {
	Enabled bool
	Listen  string
}

type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type SecretsConfig struct {
	Dir string
}

// DefaultDir returns $XDG_CONFIG_HOME/bookbot, falling back to ~/.config/bookbot.
func DefaultDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, configDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName), nil
}

func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Default returns the configuration used when no file or environment override is present.
func Default() Config {
	engine := application.DefaultEngineConfig()

	return Config{
		Search: SearchConfig{
			BaseURL:  googlebooks.DefaultBaseURL,
			Timeout:  googlebooks.DefaultTimeout,
			Limit:    engine.SearchLimit,
			CacheTTL: defaultCacheTTL,
		},
		Dialogue: DialogueConfig{
			SelectionTimeout: engine.SelectionTimeout,
			RatingTimeout:    engine.RatingTimeout,
			CommentTimeout:   engine.CommentTimeout,
			SweepInterval:    engine.SweepInterval,
			MaxCandidates:    engine.MaxCandidates,
			CancelToken:      engine.CancelToken,
			SkipToken:        engine.SkipToken,
		},
		Commands: CommandsConfig{
			Prefix:    application.DefaultCommandPrefix,
			ListLimit: application.DefaultListLimit,
		},
		Health: HealthConfig{
			Enabled: true,
			Listen:  defaultHealthListen,
		},
		Log: LogConfig{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

// Load reads path (or the default location when path is empty) into v and
// applies BOOKBOT_* environment overrides. A missing default file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	loadedFrom := ""
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &configNotFound), errors.Is(err, os.ErrNotExist):
			if explicit {
				return Config{}, fmt.Errorf("read config file %q: %w", path, err)
			}
		default:
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
	} else {
		loadedFrom = path
	}
	if version := v.GetInt(keyVersion); version > currentSchemaVersion {
		return Config{}, fmt.Errorf("unsupported config schema version %d (current %d)", version, currentSchemaVersion)
	}

	cfg := Config{
		Path: loadedFrom,
		Search: SearchConfig{
			BaseURL:  v.GetString(keySearchBaseURL),
			Timeout:  v.GetDuration(keySearchTimeout),
			Limit:    v.GetInt(keySearchLimit),
			CacheTTL: v.GetDuration(keySearchCacheTTL),
		},
		Dialogue: DialogueConfig{
			SelectionTimeout: v.GetDuration(keySelectionTimeout),
			RatingTimeout:    v.GetDuration(keyRatingTimeout),
			CommentTimeout:   v.GetDuration(keyCommentTimeout),
			SweepInterval:    v.GetDuration(keySweepInterval),
			MaxCandidates:    v.GetInt(keyMaxCandidates),
			CancelToken:      strings.TrimSpace(v.GetString(keyCancelToken)),
			SkipToken:        strings.TrimSpace(v.GetString(keySkipToken)),
		},
		Commands: CommandsConfig{
			Prefix:    strings.TrimSpace(v.GetString(keyCommandPrefix)),
			ListLimit: v.GetInt(keyListLimit),
		},
		Health: HealthConfig{
			Enabled: v.GetBool(keyHealthEnabled),
			Listen:  strings.TrimSpace(v.GetString(keyHealthListen)),
		},
		Log: LogConfig{
			Level:      strings.ToLower(strings.TrimSpace(v.GetString(keyLogLevel))),
			Format:     strings.ToLower(strings.TrimSpace(v.GetString(keyLogFormat))),
			File:       strings.TrimSpace(v.GetString(keyLogFile)),
			MaxSizeMB:  v.GetInt(keyLogMaxSizeMB),
			MaxBackups: v.GetInt(keyLogMaxBackups),
			MaxAgeDays: v.GetInt(keyLogMaxAgeDays),
		},
		Secrets: SecretsConfig{
			Dir: strings.TrimSpace(v.GetString(keySecretsDir)),
		},
	}
	if cfg.Secrets.Dir == "" {
		cfg.Secrets.Dir = filepath.Join(filepath.Dir(path), secretsDirName)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault(keySearchBaseURL, def.Search.BaseURL)
	v.SetDefault(keySearchTimeout, def.Search.Timeout)
	v.SetDefault(keySearchLimit, def.Search.Limit)
	v.SetDefault(keySearchCacheTTL, def.Search.CacheTTL)
	v.SetDefault(keySelectionTimeout, def.Dialogue.SelectionTimeout)
	v.SetDefault(keyRatingTimeout, def.Dialogue.RatingTimeout)
	v.SetDefault(keyCommentTimeout, def.Dialogue.CommentTimeout)
	v.SetDefault(keySweepInterval, def.Dialogue.SweepInterval)
	v.SetDefault(keyMaxCandidates, def.Dialogue.MaxCandidates)
	v.SetDefault(keyCancelToken, def.Dialogue.CancelToken)
	v.SetDefault(keySkipToken, def.Dialogue.SkipToken)
	v.SetDefault(keyCommandPrefix, def.Commands.Prefix)
	v.SetDefault(keyListLimit, def.Commands.ListLimit)
	v.SetDefault(keyHealthEnabled, def.Health.Enabled)
	v.SetDefault(keyHealthListen, def.Health.Listen)
	v.SetDefault(keyLogLevel, def.Log.Level)
	v.SetDefault(keyLogFormat, def.Log.Format)
	v.SetDefault(keyLogFile, def.Log.File)
	v.SetDefault(keyLogMaxSizeMB, def.Log.MaxSizeMB)
	v.SetDefault(keyLogMaxBackups, def.Log.MaxBackups)
	v.SetDefault(keyLogMaxAgeDays, def.Log.MaxAgeDays)
	v.SetDefault(keySecretsDir, "")
}

func (c Config) Validate() error {
	var errs []error

	for _, timeout := range []struct {
		key   string
		value time.Duration
	}{
		{keySearchTimeout, c.Search.Timeout},
		{keySelectionTimeout, c.Dialogue.SelectionTimeout},
		{keyRatingTimeout, c.Dialogue.RatingTimeout},
		{keyCommentTimeout, c.Dialogue.CommentTimeout},
		{keySweepInterval, c.Dialogue.SweepInterval},
	} {
		if timeout.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", timeout.key, timeout.value))
		}
	}
	if c.Search.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %s", keySearchCacheTTL, c.Search.CacheTTL))
	}
	if strings.TrimSpace(c.Search.BaseURL) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", keySearchBaseURL))
	}
	if c.Search.Limit < 1 || c.Search.Limit > googlebooks.MaxResults {
		errs = append(errs, fmt.Errorf("%s must be between 1 and %d, got %d", keySearchLimit, googlebooks.MaxResults, c.Search.Limit))
	}
	if c.Dialogue.MaxCandidates < 1 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", keyMaxCandidates, c.Dialogue.MaxCandidates))
	}
	if c.Dialogue.CancelToken == "" || c.Dialogue.SkipToken == "" {
		errs = append(errs, errors.New("dialogue cancel and skip tokens must be set"))
	} else if strings.EqualFold(c.Dialogue.CancelToken, c.Dialogue.SkipToken) {
		errs = append(errs, errors.New("dialogue cancel and skip tokens must differ"))
	}
	if c.Commands.Prefix == "" {
		errs = append(errs, fmt.Errorf("%s is empty", keyCommandPrefix))
	}
	if c.Commands.ListLimit < 1 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", keyListLimit, c.Commands.ListLimit))
	}
	if c.Health.Enabled && c.Health.Listen == "" {
		errs = append(errs, fmt.Errorf("%s is empty", keyHealthListen))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("%s must be console or json, got %q", keyLogFormat, c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c Config) EngineConfig() application.EngineConfig {
	return application.EngineConfig{
		SelectionTimeout: c.Dialogue.SelectionTimeout,
		RatingTimeout:    c.Dialogue.RatingTimeout,
		CommentTimeout:   c.Dialogue.CommentTimeout,
		SearchTimeout:    c.Search.Timeout,
		SweepInterval:    c.Dialogue.SweepInterval,
		SearchLimit:      c.Search.Limit,
		MaxCandidates:    c.Dialogue.MaxCandidates,
		CancelToken:      c.Dialogue.CancelToken,
		SkipToken:        c.Dialogue.SkipToken,
	}
}

func (c Config) DispatcherConfig() application.DispatcherConfig {
	return application.DispatcherConfig{
		Prefix:    c.Commands.Prefix,
		ListLimit: c.Commands.ListLimit,
	}
}
