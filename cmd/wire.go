package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bearcrabs/bookbot/internal/adapters/search/cache"
	"github.com/bearcrabs/bookbot/internal/adapters/search/googlebooks"
	chainstore "github.com/bearcrabs/bookbot/internal/adapters/secrets/chain"
	"github.com/bearcrabs/bookbot/internal/adapters/store/memory"
	"github.com/bearcrabs/bookbot/internal/application"
	"github.com/bearcrabs/bookbot/internal/config"
	"github.com/bearcrabs/bookbot/internal/logging"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	verbose    bool

	cfg         config.Config
	logger      *zap.Logger
	secretStore ports.SecretStore
	httpClient  *http.Client
	clock       ports.Clock
}

// bot is one running instance of the dialogue engine and its command router.
type bot struct {
	engine     *application.Engine
	dispatcher *application.Dispatcher
}

func newApp() *app {
	return &app{
		logger:     zap.NewNop(),
		httpClient: http.DefaultClient,
		clock:      ports.SystemClock{},
	}
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(viper.New(), a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Verbose:    a.verbose,
		Output:     stderr,
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	secretStore, err := chainstore.NewDefault(cfg.Secrets.Dir)
	if err != nil {
		return fmt.Errorf("wire secret store chain: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.secretStore = secretStore
	if cfg.Path != "" {
		logger.Debug("config loaded", zap.String("path", cfg.Path))
	}
	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// searcher builds the cached Google Books client. The API key is required.
func (a *app) searcher(ctx context.Context) (ports.BookSearcher, error) {
	apiKey, err := a.secretStore.Get(ctx, config.SecretGoogleBooksAPIKey)
	if err != nil {
		return nil, fmt.Errorf("resolve google books api key: %w", err)
	}

	client := googlebooks.NewClient(googlebooks.Options{
		BaseURL:    a.cfg.Search.BaseURL,
		APIKey:     apiKey,
		Timeout:    a.cfg.Search.Timeout,
		HTTPClient: a.httpClient,
		Logger:     a.logger,
	})
	return cache.New(client, a.cfg.Search.CacheTTL, a.logger), nil
}

func (a *app) newBot(searcher ports.BookSearcher, messenger ports.Messenger, users ports.UserDirectory) *bot {
	readings := memory.NewReadingRegistry()
	reviews := memory.NewReviewStore()

	engine := application.NewEngine(searcher, readings, reviews, messenger, a.clock, a.logger, a.cfg.EngineConfig())
	dispatcher := application.NewDispatcher(engine, readings, reviews, messenger, users, a.cfg.DispatcherConfig(), a.logger)
	return &bot{engine: engine, dispatcher: dispatcher}
}
