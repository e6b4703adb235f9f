package cmd

import (
	"fmt"

	"github.com/bearcrabs/bookbot/internal/adapters/gateway/discord"
	"github.com/bearcrabs/bookbot/internal/adapters/httpapi"
	"github.com/bearcrabs/bookbot/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *app) *cobra.Command {
	var noHealth bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and answer book commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			token, err := app.secretStore.Get(ctx, config.SecretDiscordToken)
			if err != nil {
				return fmt.Errorf("resolve discord token: %w", err)
			}
			searcher, err := app.searcher(ctx)
			if err != nil {
				return err
			}
			gateway, err := discord.New(token, app.logger)
			if err != nil {
				return fmt.Errorf("create discord gateway: %w", err)
			}

			b := app.newBot(searcher, gateway, gateway)
			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				return gateway.Run(ctx, b.dispatcher)
			})
			group.Go(func() error {
				return b.engine.Run(ctx)
			})
			if app.cfg.Health.Enabled && !noHealth {
				if !app.verbose {
					gin.SetMode(gin.ReleaseMode)
				}
				server := httpapi.NewServer(app.cfg.Health.Listen, b.engine, app.clock, app.logger)
				group.Go(func() error {
					return server.Run(ctx)
				})
			}

			app.logger.Info("bookbot starting",
				zap.String("prefix", app.cfg.Commands.Prefix),
				zap.Bool("health", app.cfg.Health.Enabled && !noHealth),
				zap.String("health_listen", app.cfg.Health.Listen),
			)
			if err := group.Wait(); err != nil {
				return err
			}
			app.logger.Info("bookbot stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHealth, "no-health", false, "do not start the keep-alive HTTP endpoint")
	return cmd
}
