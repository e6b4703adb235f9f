package cmd

import (
	"context"

	"github.com/bearcrabs/bookbot/internal/adapters/gateway/console"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newChatCmd(app *app) *cobra.Command {
	var (
		user    string
		channel string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the bot in the terminal",
		Long:  "chat reads messages from stdin, one per line, and prints the bot's replies. Lines starting with / are console commands, see /help.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			searcher, err := app.searcher(ctx)
			if err != nil {
				return err
			}

			con := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), console.Options{
				User:    user,
				Channel: channel,
				Logger:  app.logger,
			})
			b := app.newBot(searcher, con, con)

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				defer cancel()
				return con.Run(ctx, b.dispatcher)
			})
			group.Go(func() error {
				return b.engine.Run(ctx)
			})
			return group.Wait()
		},
	}

	cmd.Flags().StringVar(&user, "user", console.DefaultUser, "name to chat as")
	cmd.Flags().StringVar(&channel, "channel", console.DefaultChannel, "channel to chat in")
	return cmd
}
