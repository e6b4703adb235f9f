package cmd

import (
	"github.com/spf13/cobra"
)

const annotationSkipConfig = "bookbot/skip-config"

// skipConfig marks commands that must work without a readable config file.
var skipConfig = map[string]string{annotationSkipConfig: "true"}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	app := newApp()

	rootCmd := &cobra.Command{
		Use:           "bookbot",
		Short:         "BearCrabs book bot: currently reading and book reviews for Discord",
		Long:          "bookbot runs the BearCrabs book bot. Members set the book they are currently reading and write short reviews, with books looked up in Google Books. Use serve to connect to Discord or chat to try the bot in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationSkipConfig] != "" {
				return nil
			}
			return app.load(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			app.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, "config", "", "path to the config file (default $XDG_CONFIG_HOME/bookbot/config.toml)")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newChatCmd(app),
		newSearchCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
