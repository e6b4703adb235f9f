package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bearcrabs/bookbot/internal/adapters/render/terminal"
	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/spf13/cobra"
)

func newSearchCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Look up books in Google Books",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return domain.ErrEmptyQuery
			}
			if limit <= 0 {
				limit = app.cfg.Search.Limit
			}

			searcher, err := app.searcher(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				books, err := searcher.Search(cmd.Context(), query, limit)
				if err != nil {
					return fmt.Errorf("search books: %w", err)
				}
				if books == nil {
					books = []domain.BookRecord{}
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			}

			books, err := searchWithSpinner(cmd.Context(), cmd.ErrOrStderr(), searcher, query, limit)
			if err != nil {
				return fmt.Errorf("search books: %w", err)
			}
			rendered, err := terminal.RenderBooks(query, books)
			if err != nil {
				return fmt.Errorf("render books: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default search.limit)")
	return cmd
}
