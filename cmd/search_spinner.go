package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	searchSpinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("137"))
	searchDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("107"))
)

// searchResultMsg carries the outcome of the lookup back into the program.
type searchResultMsg struct {
	books []domain.BookRecord
	err   error
}

type searchSpinnerModel struct {
	spinner spinner.Model
	query   string
	lookup  tea.Cmd
	result  searchResultMsg
	done    bool
}

func newSearchSpinnerModel(query string, lookup tea.Cmd) searchSpinnerModel {
	return searchSpinnerModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(searchSpinnerStyle)),
		query:   query,
		lookup:  lookup,
	}
}

func (m searchSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.lookup)
}

func (m searchSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		m.result = msg
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View leaves a one-line summary behind once the lookup has succeeded.
func (m searchSpinnerModel) View() string {
	switch {
	case !m.done:
		return fmt.Sprintf("%s Searching Google Books for %q...", m.spinner.View(), m.query)
	case m.result.err != nil:
		return ""
	default:
		return searchDoneStyle.Render(fmt.Sprintf("%s for %q", countBooks(len(m.result.books)), m.query)) + "\n"
	}
}

func countBooks(n int) string {
	if n == 1 {
		return "1 book"
	}
	return fmt.Sprintf("%d books", n)
}

// searchWithSpinner runs the lookup while a spinner animates on output.
func searchWithSpinner(ctx context.Context, output io.Writer, searcher ports.BookSearcher, query string, limit int) ([]domain.BookRecord, error) {
	lookup := func() tea.Msg {
		books, err := searcher.Search(ctx, query, limit)
		return searchResultMsg{books: books, err: err}
	}

	final, err := tea.NewProgram(
		newSearchSpinnerModel(query, lookup),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		return nil, err
	}

	model, ok := final.(searchSpinnerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected final spinner model type %T", final)
	}
	return model.result.books, model.result.err
}
