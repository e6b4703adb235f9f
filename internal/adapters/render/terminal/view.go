package terminal

import (
	"fmt"
	"strings"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/charmbracelet/lipgloss"
)

const (
	cardWidth        = 64
	descriptionLimit = 200
)

// RenderCard draws a card as a bordered terminal block.
func RenderCard(card ports.Card) (string, error) {
	return render(func(s styles) string { return renderCard(card, s) })
}

// RenderBooks draws a numbered list of search results.
func RenderBooks(query string, books []domain.BookRecord) (string, error) {
	return render(func(s styles) string { return renderBooks(query, books, s) })
}

// RenderReply draws a bot text reply prefixed with the speaker name.
func RenderReply(speaker, text string) (string, error) {
	return render(func(s styles) string { return renderReply(speaker, text, s) })
}

func renderCard(card ports.Card, s styles) string {
	inner := cardWidth - s.card.GetHorizontalFrameSize()
	lines := []string{s.title.Width(inner).Render(card.Title)}

	if card.URL != "" {
		lines = append(lines, s.link.Render(card.URL))
	}
	if card.Description != "" {
		lines = append(lines, "", s.body.Width(inner).Render(card.Description))
	}

	if len(card.Fields) > 0 {
		lines = append(lines, "")
		for _, field := range card.Fields {
			label := s.fieldName.Render(field.Name + ":")
			value := s.fieldValue.Width(inner - lipgloss.Width(label) - 1).Render(field.Value)
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", value))
		}
	}

	if card.ThumbnailURL != "" {
		lines = append(lines, s.empty.Render("cover: "+card.ThumbnailURL))
	}
	if card.Footer != "" {
		lines = append(lines, "", s.footer.Render(card.Footer))
	}

	return s.card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderBooks(query string, books []domain.BookRecord, s styles) string {
	lines := []string{
		s.title.Render(fmt.Sprintf("Results for %q", query)),
		s.header.Render(fmt.Sprintf("books: %d", len(books))),
	}

	if len(books) == 0 {
		lines = append(lines, s.empty.Render("No books found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for i, book := range books {
		entry := []string{
			s.index.Render(fmt.Sprintf("%2d.", i+1)) + " " + s.title.Render(book.Title),
			"    " + s.authors.Render(book.AuthorsLine()),
		}
		if book.Description != "" && book.Description != domain.DefaultDescription {
			entry = append(entry, s.body.PaddingLeft(4).Width(cardWidth).Render(book.ShortDescription(descriptionLimit)))
		}
		if book.DetailLink != "" {
			entry = append(entry, "    "+s.link.Render(book.DetailLink))
		}
		lines = append(lines, lipgloss.NewStyle().MarginTop(1).Render(lipgloss.JoinVertical(lipgloss.Left, entry...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderReply(speaker, text string, s styles) string {
	text = strings.TrimRight(text, "\n")
	if speaker == "" {
		return s.body.Render(text)
	}
	return s.speaker.Render(speaker+":") + " " + s.body.Render(text)
}
