package domain

import "strings"

const (
	DefaultTitle       = "Unknown Title"
	DefaultAuthor      = "Unknown Author"
	DefaultDescription = "No description available."
)

type BookRecord struct {
	Title        string
	Authors      []string
	Description  string
	ThumbnailURL string
	DetailLink   string
}

// Normalize fills missing fields with the display defaults.
func (b BookRecord) Normalize() BookRecord {
	out := b.Clone()
	out.Title = strings.TrimSpace(out.Title)
	if out.Title == "" {
		out.Title = DefaultTitle
	}

	authors := make([]string, 0, len(out.Authors))
	for _, author := range out.Authors {
		if trimmed := strings.TrimSpace(author); trimmed != "" {
			authors = append(authors, trimmed)
		}
	}
	if len(authors) == 0 {
		authors = []string{DefaultAuthor}
	}
	out.Authors = authors

	if strings.TrimSpace(out.Description) == "" {
		out.Description = DefaultDescription
	}
	out.ThumbnailURL = strings.TrimSpace(out.ThumbnailURL)
	out.DetailLink = strings.TrimSpace(out.DetailLink)

	return out
}

// Clone returns a snapshot that shares no memory with b.
func (b BookRecord) Clone() BookRecord {
	out := b
	if b.Authors != nil {
		out.Authors = append([]string(nil), b.Authors...)
	}
	return out
}

func (b BookRecord) AuthorsLine() string {
	if len(b.Authors) == 0 {
		return DefaultAuthor
	}
	return strings.Join(b.Authors, ", ")
}

// ShortDescription truncates the description to at most limit runes for display.
func (b BookRecord) ShortDescription(limit int) string {
	return Truncate(b.Description, limit)
}

// Truncate cuts s to at most limit runes, ending with "..." when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimRight(string(runes[:limit-3]), " ") + "..."
}
