package application

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	CommandReview           = "review"
	CommandReading          = "reading"
	CommandCurrentlyReading = "currentlyreading"
	CommandClearReading     = "clearreading"
	CommandMyReviews        = "myreviews"
	CommandReviews          = "reviews"
	CommandCancel           = "cancel"
	CommandHelp             = "help"
	CommandBookHelp         = "bookhelp"
)

var knownCommands = map[string]bool{
	CommandReview:           true,
	CommandReading:          true,
	CommandCurrentlyReading: true,
	CommandClearReading:     true,
	CommandMyReviews:        true,
	CommandReviews:          true,
	CommandCancel:           true,
	CommandHelp:             true,
	CommandBookHelp:         true,
}

// quickReviewPattern matches "<rating> <book> - <review>". The book ends at the first " - ".
var quickReviewPattern = regexp.MustCompile(`(?s)^([1-5])\s+(.+?)\s-\s(.+)$`)

// KnownCommand reports whether name is a command the dispatcher handles.
func KnownCommand(name string) bool {
	return knownCommands[name]
}

// Command is a parsed bot command. Name is lower-cased; Args is the rest of the line.
type Command struct {
	Name string
	Args string
}

// ParseCommand reports whether text is a bot command for prefix.
// The command name must follow the prefix directly.
func ParseCommand(prefix, text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return Command{}, false
	}

	rest := text[len(prefix):]
	first, _ := utf8.DecodeRuneInString(rest)
	if rest == "" || unicode.IsSpace(first) {
		return Command{}, false
	}

	name, args := rest, ""
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		name, args = rest[:i], rest[i:]
	}

	return Command{
		Name: strings.ToLower(name),
		Args: strings.TrimSpace(args),
	}, true
}

// ParseQuickReview splits review arguments of the form "<rating 1-5> <book> - <review>".
func ParseQuickReview(args string) (string, ReviewDraft, bool) {
	match := quickReviewPattern.FindStringSubmatch(strings.TrimSpace(args))
	if match == nil {
		return "", ReviewDraft{}, false
	}

	query := strings.TrimSpace(match[2])
	comment := strings.TrimSpace(match[3])
	if query == "" || comment == "" {
		return "", ReviewDraft{}, false
	}
	rating, _ := strconv.Atoi(match[1])
	return query, ReviewDraft{Rating: rating, Comment: comment}, true
}
