package application

import (
	"fmt"
	"strings"

	"github.com/bearcrabs/bookbot/internal/domain"
)

func sessionConflictText(owner domain.User) string {
	return fmt.Sprintf("%s, finish or cancel your current session first.", owner.Name())
}

func searchFailedText(query string) string {
	return fmt.Sprintf("Book search failed for '%s'. Please try again later.", query)
}

func notFoundText(query string) string {
	return fmt.Sprintf("Could not find the book '%s' in Google Books.", query)
}

func selectionListText(owner domain.User, query string, candidates []domain.BookRecord, cancelToken string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, I found several books for '%s':\n", owner.Name(), query)
	for i, book := range candidates {
		fmt.Fprintf(&b, "%d. **%s** by %s\n", i+1, book.Title, book.AuthorsLine())
	}
	fmt.Fprintf(&b, "Reply with a number from 1 to %d, or `%s` to stop.", len(candidates), cancelToken)
	return b.String()
}

func selectionRetryText(owner domain.User, count int, cancelToken string) string {
	return fmt.Sprintf("%s, please reply with a number from 1 to %d, or `%s` to stop.", owner.Name(), count, cancelToken)
}

func ratingPromptText(owner domain.User, book domain.BookRecord) string {
	return fmt.Sprintf("%s, how would you rate **%s**? Reply with a number from %d to %d.",
		owner.Name(), book.Title, domain.MinRating, domain.MaxRating)
}

func ratingRetryText(owner domain.User, cancelToken string) string {
	return fmt.Sprintf("%s, please provide a rating between %d and %d, or `%s` to stop.",
		owner.Name(), domain.MinRating, domain.MaxRating, cancelToken)
}

func commentPromptText(owner domain.User, rating int, skipToken string) string {
	return fmt.Sprintf("%s rated it %d/%d. Write your review, or `%s` to submit without one.",
		owner.Name(), rating, domain.MaxRating, skipToken)
}

func reviewSubmittedText(owner domain.User) string {
	return fmt.Sprintf("**Review Submitted!** Thanks, %s.", owner.Name())
}

func saveFailedText(owner domain.User) string {
	return fmt.Sprintf("%s, something went wrong while saving. Nothing was stored.", owner.Name())
}

func timedOutText(owner domain.User) string {
	return fmt.Sprintf("%s, your session timed out. Nothing was saved.", owner.Name())
}

func cancelledText(owner domain.User) string {
	return fmt.Sprintf("%s, your session was cancelled. Nothing was saved.", owner.Name())
}

func noSessionText(owner domain.User) string {
	return fmt.Sprintf("%s, you have no session to cancel.", owner.Name())
}

func noReadingSelfText(prefix string) string {
	return fmt.Sprintf("You have not set a currently reading book. Use `%sreading [book name]` to set one.", prefix)
}

func noReadingOtherText(user domain.User) string {
	return fmt.Sprintf("%s has not set a currently reading book.", user.Name())
}

func readingClearedText(owner domain.User) string {
	return fmt.Sprintf("%s, your currently reading book has been cleared.", owner.Name())
}

func nothingToClearText() string {
	return "You don't have a currently reading book set."
}

func emptyQueryText(prefix, command string) string {
	return fmt.Sprintf("Please provide a book name, e.g. `%s%s The Hobbit`.", prefix, command)
}

func userNotFoundText(reference string) string {
	return fmt.Sprintf("I couldn't find user %s.", reference)
}

func noReviewsText(user domain.User, self bool) string {
	if self {
		return "You haven't reviewed any books yet."
	}
	return fmt.Sprintf("%s hasn't reviewed any books yet.", user.Name())
}

func reviewsHeaderText(user domain.User, shown, total int) string {
	if shown == total {
		return fmt.Sprintf("Reviews by %s (%d):", user.Name(), total)
	}
	return fmt.Sprintf("Latest %d of %d reviews by %s:", shown, total, user.Name())
}

func unknownCommandText(prefix, name string) string {
	return fmt.Sprintf("Unknown command `%s%s`, try `%shelp`.", prefix, name, prefix)
}

func helpText(prefix string, cancelToken, skipToken string) string {
	lines := []string{
		"**📚 BearCrabs Book Bot Commands**",
		"",
		fmt.Sprintf("`%sreading [book name]` – Set the book you're currently reading", prefix),
		fmt.Sprintf("`%sreading [@username]` – Check what someone else is reading", prefix),
		fmt.Sprintf("`%sreading` – Show your own currently reading book", prefix),
		fmt.Sprintf("`%sclearreading` – Clear your currently reading status", prefix),
		fmt.Sprintf("`%sreview [book name]` – Leave a book review, step by step", prefix),
		fmt.Sprintf("`%sreview [rating 1-5] [book name] - [your review]` – Leave a book review in one message", prefix),
		fmt.Sprintf("`%smyreviews` – List your latest reviews", prefix),
		fmt.Sprintf("`%sreviews [@username]` – List someone's latest reviews", prefix),
		fmt.Sprintf("`%scancel` – Stop your current session", prefix),
		fmt.Sprintf("`%shelp` – Show this help message", prefix),
		"",
		fmt.Sprintf("While a session is open, reply `%s` to stop or `%s` to leave the review text empty.", cancelToken, skipToken),
	}
	return strings.Join(lines, "\n")
}
