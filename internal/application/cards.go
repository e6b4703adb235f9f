package application

import (
	"fmt"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
)

const (
	cardDescriptionLimit = 300
	cardFieldLimit       = 1024
)

func bookCard(book domain.BookRecord) ports.Card {
	return ports.Card{
		Title:        book.Title,
		URL:          book.DetailLink,
		Description:  book.ShortDescription(cardDescriptionLimit),
		ThumbnailURL: book.ThumbnailURL,
		Fields: []ports.CardField{
			{Name: "Authors", Value: book.AuthorsLine(), Inline: true},
		},
	}
}

func readingCard(entry domain.ReadingEntry) ports.Card {
	card := bookCard(entry.Book)
	card.Footer = fmt.Sprintf("%s is currently reading", entry.UserName)
	return card
}

func reviewCard(review domain.Review) ports.Card {
	card := bookCard(review.Book)
	card.Description = ""
	card.Fields = append(card.Fields, ports.CardField{
		Name:   "Rating",
		Value:  fmt.Sprintf("%s (%d/%d)", domain.Stars(review.Rating), review.Rating, domain.MaxRating),
		Inline: true,
	})
	if review.HasComment() {
		card.Fields = append(card.Fields, ports.CardField{
			Name:  "Review",
			Value: domain.Truncate(review.Comment, cardFieldLimit),
		})
	}
	card.Footer = fmt.Sprintf("Reviewed by %s", review.SubmittedByName)
	return card
}
