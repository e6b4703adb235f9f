package ports

import (
	"context"

	"github.com/bearcrabs/bookbot/internal/domain"
)

type CardField struct {
	Name   string
	Value  string
	Inline bool
}

// Card is a platform-neutral rich message. Gateways decide how to draw it.
type Card struct {
	Title        string
	URL          string
	Description  string
	ThumbnailURL string
	Fields       []CardField
	Footer       string
}

type Messenger interface {
	SendText(ctx context.Context, channel domain.ChannelID, text string) error
	SendCard(ctx context.Context, channel domain.ChannelID, card Card) error
}

// UserDirectory resolves a mention or "@name" reference to a platform user.
// It returns domain.ErrUserNotFound when the reference is not a known user.
type UserDirectory interface {
	ResolveUser(ctx context.Context, channel domain.ChannelID, reference string) (domain.User, error)
}

// MessageHandler consumes inbound messages from a gateway.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg domain.Message) error
}
