package discord

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	handleTimeout = 2 * time.Minute
)

// api is the subset of *discordgo.Session the adapter calls.
type api interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembersSearch(guildID, query string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// Gateway connects the bot to Discord. It is both the inbound event source and
// the outbound messenger and user directory.
type Gateway struct {
	session *discordgo.Session
	api     api
	logger  *zap.Logger
}

var (
	_ ports.Messenger     = (*Gateway)(nil)
	_ ports.UserDirectory = (*Gateway)(nil)
)

var errEmptyToken = errors.New("discord token is empty")

func New(token string, logger *zap.Logger) (*Gateway, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errEmptyToken
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := discordgo.New("Bot " + strings.TrimPrefix(token, "Bot "))
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = intents

	return &Gateway{session: session, api: session, logger: logger.Named("discord")}, nil
}

// Run connects, feeds every message to handler and disconnects when ctx is done.
func (g *Gateway) Run(ctx context.Context, handler ports.MessageHandler) error {
	if g.session == nil {
		return errors.New("discord session is not initialised")
	}

	removeReady := g.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		g.logger.Info("connected to discord",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)),
		)
	})
	defer removeReady()

	removeMessage := g.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		selfID := ""
		if s.State != nil && s.State.User != nil {
			selfID = s.State.User.ID
		}
		g.handle(ctx, handler, selfID, m)
	})
	defer removeMessage()

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	<-ctx.Done()

	if err := g.session.Close(); err != nil {
		return fmt.Errorf("close discord gateway: %w", err)
	}
	g.logger.Info("disconnected from discord")
	return nil
}

// handle runs on discordgo's event goroutine. A panic is confined to the one message.
func (g *Gateway) handle(ctx context.Context, handler ports.MessageHandler, selfID string, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}
	if m.Author.Bot || m.Author.ID == selfID {
		return
	}
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("message handler panicked",
				zap.Any("panic", r),
				zap.String("channel", m.ChannelID),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()

	msgCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if err := handler.HandleMessage(msgCtx, toMessage(m.Message)); err != nil {
		g.logger.Warn("handle message failed",
			zap.String("channel", m.ChannelID),
			zap.String("user", m.Author.ID),
			zap.Error(err),
		)
	}
}

func toMessage(m *discordgo.Message) domain.Message {
	msg := domain.Message{
		Author:  toUser(m.Author, m.Member),
		Channel: domain.ChannelID(m.ChannelID),
		Text:    m.Content,
	}
	for _, mention := range m.Mentions {
		if mention == nil || mention.Bot {
			continue
		}
		msg.Mentions = append(msg.Mentions, toUser(mention, nil))
	}
	return msg
}

func toUser(user *discordgo.User, member *discordgo.Member) domain.User {
	if user == nil {
		return domain.User{}
	}
	return domain.User{ID: domain.UserID(user.ID), DisplayName: displayName(user, member)}
}

func displayName(user *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
