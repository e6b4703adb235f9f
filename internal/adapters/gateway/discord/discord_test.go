package discord

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	texts    []string
	embeds   []*discordgo.MessageEmbed
	channels map[string]*discordgo.Channel
	members  map[string]*discordgo.Member
	users    map[string]*discordgo.User
	search   []*discordgo.Member
	sendErr  error
}

func (f *fakeAPI) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.texts = append(f.texts, content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeAPI) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeAPI) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if ch, ok := f.channels[channelID]; ok {
		return ch, nil
	}
	return nil, errors.New("unknown channel")
}

func (f *fakeAPI) GuildMember(_ string, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if member, ok := f.members[userID]; ok {
		return member, nil
	}
	return nil, errors.New("unknown member")
}

func (f *fakeAPI) GuildMembersSearch(_ string, _ string, _ int, _ ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	return f.search, nil
}

func (f *fakeAPI) User(userID string, _ ...discordgo.RequestOption) (*discordgo.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
}

type recordingHandler struct {
	mu   sync.Mutex
	msgs []domain.Message
	fn   func(domain.Message) error
}

func (h *recordingHandler) HandleMessage(_ context.Context, msg domain.Message) error {
	h.mu.Lock()
	h.msgs = append(h.msgs, msg)
	h.mu.Unlock()
	if h.fn != nil {
		return h.fn(msg)
	}
	return nil
}

func TestNewRejectsEmptyToken(t *testing.T) {
	_, err := New("  ", nil)
	require.ErrorIs(t, err, errEmptyToken)

	gateway, err := New("Bot abc.def", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Bot abc.def", gateway.session.Token)
	assert.Equal(t, intents, gateway.session.Identify.Intents)
}

func TestSplitMessage(t *testing.T) {
	assert.Nil(t, splitMessage("   ", 10))
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"aaaaa", "bbb"}, splitMessage("aaaaa\nbbb", 8))
	assert.Equal(t, []string{"abcdefgh", "ij"}, splitMessage("abcdefghij", 8))

	long := strings.Repeat("★", 4500)
	chunks := splitMessage(long, maxMessageLength)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), maxMessageLength)
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestSendTextChunksLongMessages(t *testing.T) {
	fake := &fakeAPI{}
	gateway := &Gateway{api: fake, logger: zap.NewNop()}

	require.NoError(t, gateway.SendText(context.Background(), "c-1", strings.Repeat("x", 2500)))
	require.Len(t, fake.texts, 2)
	assert.Len(t, fake.texts[0], 2000)
	assert.Len(t, fake.texts[1], 500)

	fake.sendErr = errors.New("rate limited")
	err := gateway.SendText(context.Background(), "c-1", "hello")
	require.ErrorContains(t, err, "send discord message")
}

func TestToEmbed(t *testing.T) {
	embed := toEmbed(ports.Card{
		Title:        "Dune",
		URL:          "https://books.example/dune",
		Description:  strings.Repeat("d", 5000),
		ThumbnailURL: "https://books.example/dune.jpg",
		Fields: []ports.CardField{
			{Name: "Authors", Value: "Frank Herbert", Inline: true},
			{Name: "Review", Value: "  "},
		},
		Footer: "Reviewed by Alice",
	})

	assert.Equal(t, "Dune", embed.Title)
	assert.Equal(t, "https://books.example/dune", embed.URL)
	assert.Len(t, []rune(embed.Description), maxEmbedDescription)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "https://books.example/dune.jpg", embed.Thumbnail.URL)
	require.Len(t, embed.Fields, 2)
	assert.True(t, embed.Fields[0].Inline)
	assert.Equal(t, emptyFieldValue, embed.Fields[1].Value)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Reviewed by Alice", embed.Footer.Text)

	bare := toEmbed(ports.Card{Title: "Untitled"})
	assert.Nil(t, bare.Thumbnail)
	assert.Nil(t, bare.Footer)
}

func TestParseMention(t *testing.T) {
	id, ok := ParseMention("<@1234>")
	assert.True(t, ok)
	assert.Equal(t, "1234", id)

	id, ok = ParseMention(" <@!98765> ")
	assert.True(t, ok)
	assert.Equal(t, "98765", id)

	for _, ref := range []string{"@bob", "<#1234>", "<@&1234>", "Dune", "<@12a>"} {
		_, ok := ParseMention(ref)
		assert.False(t, ok, ref)
	}
}

func TestResolveUser(t *testing.T) {
	fake := &fakeAPI{
		channels: map[string]*discordgo.Channel{"c-1": {ID: "c-1", GuildID: "g-1"}},
		members: map[string]*discordgo.Member{
			"42": {Nick: "Bobby", User: &discordgo.User{ID: "42", Username: "bob"}},
		},
		users: map[string]*discordgo.User{
			"77": {ID: "77", Username: "carol", GlobalName: "Carol"},
		},
		search: []*discordgo.Member{
			{User: &discordgo.User{ID: "41", Username: "bobcat"}},
			{User: &discordgo.User{ID: "42", Username: "bob"}, Nick: "Bobby"},
		},
	}
	gateway := &Gateway{api: fake, logger: zap.NewNop()}
	ctx := context.Background()

	user, err := gateway.ResolveUser(ctx, "c-1", "<@!42>")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "42", DisplayName: "Bobby"}, user)

	user, err = gateway.ResolveUser(ctx, "c-1", "<@77>")
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "77", DisplayName: "Carol"}, user)

	user, err = gateway.ResolveUser(ctx, "c-1", "@Bob")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("42"), user.ID)

	_, err = gateway.ResolveUser(ctx, "c-1", "<@999>")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	for _, ref := range []string{"The Hobbit", "@", "@two words", "@nobody"} {
		_, err := gateway.ResolveUser(ctx, "c-1", ref)
		require.ErrorIs(t, err, domain.ErrUserNotFound, ref)
	}

	_, err = gateway.ResolveUser(ctx, "c-dm", "@bob")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestHandleFiltersBotsAndSelf(t *testing.T) {
	handler := &recordingHandler{}
	gateway := &Gateway{api: &fakeAPI{}, logger: zap.NewNop()}
	ctx := context.Background()

	gateway.handle(ctx, handler, "self", &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c-1", Content: "!help", Author: &discordgo.User{ID: "b-1", Bot: true},
	}})
	gateway.handle(ctx, handler, "self", &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c-1", Content: "!help", Author: &discordgo.User{ID: "self"},
	}})
	gateway.handle(ctx, handler, "self", &discordgo.MessageCreate{})
	assert.Empty(t, handler.msgs)

	gateway.handle(ctx, handler, "self", &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c-1",
		Content:   "!reading <@42>",
		Author:    &discordgo.User{ID: "7", Username: "alice", GlobalName: "Alice"},
		Member:    &discordgo.Member{Nick: "Al"},
		Mentions: []*discordgo.User{
			{ID: "42", Username: "bob"},
			{ID: "99", Username: "helper", Bot: true},
		},
	}})

	require.Len(t, handler.msgs, 1)
	msg := handler.msgs[0]
	assert.Equal(t, domain.User{ID: "7", DisplayName: "Al"}, msg.Author)
	assert.Equal(t, domain.ChannelID("c-1"), msg.Channel)
	assert.Equal(t, "!reading <@42>", msg.Text)
	assert.Equal(t, []domain.User{{ID: "42", DisplayName: "bob"}}, msg.Mentions)
}

func TestHandleRecoversFromPanics(t *testing.T) {
	handler := &recordingHandler{fn: func(domain.Message) error { panic("boom") }}
	gateway := &Gateway{api: &fakeAPI{}, logger: zap.NewNop()}

	assert.NotPanics(t, func() {
		gateway.handle(context.Background(), handler, "self", &discordgo.MessageCreate{Message: &discordgo.Message{
			ChannelID: "c-1", Content: "2", Author: &discordgo.User{ID: "7"},
		}})
	})
	assert.Len(t, handler.msgs, 1)
}

func TestHandleSkipsAfterShutdown(t *testing.T) {
	handler := &recordingHandler{}
	gateway := &Gateway{api: &fakeAPI{}, logger: zap.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gateway.handle(ctx, handler, "self", &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "c-1", Content: "2", Author: &discordgo.User{ID: "7"},
	}})
	assert.Empty(t, handler.msgs)
}
