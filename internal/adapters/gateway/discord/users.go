package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bwmarrin/discordgo"
)

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// ParseMention extracts the user ID from a <@id> or <@!id> mention.
func ParseMention(reference string) (string, bool) {
	match := mentionPattern.FindStringSubmatch(strings.TrimSpace(reference))
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ResolveUser accepts a mention or an "@name" reference. Anything else is reported
// as domain.ErrUserNotFound so the caller can treat it as free text.
func (g *Gateway) ResolveUser(ctx context.Context, channel domain.ChannelID, reference string) (domain.User, error) {
	reference = strings.TrimSpace(reference)

	if id, ok := ParseMention(reference); ok {
		return g.resolveByID(ctx, channel, id)
	}

	name, ok := strings.CutPrefix(reference, "@")
	if !ok || name == "" || strings.ContainsAny(name, " \t\n") {
		return domain.User{}, domain.ErrUserNotFound
	}
	return g.resolveByName(ctx, channel, name)
}

func (g *Gateway) resolveByID(ctx context.Context, channel domain.ChannelID, id string) (domain.User, error) {
	if guildID := g.guildOf(ctx, channel); guildID != "" {
		member, err := g.api.GuildMember(guildID, id, discordgo.WithContext(ctx))
		if err == nil && member != nil && member.User != nil {
			return toUser(member.User, member), nil
		}
	}

	user, err := g.api.User(id, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("fetch discord user %s: %w", id, err)
	}
	return toUser(user, nil), nil
}

func (g *Gateway) resolveByName(ctx context.Context, channel domain.ChannelID, name string) (domain.User, error) {
	guildID := g.guildOf(ctx, channel)
	if guildID == "" {
		return domain.User{}, domain.ErrUserNotFound
	}

	members, err := g.api.GuildMembersSearch(guildID, name, 10, discordgo.WithContext(ctx))
	if err != nil {
		return domain.User{}, fmt.Errorf("search discord members: %w", err)
	}
	for _, member := range members {
		if member == nil || member.User == nil {
			continue
		}
		if strings.EqualFold(member.User.Username, name) ||
			strings.EqualFold(member.Nick, name) ||
			strings.EqualFold(member.User.GlobalName, name) {
			return toUser(member.User, member), nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (g *Gateway) guildOf(ctx context.Context, channel domain.ChannelID) string {
	if g.session != nil && g.session.State != nil {
		if ch, err := g.session.State.Channel(string(channel)); err == nil && ch != nil {
			return ch.GuildID
		}
	}

	ch, err := g.api.Channel(string(channel), discordgo.WithContext(ctx))
	if err != nil || ch == nil {
		return ""
	}
	return ch.GuildID
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
