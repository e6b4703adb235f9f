package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bearcrabs/bookbot/internal/domain"
	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/bwmarrin/discordgo"
)

const (
	maxMessageLength    = 2000
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
	maxEmbedFieldName   = 256
	maxEmbedFieldValue  = 1024
	maxEmbedFields      = 25
	maxEmbedFooter      = 2048
	embedColor          = 0x8B5A2B
	emptyFieldValue     = "-"
)

func (g *Gateway) SendText(ctx context.Context, channel domain.ChannelID, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLength) {
		if _, err := g.api.ChannelMessageSend(string(channel), chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send discord message: %w", err)
		}
	}
	return nil
}

func (g *Gateway) SendCard(ctx context.Context, channel domain.ChannelID, card ports.Card) error {
	if _, err := g.api.ChannelMessageSendEmbed(string(channel), toEmbed(card), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord embed: %w", err)
	}
	return nil
}

func toEmbed(card ports.Card) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       domain.Truncate(card.Title, maxEmbedTitle),
		URL:         card.URL,
		Description: domain.Truncate(card.Description, maxEmbedDescription),
		Color:       embedColor,
	}
	if card.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: card.ThumbnailURL}
	}
	for i, field := range card.Fields {
		if i == maxEmbedFields {
			break
		}
		value := domain.Truncate(field.Value, maxEmbedFieldValue)
		if strings.TrimSpace(value) == "" {
			value = emptyFieldValue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   domain.Truncate(field.Name, maxEmbedFieldName),
			Value:  value,
			Inline: field.Inline,
		})
	}
	if card.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: domain.Truncate(card.Footer, maxEmbedFooter)}
	}
	return embed
}

// splitMessage cuts text into chunks of at most limit runes, preferring line breaks.
func splitMessage(text string, limit int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	runes := []rune(text)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), "\n"))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
