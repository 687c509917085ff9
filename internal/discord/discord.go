// Package discord delivers forward payloads to a single channel.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/tracyhatemice/mailcord/internal/payload"
)

// Sender delivers one payload as a single rich message.
type Sender interface {
	Send(ctx context.Context, p *payload.Payload) error
}

// Client posts to a Discord channel over the REST API. The bot only
// ever sends, so no gateway connection is opened.
type Client struct {
	session   *discordgo.Session
	channelID string
	logger    *slog.Logger
}

// New creates a Discord client for the given bot token and channel.
func New(token, channelID string, logger *slog.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &Client{
		session:   session,
		channelID: channelID,
		logger:    logger,
	}, nil
}

// Send posts the payload as one embed with its artifacts attached. The
// featured artifact is displayed inside the embed via an attachment://
// reference; the rest appear as plain attachments.
func (c *Client) Send(ctx context.Context, p *payload.Payload) error {
	embed := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Snippet,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "From", Value: p.Sender},
		},
	}
	if p.Featured != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + p.Featured}
	}

	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	for _, a := range p.Artifacts {
		msg.Files = append(msg.Files, &discordgo.File{
			Name:   a.Name,
			Reader: bytes.NewReader(a.Data),
		})
	}

	if _, err := c.session.ChannelMessageSendComplex(c.channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}

	c.logger.Debug("delivered message", "title", p.Title, "artifacts", len(p.Artifacts))
	return nil
}
