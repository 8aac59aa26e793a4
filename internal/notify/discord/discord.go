// Package discord implements the notify Adapter using a Discord bot session.
package discord

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/planably/quartermaster/internal/notify"
)

// session abstracts the discordgo.Session methods we use, enabling test mocks.
type session interface {
	Open() error
	Close() error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Adapter delivers capacity events to one Discord channel.
type Adapter struct {
	session   session
	channelID string
	mu        sync.Mutex
	connected bool
}

// Opts holds parameters for creating a Discord Adapter.
type Opts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of a real gateway session.
	Session session
}

// New creates a Discord Adapter.
func New(opts Opts) (*Adapter, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel is required")
	}
	s := opts.Session
	if s == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		s = dg
	}
	return &Adapter{session: s, channelID: opts.ChannelID}, nil
}

// Connect opens the gateway session.
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("discord: open session: %w", err)
	}
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return nil
}

// Send posts one event as an embed.
func (a *Adapter) Send(ctx context.Context, evt notify.Event) error {
	embed := &discordgo.MessageEmbed{
		Title:       evt.Title,
		Description: evt.Body,
		Color:       colorToInt(evt.Color),
	}
	for _, f := range evt.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Short,
		})
	}
	if _, err := a.session.ChannelMessageSendEmbed(a.channelID, embed); err != nil {
		return fmt.Errorf("discord: send embed: %w", err)
	}
	return nil
}

// Close shuts down the gateway session.
func (a *Adapter) Close() error {
	a.mu.Lock()
	connected := a.connected
	a.connected = false
	a.mu.Unlock()
	if !connected {
		return nil
	}
	if err := a.session.Close(); err != nil {
		return fmt.Errorf("discord: close session: %w", err)
	}
	return nil
}

// colorToInt converts a "#RRGGBB" hint to Discord's integer color. Unknown
// formats map to zero (no sidebar color).
func colorToInt(color string) int {
	hex := strings.TrimPrefix(color, "#")
	if len(hex) != 6 {
		return 0
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
