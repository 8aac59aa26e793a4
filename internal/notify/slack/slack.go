// Package slack implements the notify Adapter using the Slack Web API.
package slack

import (
	"context"
	"fmt"
	"sync"

	"github.com/planably/quartermaster/internal/notify"
	slackapi "github.com/slack-go/slack"
)

// client abstracts the Slack API methods we use, enabling test mocks.
type client interface {
	AuthTest() (*slackapi.AuthTestResponse, error)
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Adapter delivers capacity events to one Slack channel.
type Adapter struct {
	client    client
	channelID string
	mu        sync.Mutex
	connected bool
}

// Opts holds parameters for creating a Slack Adapter.
type Opts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string // channel to post to
	// For testing: inject a mock client instead of the real Slack API.
	Client client
}

// New creates a Slack Adapter.
func New(opts Opts) (*Adapter, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel is required")
	}
	c := opts.Client
	if c == nil {
		c = slackapi.New(opts.BotToken)
	}
	return &Adapter{client: c, channelID: opts.ChannelID}, nil
}

// Connect verifies the token against the Slack API.
func (a *Adapter) Connect(ctx context.Context) error {
	if _, err := a.client.AuthTest(); err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	a.mu.Lock()
	a.connected = true
	a.mu.Unlock()
	return nil
}

// Send posts one event as an attachment-styled message.
func (a *Adapter) Send(ctx context.Context, evt notify.Event) error {
	fields := make([]slackapi.AttachmentField, len(evt.Fields))
	for i, f := range evt.Fields {
		fields[i] = slackapi.AttachmentField{Title: f.Name, Value: f.Value, Short: f.Short}
	}
	attachment := slackapi.Attachment{
		Color:  evt.Color,
		Title:  evt.Title,
		Text:   evt.Body,
		Fields: fields,
	}
	_, _, err := a.client.PostMessage(a.channelID, slackapi.MsgOptionAttachments(attachment))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

// Close marks the adapter closed. The Web API client holds no connection.
func (a *Adapter) Close() error {
	a.mu.Lock()
	a.connected = false
	a.mu.Unlock()
	return nil
}
