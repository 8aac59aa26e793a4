package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/planably/quartermaster/internal/notify"
)

// mockSession records calls to the Discord session surface.
type mockSession struct {
	openErr  error
	sendErr  error
	closed   bool
	channels []string
	embeds   []*discordgo.MessageEmbed
}

func (m *mockSession) Open() error { return m.openErr }

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

func (m *mockSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.channels = append(m.channels, channelID)
	m.embeds = append(m.embeds, embed)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return &discordgo.Message{}, nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{ChannelID: "123"}); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := New(Opts{BotToken: "tok"}); err == nil {
		t.Error("expected error for missing channel")
	}
	if _, err := New(Opts{Session: &mockSession{}, ChannelID: "123"}); err != nil {
		t.Errorf("injected session should not need a token: %v", err)
	}
}

func TestConnect_OpenFailure(t *testing.T) {
	ms := &mockSession{openErr: errors.New("gateway down")}
	a, _ := New(Opts{Session: ms, ChannelID: "123"})

	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSend_BuildsEmbed(t *testing.T) {
	ms := &mockSession{}
	a, _ := New(Opts{Session: ms, ChannelID: "123"})

	evt := notify.Event{
		Title: "Platform: Q3 2026 at 96% capacity",
		Body:  "90 of 94 planned days used.",
		Color: "#EF4444",
		Fields: []notify.Field{
			{Name: "Used", Value: "90 days", Short: true},
			{Name: "Remaining", Value: "4 days", Short: true},
		},
	}
	if err := a.Send(context.Background(), evt); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(ms.embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(ms.embeds))
	}
	embed := ms.embeds[0]
	if embed.Title != evt.Title || embed.Description != evt.Body {
		t.Errorf("embed = %+v", embed)
	}
	if embed.Color != 0xEF4444 {
		t.Errorf("Color = %#x, want 0xEF4444", embed.Color)
	}
	if len(embed.Fields) != 2 || !embed.Fields[0].Inline {
		t.Errorf("Fields = %+v", embed.Fields)
	}
}

func TestSend_Failure(t *testing.T) {
	ms := &mockSession{sendErr: errors.New("missing permissions")}
	a, _ := New(Opts{Session: ms, ChannelID: "123"})

	if err := a.Send(context.Background(), notify.Event{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestClose_OnlyWhenConnected(t *testing.T) {
	ms := &mockSession{}
	a, _ := New(Opts{Session: ms, ChannelID: "123"})

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ms.closed {
		t.Error("Close() hit the session without a prior Connect")
	}

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !ms.closed {
		t.Error("session not closed")
	}
}

func TestColorToInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"#10B981", 0x10B981},
		{"#F59E0B", 0xF59E0B},
		{"#EF4444", 0xEF4444},
		{"", 0},
		{"#FFF", 0},
		{"#GGGGGG", 0},
	}
	for _, tt := range tests {
		if got := colorToInt(tt.in); got != tt.want {
			t.Errorf("colorToInt(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}
