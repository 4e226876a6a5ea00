package discord

import (
	"io"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/k3/internal/commands"
	"github.com/codegangsta/k3/internal/config"
)

func testTransport(t *testing.T, cfg config.DiscordConfig) *Transport {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot, err := commands.NewBot(commands.BotConfig{Name: "k3", Logger: logger})
	require.NoError(t, err)
	return newTransport(cfg, bot, logger)
}

func message(authorID, content string, isBot bool) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ChannelID: "chan",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Bot: isBot},
	}}
}

func TestAccept(t *testing.T) {
	tr := testTransport(t, config.DiscordConfig{})

	tests := []struct {
		name string
		msg  *discordgo.MessageCreate
		want bool
	}{
		{"user message", message("1", "k3 ping", false), true},
		{"bot author", message("2", "k3 ping", true), false},
		{"empty content", message("1", "", false), false},
		{"nil event", nil, false},
		{"nil message", &discordgo.MessageCreate{}, false},
		{"no author", &discordgo.MessageCreate{Message: &discordgo.Message{Content: "hi"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.accept(tt.msg))
		})
	}
}

func TestIsOwner(t *testing.T) {
	tr := testTransport(t, config.DiscordConfig{})
	assert.False(t, tr.isOwner(""), "no owner known before ready")
	assert.False(t, tr.isOwner("42"))

	tr.setOwner("42")
	assert.True(t, tr.isOwner("42"))
	assert.False(t, tr.isOwner("43"))
}

func TestCharacterLimit(t *testing.T) {
	assert.Equal(t, config.DefaultDiscordLimit, testTransport(t, config.DiscordConfig{}).limit)
	assert.Equal(t, 500, testTransport(t, config.DiscordConfig{CharacterLimit: 500}).limit)
}
