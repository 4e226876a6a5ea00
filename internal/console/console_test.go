package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegangsta/k3/internal/commands"
)

func newConsole(t *testing.T) (*Console, *commands.Bot, *bytes.Buffer) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bot, err := commands.NewBot(commands.BotConfig{Name: "k3", Logger: logger})
	require.NoError(t, err)

	echo := commands.MustCommand("echo", func(ctx *commands.Context, args commands.Args) error {
		return ctx.Send(args.Join(0))
	}, commands.WithParams(commands.Rest("text")))
	secret := commands.MustCommand("secret", func(ctx *commands.Context, _ commands.Args) error {
		return ctx.Send("owner ok")
	}, commands.OwnerOnly())

	require.NoError(t, bot.AddCommand(echo, commands.FailOnDuplicate))
	require.NoError(t, bot.AddCommand(secret, commands.FailOnDuplicate))

	var out bytes.Buffer
	return New(bot, &out, logger), bot, &out
}

func TestServe(t *testing.T) {
	c, _, out := newConsole(t)

	input := strings.Join([]string{
		"k3 echo hello there",
		"",
		"not for the bot",
		"k3 echo \"quoted words\"",
	}, "\n")

	require.NoError(t, c.Serve(context.Background(), strings.NewReader(input)))
	assert.Equal(t, "hello there\nquoted words\n", out.String())
}

func TestHandleRunsAsOwner(t *testing.T) {
	c, bot, out := newConsole(t)
	key := bot.Key()

	res := c.Handle(context.Background(), "k3 secret")
	require.True(t, res.Matched)
	assert.Nil(t, res.Err)
	assert.Equal(t, "owner ok\n", out.String())
	assert.Equal(t, key, bot.Key(), "owner override must not rotate the key")
}

func TestHandleIgnoresBlankLines(t *testing.T) {
	c, _, out := newConsole(t)
	res := c.Handle(context.Background(), "   ")
	assert.False(t, res.Matched)
	assert.Empty(t, out.String())
}

func TestServeStopsOnCancel(t *testing.T) {
	c, _, out := newConsole(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, c.Serve(ctx, strings.NewReader("k3 echo hi\n")))
	assert.Empty(t, out.String())
}
