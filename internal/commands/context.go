package commands

import (
	"context"
	"fmt"

	"github.com/codegangsta/k3/internal/format"
)

// DefaultCharacterLimit is the longest message most chat services accept.
const DefaultCharacterLimit = 2000

// SendFunc delivers one chunk of output to wherever the invocation came from.
type SendFunc func(ctx context.Context, chunk string) error

// Context is created for each resolved invocation and handed to the handler.
type Context struct {
	context.Context

	Bot          *Bot
	Command      *Command
	InvokedWith  string
	InvocationID string
	// IsOwner is true when the transport vouched for the caller or the
	// caller supplied the current key.
	IsOwner        bool
	CharacterLimit int

	send SendFunc
}

// NewContext binds a send function. A non-positive limit uses the default.
func NewContext(ctx context.Context, bot *Bot, cmd *Command, send SendFunc, limit int) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = DefaultCharacterLimit
	}
	return &Context{
		Context:        ctx,
		Bot:            bot,
		Command:        cmd,
		CharacterLimit: limit,
		send:           send,
	}
}

// Send renders v as text and delivers it in chunks no longer than the
// character limit, waiting for each one before sending the next.
func (c *Context) Send(v any) error {
	text := fmt.Sprint(v)
	if text == "" || c.send == nil {
		return nil
	}
	for _, chunk := range Chunk(text, c.CharacterLimit) {
		if err := c.send(c.Context, chunk); err != nil {
			return fmt.Errorf("sending response: %w", err)
		}
	}
	return nil
}

// Sendf formats according to a format specifier and sends the result.
func (c *Context) Sendf(layout string, args ...any) error {
	return c.Send(fmt.Sprintf(layout, args...))
}

// Formatter returns the bot's output formatter, or plain text when the
// context is detached from a bot.
func (c *Context) Formatter() format.Formatter {
	if c.Bot == nil {
		return format.Plain{}
	}
	return c.Bot.Formatter()
}

// Chunk splits text into consecutive pieces of at most limit runes.
func Chunk(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultCharacterLimit
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
