// Package console runs a command bot as an interactive terminal session.
// Every line typed is treated as coming from the owner.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"github.com/codegangsta/k3/internal/commands"
)

// Console relays terminal input to a commands.Bot and prints replies
type Console struct {
	bot    *commands.Bot
	logger *slog.Logger
	limit  int

	mu  sync.Mutex
	out io.Writer
}

// New creates a console writing replies to out. A nil out means stdout.
func New(bot *commands.Bot, out io.Writer, logger *slog.Logger) *Console {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		bot:    bot,
		logger: logger.With("transport", "console"),
		limit:  commands.DefaultCharacterLimit,
		out:    out,
	}
}

// Run reads lines with readline until EOF, interrupt or ctx is cancelled
func (c *Console) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".k3_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		c.logger.Warn("readline unavailable, falling back to plain input", "error", err)
		return c.Serve(ctx, os.Stdin)
	}
	defer rl.Close()

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	c.greet()
	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		c.Handle(ctx, line)
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Serve is Run without line editing, for pipes and tests
func (c *Console) Serve(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		c.Handle(ctx, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// Handle processes a single line
func (c *Console) Handle(ctx context.Context, line string) commands.Result {
	line = strings.TrimSpace(line)
	if line == "" {
		return commands.Result{}
	}
	return c.bot.Process(ctx, line, commands.Request{
		Send:           c.send,
		IsOwner:        true,
		CharacterLimit: c.limit,
		Source:         "console",
	})
}

func (c *Console) send(_ context.Context, chunk string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, chunk)
	return err
}

func (c *Console) greet() {
	prefixes := c.bot.Prefixes()
	if len(prefixes) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "Enter commands here. Commands must start with %s\n", prefixes[0])
	fmt.Fprintf(c.out, "For help, use %s help.\n", prefixes[0])
}
