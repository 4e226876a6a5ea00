// Package commands turns a line of chat text into a call to a registered
// command: prefix matching, nested resolution, argument conversion,
// cooldowns and the owner key check.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/codegangsta/k3/internal/format"
	"github.com/codegangsta/k3/internal/keys"
)

// KeyHolder owns the rotating key that unlocks owner-only commands
type KeyHolder interface {
	Key() string
	RegenerateKey()
	// ConsumeKey reports whether given is the current key and, if so,
	// rotates it in the same step.
	ConsumeKey(given string) bool
}

// BotConfig configures a Bot
type BotConfig struct {
	Name        string
	Description string
	Aliases     []string
	// Prefixes defaults to Name followed by Aliases.
	Prefixes  []string
	Formatter format.Formatter
	Logger    *slog.Logger
	// Keys defaults to a rotator with the package defaults.
	Keys  *keys.Rotator
	Clock func() time.Time
}

// Bot is the root of the command tree and the entry point for dispatch
type Bot struct {
	name        string
	description string
	aliases     []string
	prefixes    []string
	formatter   format.Formatter
	logger      *slog.Logger
	keys        *keys.Rotator
	now         func() time.Time
	startedAt   time.Time

	// treeMu serializes tree mutation against resolution walks
	treeMu   sync.RWMutex
	registry *Registry

	modMu   sync.Mutex
	catalog map[string]Module
	loaded  map[string][]*Command

	done     chan struct{}
	stopOnce sync.Once
}

// NewBot creates a bot with an empty command tree
func NewBot(cfg BotConfig) (*Bot, error) {
	if cfg.Name == "" {
		return nil, errors.New("commands: bot name is required")
	}

	b := &Bot{
		name:        cfg.Name,
		description: cfg.Description,
		aliases:     append([]string{}, cfg.Aliases...),
		formatter:   cfg.Formatter,
		logger:      cfg.Logger,
		keys:        cfg.Keys,
		now:         cfg.Clock,
		catalog:     make(map[string]Module),
		loaded:      make(map[string][]*Command),
		done:        make(chan struct{}),
	}
	if b.formatter == nil {
		b.formatter = format.Plain{}
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.keys == nil {
		k, err := keys.NewRotator(keys.Config{Logger: b.logger})
		if err != nil {
			return nil, err
		}
		b.keys = k
	}

	for _, p := range cfg.Prefixes {
		if p != "" {
			b.prefixes = append(b.prefixes, p)
		}
	}
	if len(b.prefixes) == 0 {
		b.prefixes = append([]string{b.name}, b.aliases...)
	}

	b.registry = newRegistry(b)
	b.startedAt = b.now()
	return b, nil
}

func (b *Bot) Name() string                { return b.name }
func (b *Bot) Description() string         { return b.description }
func (b *Bot) Formatter() format.Formatter { return b.formatter }
func (b *Bot) Logger() *slog.Logger        { return b.logger }

// Prefixes returns a copy of the invocation prefixes in match order
func (b *Bot) Prefixes() []string { return append([]string{}, b.prefixes...) }

// Uptime returns how long ago the bot was created
func (b *Bot) Uptime() time.Duration { return b.now().Sub(b.startedAt) }

// Parent is always nil; the bot is the root of its tree
func (b *Bot) Parent() Node { return nil }

// Key returns the current owner key
func (b *Bot) Key() string { return b.keys.Key() }

// RegenerateKey replaces the owner key
func (b *Bot) RegenerateKey() {
	if err := b.keys.Regenerate(); err != nil {
		b.logger.Error("failed to regenerate owner key", "error", err)
	}
}

// ConsumeKey checks given against the owner key and rotates it on a match
func (b *Bot) ConsumeKey(given string) bool {
	ok, err := b.keys.Consume(given)
	if err != nil {
		b.logger.Error("failed to regenerate owner key", "error", err)
	}
	return ok
}

// Commands returns the top-level commands sorted by name
func (b *Bot) Commands() []*Command {
	b.treeMu.RLock()
	defer b.treeMu.RUnlock()
	return b.registry.Commands()
}

// Registry exposes the top-level registry for read access
func (b *Bot) Registry() *Registry { return b.registry }

// AddCommand registers a top-level command
func (b *Bot) AddCommand(cmd *Command, policy DuplicatePolicy) error {
	b.treeMu.Lock()
	defer b.treeMu.Unlock()
	return b.registry.Add(cmd, policy)
}

// RemoveCommand unregisters a top-level command by canonical name
func (b *Bot) RemoveCommand(name string) error {
	b.treeMu.Lock()
	defer b.treeMu.Unlock()
	return b.registry.Remove(name)
}

// Find resolves a command path such as ["cg", "sc"]. Every word must
// resolve.
func (b *Bot) Find(path ...string) (*Command, bool) {
	if len(path) == 0 {
		return nil, false
	}

	b.treeMu.RLock()
	defer b.treeMu.RUnlock()

	cmd, ok := b.registry.Resolve(path[0])
	for _, word := range path[1:] {
		if !ok {
			break
		}
		cmd, ok = cmd.subcommands.Resolve(word)
	}
	return cmd, ok
}

// Start runs the key rotation timer. The returned context is cancelled
// when ctx is or when Logout is called.
func (b *Bot) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-b.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	go b.keys.Run(ctx)

	b.logger.Info("bot started",
		"name", b.name,
		"prefixes", strings.Join(b.prefixes, ","),
		"commands", b.registry.Len(),
	)
	return ctx
}

// Logout asks everything started from Start to stop. Safe to call more
// than once.
func (b *Bot) Logout() {
	b.stopOnce.Do(func() {
		b.logger.Info("logging out", "name", b.name)
		close(b.done)
	})
}

// Done is closed once Logout has been called
func (b *Bot) Done() <-chan struct{} { return b.done }
