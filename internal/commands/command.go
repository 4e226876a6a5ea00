package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// HandlerFunc runs a resolved command with its converted arguments.
type HandlerFunc func(ctx *Context, args Args) error

// Node is anything that holds a registry of commands: a Bot or a Command.
type Node interface {
	// Parent returns the node holding this one, or nil at the top.
	Parent() Node
}

// TopLevel walks parent links from n to the outermost node.
func TopLevel(n Node) Node {
	if n == nil {
		return nil
	}
	for {
		p := n.Parent()
		if p == nil {
			return n
		}
		n = p
	}
}

// Command is a named, invocable unit. It is also a container: subcommands
// live in its own registry and are resolved before the command itself.
type Command struct {
	name      string
	aliases   []string
	help      string
	ownerOnly bool
	params    []Param
	module    string
	handler   HandlerFunc
	cooldown  *Cooldown

	subcommands *Registry

	mu     sync.Mutex
	parent *Registry // lookup only; the registry owns the command
}

// Option configures a Command at construction.
type Option func(*Command)

// WithAliases adds alternative invocation names.
func WithAliases(aliases ...string) Option {
	return func(c *Command) {
		c.aliases = append(c.aliases, aliases...)
	}
}

// WithHelp sets the help text.
func WithHelp(help string) Option {
	return func(c *Command) { c.help = strings.TrimSpace(help) }
}

// WithParams declares the parameter shape.
func WithParams(params ...Param) Option {
	return func(c *Command) { c.params = append(c.params, params...) }
}

// WithCooldown allows limit uses per interval.
func WithCooldown(limit int, interval time.Duration) Option {
	return func(c *Command) { c.cooldown = NewCooldown(limit, interval) }
}

// OwnerOnly requires the bot key (or a transport owner override).
func OwnerOnly() Option {
	return func(c *Command) { c.ownerOnly = true }
}

// WithModule tags the command with the module that provides it.
func WithModule(name string) Option {
	return func(c *Command) { c.module = name }
}

// NewCommand builds a command. The handler is required.
func NewCommand(name string, handler HandlerFunc, opts ...Option) (*Command, error) {
	if handler == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandler, name)
	}
	if err := validName(name); err != nil {
		return nil, err
	}

	c := &Command{
		name:    name,
		aliases: []string{},
		handler: handler,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.subcommands = newRegistry(c)

	aliases := make([]string, 0, len(c.aliases))
	for _, a := range c.aliases {
		if err := validName(a); err != nil {
			return nil, err
		}
		if a == name || slices.Contains(aliases, a) {
			continue
		}
		aliases = append(aliases, a)
	}
	c.aliases = aliases

	for i, p := range c.params {
		if p.Variadic && i != len(c.params)-1 {
			return nil, fmt.Errorf("commands: %s: variadic parameter %q must be last", name, p.Name)
		}
	}
	return c, nil
}

// MustCommand is like NewCommand but panics on error. It is meant for
// package-level module definitions.
func MustCommand(name string, handler HandlerFunc, opts ...Option) *Command {
	c, err := NewCommand(name, handler, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func validName(name string) error {
	if name == "" || strings.ContainsFunc(name, isSpace) {
		return fmt.Errorf("commands: invalid command name %q", name)
	}
	return nil
}

func (c *Command) Name() string { return c.name }

// Aliases returns a copy of the alternative names.
func (c *Command) Aliases() []string { return slices.Clone(c.aliases) }

// Invocations returns the name followed by the aliases.
func (c *Command) Invocations() []string {
	return append([]string{c.name}, c.aliases...)
}

func (c *Command) Help() string      { return c.help }
func (c *Command) IsOwnerOnly() bool { return c.ownerOnly }
func (c *Command) Module() string    { return c.module }

// Params returns a copy of the declared parameter shape.
func (c *Command) Params() []Param { return slices.Clone(c.params) }

// Cooldown returns the command's limiter, or nil when unlimited.
func (c *Command) Cooldown() *Cooldown { return c.cooldown }

// Subcommands returns the command's own registry.
func (c *Command) Subcommands() *Registry { return c.subcommands }

// AddCommand registers a subcommand. When c is attached to a Bot the change
// is made under the bot's tree lock.
func (c *Command) AddCommand(sub *Command, policy DuplicatePolicy) error {
	unlock := c.lockTree()
	defer unlock()
	return c.subcommands.Add(sub, policy)
}

// RemoveCommand unregisters a subcommand by canonical name.
func (c *Command) RemoveCommand(name string) error {
	unlock := c.lockTree()
	defer unlock()
	return c.subcommands.Remove(name)
}

// lockTree takes the write lock of the bot at the top of c's tree, if any.
// It must not be called with that lock already held.
func (c *Command) lockTree() func() {
	b, ok := c.TopLevel().(*Bot)
	if !ok {
		return func() {}
	}
	b.treeMu.Lock()
	return b.treeMu.Unlock
}

// resetCooldowns clears the limiter of c and of every subcommand below it.
func (c *Command) resetCooldowns() {
	c.cooldown.Reset()
	for _, sub := range c.subcommands.Commands() {
		sub.resetCooldowns()
	}
}

// Parent returns the node whose registry holds this command.
func (c *Command) Parent() Node {
	c.mu.Lock()
	r := c.parent
	c.mu.Unlock()
	if r == nil {
		return nil
	}
	return r.owner
}

// Registered reports whether the command currently belongs to a registry.
func (c *Command) Registered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parent != nil
}

// TopLevel returns the outermost container, normally the Bot.
func (c *Command) TopLevel() Node { return TopLevel(c) }

// Usage renders a one-line synopsis such as "ship <first> <second>".
func (c *Command) Usage() string {
	var b strings.Builder
	b.WriteString(c.name)
	for _, p := range c.params {
		b.WriteByte(' ')
		switch {
		case p.Variadic:
			b.WriteString("[" + p.Name + "...]")
		case p.Optional:
			b.WriteString("[" + p.Name + "]")
		default:
			b.WriteString("<" + p.Name + ">")
		}
	}
	return b.String()
}

func (c *Command) run(ctx *Context, args Args) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return c.handler(ctx, args)
}

type panicError struct {
	value any
}

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.value) }

func isPanic(err error) bool {
	var p *panicError
	return errors.As(err, &p)
}
