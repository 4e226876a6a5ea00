package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Request carries what a transport knows about an inbound message
type Request struct {
	Send SendFunc
	// IsOwner lets a transport vouch for the caller, skipping the key check.
	IsOwner        bool
	CharacterLimit int
	// Source identifies the sender in logs, e.g. a chat id.
	Source string
}

// Result reports what Process did with a message
type Result struct {
	// Matched is false when the text was not addressed to a known command.
	Matched     bool
	Command     *Command
	InvokedWith string
	Err         *DispatchError
}

// Process handles one line of text. It never returns an error to the
// transport: failures are reported to the caller through req.Send and
// recorded in Result.Err.
func (b *Bot) Process(ctx context.Context, text string, req Request) Result {
	rest, ok := b.stripPrefix(text)
	if !ok {
		return Result{}
	}

	cmd, path, remainder, ok := b.resolve(rest)
	if !ok {
		return Result{}
	}

	id := uuid.NewString()
	log := b.logger.With("invocation_id", id, "command", path)
	if req.Source != "" {
		log = log.With("source", req.Source)
	}

	cctx := NewContext(ctx, b, cmd, req.Send, req.CharacterLimit)
	cctx.InvokedWith = path
	cctx.InvocationID = id
	cctx.IsOwner = req.IsOwner

	log.Debug("dispatching command", "args", remainder)

	res := Result{Matched: true, Command: cmd, InvokedWith: path}
	if derr := b.invoke(cctx, cmd, remainder); derr != nil {
		res.Err = derr
		switch derr.Kind {
		case KindInternal:
			log.Error("command panicked", "error", derr.Err)
		case KindCommand:
			log.Warn("command failed", "error", derr.Err)
		default:
			log.Debug("command rejected", "error", derr.Err)
		}
		if err := cctx.Send(derr.UserMessage()); err != nil {
			log.Warn("failed to report command error", "error", err)
		}
	}
	return res
}

// Addressed reports whether text starts with one of the bot's prefixes.
// Transports use it to skip typing indicators for ordinary chatter.
func (b *Bot) Addressed(text string) bool {
	_, ok := b.stripPrefix(text)
	return ok
}

// stripPrefix removes the first matching prefix and surrounding space
func (b *Bot) stripPrefix(text string) (string, bool) {
	for _, p := range b.prefixes {
		if strings.HasPrefix(text, p) {
			return strings.TrimSpace(text[len(p):]), true
		}
	}
	return "", false
}

// resolve walks the tree one word at a time. The first word must name a
// top-level command; after that the walk stops at the first word that is
// not a subcommand, leaving it in the remainder.
func (b *Bot) resolve(text string) (cmd *Command, path, remainder string, ok bool) {
	b.treeMu.RLock()
	defer b.treeMu.RUnlock()

	word, rest := splitWord(text)
	cmd, ok = b.registry.Resolve(word)
	if !ok {
		return nil, "", "", false
	}
	path = word

	for cmd.subcommands.Len() > 0 {
		next, after := splitWord(rest)
		sub, found := cmd.subcommands.Resolve(next)
		if !found {
			break
		}
		cmd, rest = sub, after
		path += " " + next
	}
	return cmd, path, rest, true
}

func splitWord(text string) (word, rest string) {
	text = strings.TrimLeftFunc(text, isSpace)
	i := strings.IndexFunc(text, isSpace)
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimLeftFunc(text[i:], isSpace)
}

func (b *Bot) invoke(ctx *Context, cmd *Command, remainder string) *DispatchError {
	name := ctx.InvokedWith

	if err := cmd.cooldown.Allow(b.now()); err != nil {
		var cd *CooldownError
		if errors.As(err, &cd) {
			cd.Command = cmd.name
		}
		return inputError(name, err)
	}

	tokens := Tokenize(remainder)

	if cmd.ownerOnly && !ctx.IsOwner {
		if len(tokens) == 0 || !b.keyHolder(cmd).ConsumeKey(tokens[len(tokens)-1]) {
			return inputError(name, ErrNotBotOwner)
		}
		tokens = tokens[:len(tokens)-1]
		ctx.IsOwner = true
	}

	args, err := Convert(cmd.params, 0, tokens)
	if err != nil {
		return inputError(name, err)
	}
	if n := requiredParams(cmd.params); len(args) < n {
		return inputError(name, &MissingArgumentError{Param: cmd.params[len(args)].Name})
	}

	if err := cmd.run(ctx, args); err != nil {
		kind := KindCommand
		if isPanic(err) {
			kind = KindInternal
		}
		return &DispatchError{Kind: kind, Command: name, Err: err}
	}
	return nil
}

// keyHolder finds the key owner at the top of cmd's tree, falling back to
// the bot doing the dispatch
func (b *Bot) keyHolder(cmd *Command) KeyHolder {
	if h, ok := cmd.TopLevel().(KeyHolder); ok {
		return h
	}
	return b
}
