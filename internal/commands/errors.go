package commands

import (
	"errors"
	"fmt"
	"time"
)

// Registration errors. These are returned synchronously and abort the call
// that produced them.
var (
	// ErrInvalidHandler indicates a command was built without a callable handler.
	ErrInvalidHandler = errors.New("commands: handler is not callable")

	// ErrCommandExists indicates a name or alias is already taken in a registry.
	ErrCommandExists = errors.New("commands: command already exists")

	// ErrCommandNotFound indicates a remove or lookup named no canonical command.
	ErrCommandNotFound = errors.New("commands: command not found")

	// ErrAlreadyRegistered indicates the command already belongs to a registry.
	ErrAlreadyRegistered = errors.New("commands: command already belongs to a registry")

	// ErrModuleNotFound indicates the module catalog has no entry for a name.
	ErrModuleNotFound = errors.New("commands: module not found")
)

// Invocation errors. These never leave Process; they are reported to the
// caller as text.
var (
	ErrOnCooldown      = errors.New("commands: command on cooldown")
	ErrBadArgument     = errors.New("commands: bad argument")
	ErrMissingArgument = errors.New("commands: missing argument")
	ErrNotBotOwner     = errors.New("commands: not bot owner")
)

// CooldownError is returned when a command is invoked above its rate.
type CooldownError struct {
	Command    string
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Command on cooldown. Try again in %.1fs.", e.RetryAfter.Seconds())
}

func (e *CooldownError) Unwrap() error { return ErrOnCooldown }

// BadArgumentError names the parameter whose token could not be converted.
type BadArgumentError struct {
	Param string
	Type  string
	Value string
}

func (e *BadArgumentError) Error() string {
	return fmt.Sprintf("Argument named %q must be of type %s.", e.Param, e.Type)
}

func (e *BadArgumentError) Unwrap() error { return ErrBadArgument }

// MissingArgumentError names the first required parameter with no token.
type MissingArgumentError struct {
	Param string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("Missing required argument %q.", e.Param)
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

// ErrorKind separates caller mistakes from failures inside a command.
type ErrorKind int

const (
	// KindInput covers cooldowns, bad or missing arguments and owner checks.
	KindInput ErrorKind = iota
	// KindCommand is an error returned by a handler.
	KindCommand
	// KindInternal is a handler panic or another bug.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindCommand:
		return "command"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// DispatchError is the structured failure of a single invocation.
type DispatchError struct {
	Kind    ErrorKind
	Command string
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Command, e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// UserMessage is the text sent back to whoever invoked the command.
func (e *DispatchError) UserMessage() string {
	var (
		cooldown *CooldownError
		badArg   *BadArgumentError
		missing  *MissingArgumentError
	)
	switch {
	case e.Kind == KindInternal:
		return "Something went wrong while running " + e.Command + "."
	case errors.As(e.Err, &cooldown), errors.As(e.Err, &badArg), errors.As(e.Err, &missing):
		return e.Err.Error()
	case errors.Is(e.Err, ErrOnCooldown):
		return "Command on cooldown."
	case errors.Is(e.Err, ErrNotBotOwner):
		return "You don't own this bot."
	default:
		return e.Err.Error()
	}
}

func inputError(command string, err error) *DispatchError {
	return &DispatchError{Kind: KindInput, Command: command, Err: err}
}
