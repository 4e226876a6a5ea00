// Package modules holds the commands that ship with k3, grouped into
// modules that can be loaded and unloaded at runtime.
package modules

import (
	"errors"
	"log/slog"
	"time"

	"github.com/codegangsta/k3/internal/commands"
	"github.com/codegangsta/k3/internal/config"
)

// standard cooldown shared by most user-facing commands
const (
	cooldownUses   = 6
	cooldownWindow = 12 * time.Second
)

// Settings is the part of the configuration the owner module persists
type Settings interface {
	IsBlacklisted(module string) bool
	Blacklist(module string) bool
	Unblacklist(module string) bool
	Save(path string) error
}

// Options carries what some modules need from the host program
type Options struct {
	Version  string
	Settings Settings // nil disables blacklist persistence
	// Reactions become image commands in the fun module
	Reactions map[string]config.Reaction
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// All builds a fresh copy of every built-in module
func All(opts Options) []commands.Module {
	return []commands.Module{
		Core(opts),
		Fun(opts),
		Utils(),
		Misc(),
		Owner(opts),
	}
}

// Install adds every module to the bot's catalog and loads the ones that
// are not blacklisted
func Install(bot *commands.Bot, mods []commands.Module, settings Settings) error {
	var errs []error
	for _, m := range mods {
		bot.RegisterModule(m)
		if settings != nil && settings.IsBlacklisted(m.Name) {
			bot.Logger().Info("skipping blacklisted module", "module", m.Name)
			continue
		}
		if err := bot.LoadModule(m, commands.SkipDuplicate); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func standardCooldown() commands.Option {
	return commands.WithCooldown(cooldownUses, cooldownWindow)
}
