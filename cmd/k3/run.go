package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codegangsta/k3/internal/commands"
	"github.com/codegangsta/k3/internal/config"
	"github.com/codegangsta/k3/internal/console"
	"github.com/codegangsta/k3/internal/discord"
	"github.com/codegangsta/k3/internal/format"
	"github.com/codegangsta/k3/internal/keys"
	"github.com/codegangsta/k3/internal/modules"
	"github.com/codegangsta/k3/internal/telegram"
)

const description = "k3, a bot that answers the same commands everywhere"

// transport describes how one subcommand runs the bot
type transport struct {
	name      string
	formatter format.Formatter
	logOut    io.Writer
	validate  func(*config.Config) error
	start     func(ctx context.Context, cfg *config.Config, bot *commands.Bot) error
}

func (a *app) discordCommand() *cobra.Command {
	return a.transportCommand("discord", "Connect to Discord", transport{
		name:      "discord",
		formatter: format.Markdown{},
		logOut:    os.Stdout,
		validate:  (*config.Config).ValidateDiscord,
		start: func(ctx context.Context, cfg *config.Config, bot *commands.Bot) error {
			t, err := discord.New(cfg.Discord, bot, slog.Default())
			if err != nil {
				return err
			}
			return t.Start(ctx)
		},
	})
}

func (a *app) telegramCommand() *cobra.Command {
	return a.transportCommand("telegram", "Connect to Telegram with long polling", transport{
		name:      "telegram",
		formatter: format.Markdown{},
		logOut:    os.Stdout,
		validate:  (*config.Config).ValidateTelegram,
		start: func(ctx context.Context, cfg *config.Config, bot *commands.Bot) error {
			t, err := telegram.New(cfg.Telegram, bot, slog.Default())
			if err != nil {
				return err
			}
			return t.Start(ctx)
		},
	})
}

func (a *app) consoleCommand() *cobra.Command {
	// Logs go to stderr so they do not interleave with replies
	return a.transportCommand("console", "Run commands from the terminal as the owner", transport{
		name:      "console",
		formatter: format.Plain{},
		logOut:    os.Stderr,
		start: func(ctx context.Context, _ *config.Config, bot *commands.Bot) error {
			return console.New(bot, os.Stdout, slog.Default()).Run(ctx)
		},
	})
}

func (a *app) transportCommand(use, short string, t transport) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), t)
		},
	}
}

func (a *app) run(parent context.Context, t transport) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if t.validate != nil {
		if err := t.validate(cfg); err != nil {
			return err
		}
	}

	closer, err := setupLogger(cfg, t.logOut)
	if err != nil {
		return err
	}
	defer closer.Close()

	slog.Info("config loaded",
		"path", cfg.Path(),
		"transport", t.name,
		"prefix", cfg.Prefix,
		"blacklist_count", len(cfg.ModuleBlacklist),
		"debug", cfg.Debug,
	)

	bot, err := newBot(cfg, t.formatter, slog.Default())
	if err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("shutdown signal received", "signal", sig.String())
			bot.Logout()
		case <-ctx.Done():
		}
	}()

	ctx = bot.Start(ctx)
	return t.start(ctx, cfg, bot)
}

// newBot builds the bot with every built-in module that is not blacklisted
func newBot(cfg *config.Config, f format.Formatter, logger *slog.Logger) (*commands.Bot, error) {
	rot, err := keys.NewRotator(keys.Config{
		Size:     cfg.Keys.Length,
		Interval: cfg.Keys.RotateEvery,
		OnRotate: func(key string) {
			logger.Info("owner key rotated", "key", key)
		},
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating key rotator: %w", err)
	}

	bot, err := commands.NewBot(commands.BotConfig{
		Name:        "k3",
		Description: description,
		Prefixes:    []string{cfg.Prefix},
		Formatter:   f,
		Logger:      logger,
		Keys:        rot,
	})
	if err != nil {
		return nil, err
	}

	reactions, err := cfg.LoadReactions()
	if err != nil {
		logger.Warn("reaction commands disabled", "error", err)
	}

	mods := modules.All(modules.Options{
		Version:   version,
		Settings:  cfg,
		Reactions: reactions,
		Logger:    logger,
	})
	if err := modules.Install(bot, mods, cfg); err != nil {
		logger.Warn("some modules failed to load", "error", err)
	}
	return bot, nil
}
