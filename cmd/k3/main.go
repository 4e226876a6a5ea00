package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/codegangsta/k3/internal/config"
	"github.com/codegangsta/k3/internal/keys"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the flags shared by every subcommand
type app struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "k3",
		Short:        "A chat bot that runs the same commands on Discord, Telegram and the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default ~/.config/k3/config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.discordCommand(),
		a.telegramCommand(),
		a.consoleCommand(),
		newKeygenCommand(),
		newVersionCommand(),
	)
	return root
}

func newKeygenCommand() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:     "keygen",
		Short:   "Print a random owner key",
		Example: `k3 keygen --length 32`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := keys.Generate(length, keys.DefaultAlphabet)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", keys.DefaultSize, "number of characters")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "k3 %s\n  Go: %s\n", version, runtime.Version())
		},
	}
}

func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "k3", "config.yaml"), nil
}

// loadConfig reads the config file. When no --config was given and the
// default file is missing, a default one is written there first.
func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath
	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		if err := config.Default().Save(path); err != nil {
			return nil, err
		}
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}

	if a.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// setupLogger installs the default slog logger. The returned closer
// releases the log file, if any.
func setupLogger(cfg *config.Config, out io.Writer) (io.Closer, error) {
	var level slog.Level
	if cfg.Debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	// Determine output destination
	w := out
	var closer io.Closer = io.NopCloser(nil)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		// Write to both the terminal and file
		w = io.MultiWriter(out, f)
		closer = f
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(w, opts)
	slog.SetDefault(slog.New(handler))
	return closer, nil
}
