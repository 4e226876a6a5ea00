package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. K3_PREFIX
const EnvPrefix = "K3_"

// Defaults
const (
	DefaultPrefix            = "k3"
	DefaultDiscordLimit      = 2000
	DefaultTelegramLimit     = 4096
	DefaultKeyLength         = 64
	DefaultKeyRotateInterval = 30 * time.Minute
)

// DiscordConfig holds Discord-specific settings
type DiscordConfig struct {
	Token          string `yaml:"token,omitempty" env:"TOKEN"`
	CharacterLimit int    `yaml:"character_limit,omitempty"`
}

// TelegramConfig holds Telegram-specific settings
type TelegramConfig struct {
	Token          string  `yaml:"token,omitempty" env:"TOKEN"` // Bot token from @BotFather
	Allowlist      []int64 `yaml:"allowlist,omitempty"`         // user IDs allowed to talk to the bot; empty allows everyone
	Owners         []int64 `yaml:"owners,omitempty"`            // user IDs that skip the owner key
	CharacterLimit int     `yaml:"character_limit,omitempty"`
}

// KeysConfig controls the owner key
type KeysConfig struct {
	Length      int           `yaml:"length,omitempty"`
	RotateEvery time.Duration `yaml:"rotate_every,omitempty"`
}

// Reaction is one image reaction command. Each call replies with a random
// entry from Images.
type Reaction struct {
	Aliases []string `yaml:"aliases,omitempty"`
	Images  []string `yaml:"images"`
}

// Config holds the k3 configuration. Keys the bot does not know about are
// kept in Extra and written back by Save.
type Config struct {
	Prefix          string         `yaml:"prefix" env:"PREFIX"`
	ModuleBlacklist []string       `yaml:"module_blacklist" env:"MODULE_BLACKLIST" envSeparator:","`
	Discord         DiscordConfig  `yaml:"discord,omitempty" envPrefix:"DISCORD_"`
	Telegram        TelegramConfig `yaml:"telegram,omitempty" envPrefix:"TELEGRAM_"`
	Keys            KeysConfig     `yaml:"keys,omitempty"`
	LogFile         string         `yaml:"log_file,omitempty" env:"LOG_FILE"` // path to log file
	Debug           bool           `yaml:"debug,omitempty" env:"DEBUG"`       // enable debug logging

	// Reactions are merged over the entries read from ReactionsFile
	Reactions     map[string]Reaction `yaml:"reactions,omitempty"`
	ReactionsFile string              `yaml:"reactions_file,omitempty" env:"REACTIONS_FILE"`

	Extra map[string]any `yaml:",inline"`

	mu   sync.Mutex
	path string
}

// Default returns a config with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the config file from the given path, then applies
// environment overrides. JSON files are accepted since JSON is valid YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a config document without touching the environment
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// ApplyEnv loads a .env file from the working directory when present and
// overlays any K3_* variables onto cfg.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.ModuleBlacklist == nil {
		c.ModuleBlacklist = []string{}
	}
	if c.Discord.CharacterLimit == 0 {
		c.Discord.CharacterLimit = DefaultDiscordLimit
	}
	if c.Telegram.CharacterLimit == 0 {
		c.Telegram.CharacterLimit = DefaultTelegramLimit
	}
	if c.Keys.Length == 0 {
		c.Keys.Length = DefaultKeyLength
	}
	if c.Keys.RotateEvery == 0 {
		c.Keys.RotateEvery = DefaultKeyRotateInterval
	}
}

// Validate checks settings shared by every transport
func (c *Config) Validate() error {
	if c.Discord.CharacterLimit < 0 || c.Telegram.CharacterLimit < 0 {
		return fmt.Errorf("character_limit must be positive")
	}
	if c.Keys.Length < 8 {
		return fmt.Errorf("keys.length must be at least 8")
	}
	if c.Keys.RotateEvery < time.Second {
		return fmt.Errorf("keys.rotate_every must be at least 1s")
	}
	return nil
}

// ValidateDiscord checks what the Discord transport needs
func (c *Config) ValidateDiscord() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	return nil
}

// ValidateTelegram checks what the Telegram transport needs
func (c *Config) ValidateTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}
	return nil
}

// Path returns the file the config was loaded from, if any
func (c *Config) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// Save writes the config back as YAML. An empty path reuses the one it was
// loaded from.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path == "" {
		path = c.path
	}
	if path == "" {
		return fmt.Errorf("no config path to save to")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	c.path = path
	return nil
}

// LoadReactions returns the reaction commands to build. A relative
// ReactionsFile is read from the config file's directory. The file may be
// YAML or JSON and holds a map shaped like the reactions block.
func (c *Config) LoadReactions() (map[string]Reaction, error) {
	c.mu.Lock()
	file, inline, path := c.ReactionsFile, c.Reactions, c.path
	c.mu.Unlock()

	out := make(map[string]Reaction)
	if file != "" {
		if !filepath.IsAbs(file) && path != "" {
			file = filepath.Join(filepath.Dir(path), file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading reactions file: %w", err)
		}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parsing reactions file: %w", err)
		}
	}
	for name, r := range inline {
		out[name] = r
	}
	return out, nil
}

// IsBlacklisted reports whether a module is kept from loading
func (c *Config) IsBlacklisted(module string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.ModuleBlacklist, module)
}

// Blacklist adds module to the blacklist. It reports false if it was
// already there.
func (c *Config) Blacklist(module string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.ModuleBlacklist, module) {
		return false
	}
	c.ModuleBlacklist = append(c.ModuleBlacklist, module)
	return true
}

// Unblacklist removes module from the blacklist. It reports false if it
// was not there.
func (c *Config) Unblacklist(module string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.ModuleBlacklist, module)
	if i < 0 {
		return false
	}
	c.ModuleBlacklist = slices.Delete(c.ModuleBlacklist, i, i+1)
	return true
}

// IsAllowed checks if the given Telegram user ID may use the bot
func (c *TelegramConfig) IsAllowed(userID int64) bool {
	return len(c.Allowlist) == 0 || slices.Contains(c.Allowlist, userID)
}

// IsOwner checks if the given Telegram user ID owns the bot
func (c *TelegramConfig) IsOwner(userID int64) bool {
	return slices.Contains(c.Owners, userID)
}
