// Package discord connects a command bot to a Discord gateway session
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/codegangsta/k3/internal/commands"
	"github.com/codegangsta/k3/internal/config"
	"github.com/codegangsta/k3/internal/throttle"
)

const sendTimeout = 10 * time.Second

// Transport relays Discord messages to a commands.Bot
type Transport struct {
	session  *discordgo.Session
	bot      *commands.Bot
	limit    int
	throttle *throttle.Limiter
	logger   *slog.Logger

	mu      sync.RWMutex
	ownerID string
	ctx     context.Context
}

// New creates a Discord transport. Nothing connects until Start.
func New(cfg config.DiscordConfig, bot *commands.Bot, logger *slog.Logger) (*Transport, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	t := newTransport(cfg, bot, logger)
	t.session = session
	session.AddHandler(t.onReady)
	session.AddHandler(t.onMessageCreate)
	return t, nil
}

func newTransport(cfg config.DiscordConfig, bot *commands.Bot, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.CharacterLimit
	if limit <= 0 {
		limit = config.DefaultDiscordLimit
	}
	return &Transport{
		bot:      bot,
		limit:    limit,
		throttle: throttle.New(1, 5), // Discord allows 5 messages per 5s per channel
		logger:   logger.With("transport", "discord"),
		ctx:      context.Background(),
	}
}

// Start opens the gateway and blocks until ctx is cancelled
func (t *Transport) Start(ctx context.Context) error {
	t.mu.Lock()
	t.ctx = ctx
	t.mu.Unlock()

	if err := t.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	go t.throttle.RunCleanup(ctx, 10*time.Minute, time.Hour)

	<-ctx.Done()

	if err := t.session.Close(); err != nil {
		return fmt.Errorf("closing discord session: %w", err)
	}
	t.logger.Info("discord transport stopped")
	return nil
}

func (t *Transport) onReady(s *discordgo.Session, r *discordgo.Ready) {
	app, err := s.Application("@me")
	if err != nil {
		t.logger.Warn("failed to fetch application owner", "error", err)
	} else if app.Owner != nil {
		t.setOwner(app.Owner.ID)
	}

	prefixes := t.bot.Prefixes()
	if len(prefixes) > 0 {
		if err := s.UpdateGameStatus(0, fmt.Sprintf("Type %s help for help!", prefixes[0])); err != nil {
			t.logger.Debug("failed to set status", "error", err)
		}
	}

	t.logger.Info("discord transport ready",
		"username", r.User.Username,
		"guilds", len(r.Guilds),
	)
}

// onMessageCreate runs on its own goroutine; discordgo dispatches events
// asynchronously
func (t *Transport) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !t.accept(m) {
		return
	}

	t.mu.RLock()
	ctx := t.ctx
	t.mu.RUnlock()

	if t.bot.Addressed(m.Content) {
		if err := s.ChannelTyping(m.ChannelID); err != nil {
			t.logger.Debug("failed to send typing indicator", "error", err)
		}
	}

	t.bot.Process(ctx, m.Content, commands.Request{
		Send:           t.sender(m.ChannelID),
		IsOwner:        t.isOwner(m.Author.ID),
		CharacterLimit: t.limit,
		Source:         "discord:" + m.ChannelID,
	})
}

// accept filters out messages the bot should never answer
func (t *Transport) accept(m *discordgo.MessageCreate) bool {
	if m == nil || m.Message == nil || m.Author == nil {
		return false
	}
	if m.Author.Bot {
		return false
	}
	return m.Content != ""
}

func (t *Transport) setOwner(id string) {
	t.mu.Lock()
	t.ownerID = id
	t.mu.Unlock()
}

func (t *Transport) isOwner(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ownerID != "" && t.ownerID == userID
}

func (t *Transport) sender(channelID string) commands.SendFunc {
	return func(ctx context.Context, chunk string) error {
		if err := t.throttle.Wait(ctx, channelID); err != nil {
			return err
		}
		return t.sendChunk(ctx, channelID, chunk)
	}
}

func (t *Transport) sendChunk(ctx context.Context, channelID, content string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := t.session.ChannelMessageSend(channelID, content)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("sending discord message: %w", err)
		}
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("sending discord message: %w", sendCtx.Err())
	}
}
