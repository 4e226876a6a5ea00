// Package telegram connects a command bot to the Telegram Bot API using
// long polling
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"

	"github.com/codegangsta/k3/internal/commands"
	"github.com/codegangsta/k3/internal/config"
	"github.com/codegangsta/k3/internal/format"
	"github.com/codegangsta/k3/internal/throttle"
)

const (
	pollTimeout   = 30 * time.Second
	typingRefresh = 4 * time.Second
)

// Bot relays Telegram messages to a commands.Bot
type Bot struct {
	bot      *gotgbot.Bot
	updater  *ext.Updater
	k3       *commands.Bot
	cfg      config.TelegramConfig
	throttle *throttle.Limiter
	logger   *slog.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// New creates the transport. Nothing is fetched until Start.
func New(cfg config.TelegramConfig, k3 *commands.Bot, logger *slog.Logger) (*Bot, error) {
	// getUpdates holds the connection open for pollTimeout, so the client
	// must wait longer than that
	client := http.Client{Timeout: 2 * pollTimeout}

	api, err := gotgbot.NewBot(cfg.Token, &gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{Client: client},
	})
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}

	b := newBot(cfg, k3, logger)
	b.bot = api
	return b, nil
}

func newBot(cfg config.TelegramConfig, k3 *commands.Bot, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CharacterLimit <= 0 {
		cfg.CharacterLimit = config.DefaultTelegramLimit
	}
	return &Bot{
		k3:       k3,
		cfg:      cfg,
		throttle: throttle.New(1, 3), // Telegram allows about one message per second per chat
		logger:   logger.With("transport", "telegram"),
		ctx:      context.Background(),
	}
}

// Start long-polls for messages and blocks until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	// The dispatcher gives every update its own goroutine
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *gotgbot.Bot, _ *ext.Context, err error) ext.DispatcherAction {
			b.logger.Error("telegram handler failed", "error", err)
			return ext.DispatcherActionNoop
		},
	})
	dispatcher.AddHandler(handlers.NewMessage(nil, b.handleMessage))
	b.updater = ext.NewUpdater(dispatcher, nil)

	opts := &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &gotgbot.GetUpdatesOpts{
			Timeout:        int64(pollTimeout / time.Second),
			AllowedUpdates: []string{"message"},
			RequestOpts:    &gotgbot.RequestOpts{Timeout: 2 * pollTimeout},
		},
	}
	if err := b.updater.StartPolling(b.bot, opts); err != nil {
		return fmt.Errorf("starting telegram polling: %w", err)
	}
	go b.throttle.RunCleanup(ctx, 10*time.Minute, time.Hour)

	b.logger.Info("telegram transport ready",
		"username", b.bot.Username,
		"allowlist_count", len(b.cfg.Allowlist),
		"owner_count", len(b.cfg.Owners),
	)

	<-ctx.Done()

	b.updater.Stop()
	b.logger.Info("telegram transport stopped")
	return nil
}

// handleMessage runs on the dispatcher's goroutine for this update
func (b *Bot) handleMessage(_ *gotgbot.Bot, ectx *ext.Context) error {
	msg := ectx.EffectiveMessage
	if !b.accept(msg) {
		return nil
	}

	if !b.k3.Addressed(msg.Text) {
		return nil
	}
	chatID := msg.Chat.Id

	b.mu.RLock()
	ctx := b.ctx
	b.mu.RUnlock()

	b.logger.Debug("addressed message", "chat_id", chatID, "from", msg.From.Id, "length", len(msg.Text))

	defer b.keepTyping(ctx, chatID)()

	b.k3.Process(ctx, msg.Text, commands.Request{
		Send:           b.sender(chatID),
		IsOwner:        b.cfg.IsOwner(msg.From.Id),
		CharacterLimit: b.cfg.CharacterLimit,
		Source:         "telegram:" + strconv.FormatInt(chatID, 10),
	})
	return nil
}

// accept drops empty messages, anonymous senders and users outside the
// allowlist
func (b *Bot) accept(msg *gotgbot.Message) bool {
	if msg == nil || msg.Text == "" || msg.From == nil {
		return false
	}
	if msg.From.IsBot {
		return false
	}
	if !b.cfg.IsAllowed(msg.From.Id) {
		b.logger.Debug("dropping message outside allowlist", "chat_id", msg.Chat.Id, "from", msg.From.Id)
		return false
	}
	return true
}

func (b *Bot) sender(chatID int64) commands.SendFunc {
	key := strconv.FormatInt(chatID, 10)
	return func(ctx context.Context, chunk string) error {
		if err := b.throttle.Wait(ctx, key); err != nil {
			return err
		}
		return b.send(chatID, chunk)
	}
}

// send posts markdown text as MarkdownV2, retrying as plain text when
// Telegram rejects the entities
func (b *Bot) send(chatID int64, text string) error {
	_, err := b.bot.SendMessage(chatID, format.ToMarkdownV2(text), &gotgbot.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err == nil {
		return nil
	}

	b.logger.Debug("markdown send failed, retrying as plain text", "chat_id", chatID, "error", err)
	if _, err := b.bot.SendMessage(chatID, text, nil); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}

// keepTyping shows the typing indicator in chatID until the returned func
// is called or ctx ends. Telegram clears the indicator after about five
// seconds, so it is refreshed on a shorter period.
func (b *Bot) keepTyping(ctx context.Context, chatID int64) func() {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		tick := time.NewTicker(typingRefresh)
		defer tick.Stop()

		for {
			if _, err := b.bot.SendChatAction(chatID, "typing", nil); err != nil {
				b.logger.Debug("failed to send typing indicator", "chat_id", chatID, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-tick.C:
			}
		}
	}()

	return cancel
}
