// Package keys generates and rotates the secret that unlocks owner-only
// commands.
package keys

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"
)

const (
	// DefaultSize is the number of characters in a generated key
	DefaultSize = 64
	// DefaultAlphabet is [0-9A-Za-z]
	DefaultAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// DefaultInterval is how often Run replaces the key
	DefaultInterval = 30 * time.Minute
)

// ErrEmptyAlphabet is returned by Generate when there is nothing to draw from
var ErrEmptyAlphabet = errors.New("keys: empty alphabet")

// Generate returns size characters drawn uniformly from alphabet using a
// cryptographic source.
func Generate(size int, alphabet string) (string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return "", ErrEmptyAlphabet
	}

	upper := big.NewInt(int64(len(symbols)))
	out := make([]rune, size)
	for i := range out {
		n, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		out[i] = symbols[n.Int64()]
	}
	return string(out), nil
}

// Config configures a Rotator
type Config struct {
	Size     int
	Alphabet string
	Interval time.Duration
	// OnRotate is called with every new key, including the first one.
	OnRotate func(key string)
	Logger   *slog.Logger
}

// Rotator holds the current key and replaces it on demand or on a timer
type Rotator struct {
	mu  sync.RWMutex
	key string

	size     int
	alphabet string
	interval time.Duration
	onRotate func(string)
	logger   *slog.Logger
}

// NewRotator creates a rotator with a freshly generated key
func NewRotator(cfg Config) (*Rotator, error) {
	r := &Rotator{
		size:     cfg.Size,
		alphabet: cfg.Alphabet,
		interval: cfg.Interval,
		onRotate: cfg.OnRotate,
		logger:   cfg.Logger,
	}
	if r.size <= 0 {
		r.size = DefaultSize
	}
	if r.alphabet == "" {
		r.alphabet = DefaultAlphabet
	}
	if r.interval <= 0 {
		r.interval = DefaultInterval
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	if err := r.Regenerate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Key returns the current key
func (r *Rotator) Key() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.key
}

// Interval returns the timer period used by Run
func (r *Rotator) Interval() time.Duration { return r.interval }

// Regenerate replaces the key. The previous key stops working immediately.
func (r *Rotator) Regenerate() error {
	key, err := Generate(r.size, r.alphabet)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.key = key
	r.mu.Unlock()

	if r.onRotate != nil {
		r.onRotate(key)
	}
	return nil
}

// Consume checks given against the current key and, when it matches,
// replaces the key before releasing the lock. A key can therefore be
// consumed at most once.
func (r *Rotator) Consume(given string) (bool, error) {
	r.mu.Lock()
	if r.key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(r.key)) != 1 {
		r.mu.Unlock()
		return false, nil
	}

	key, err := Generate(r.size, r.alphabet)
	if err != nil {
		// The old key stays unusable even when a new one cannot be made
		r.key = ""
		r.mu.Unlock()
		return true, err
	}
	r.key = key
	r.mu.Unlock()

	if r.onRotate != nil {
		r.onRotate(key)
	}
	return true, nil
}

// Run regenerates the key every interval until ctx is cancelled
func (r *Rotator) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Regenerate(); err != nil {
				r.logger.Error("failed to rotate owner key", "error", err)
			}
		}
	}
}
