package challenge

import (
	"context"
	"log/slog"
	"time"
)

// Default readiness poll: 25 attempts at 200ms, about five seconds.
const (
	DefaultPollAttempts = 25
	DefaultPollInterval = 200 * time.Millisecond
)

// Config bounds the readiness poll.
type Config struct {
	PollAttempts int
	PollInterval time.Duration
}

// Binder renders one widget per form and hands out their tokens. It keeps
// the only client-side widget state: the form→handle mapping.
type Binder struct {
	provider Provider
	attempts int
	interval time.Duration
	widgets  map[string]string // form id → widget handle
}

// NewBinder creates a Binder on the given provider. Zero config fields
// fall back to the defaults.
func NewBinder(provider Provider, cfg Config) *Binder {
	attempts := cfg.PollAttempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Binder{
		provider: provider,
		attempts: attempts,
		interval: interval,
		widgets:  make(map[string]string),
	}
}

// Render ensures the form has a rendered widget and returns its handle.
// Idempotent: a form that already has one keeps it. When the provider
// never becomes ready within the poll ceiling, Render gives up silently
// and returns an empty handle.
// POST: on success the handle is stored for the form
func (b *Binder) Render(ctx context.Context, formID, siteKey string) string {
	if id, ok := b.widgets[formID]; ok {
		return id
	}

	ready := b.provider.Ready()
	for attempt := 1; !ready && attempt < b.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ""
		case <-time.After(b.interval):
		}
		ready = b.provider.Ready()
	}
	if !ready {
		slog.Warn("challenge_event", "event", "provider_not_ready", "form", formID, "attempts", b.attempts)
		return ""
	}

	id, err := b.provider.Render(siteKey)
	if err != nil {
		slog.Warn("challenge_event", "event", "render_failed", "form", formID, "error", err.Error())
		return ""
	}
	b.widgets[formID] = id
	slog.Info("challenge_event", "event", "rendered", "form", formID, "widget", id)
	return id
}

// Widget returns the handle previously rendered for the form, if any.
func (b *Binder) Widget(formID string) (string, bool) {
	id, ok := b.widgets[formID]
	return id, ok
}

// GetToken returns the widget's single-use token. It prefers the
// provider's accessor and falls back to the raw response field; an empty
// result must block submission when the form declares a challenge.
func (b *Binder) GetToken(widgetID string) string {
	if widgetID == "" {
		return ""
	}
	token, err := b.provider.Response(widgetID)
	if err == nil && token != "" {
		return token
	}
	return b.provider.RawResponse(widgetID)
}

// Reset clears the widget after a submission attempt, success or failure,
// so the next attempt gets a fresh token.
func (b *Binder) Reset(widgetID string) {
	if widgetID == "" {
		return
	}
	if err := b.provider.Reset(widgetID); err != nil {
		slog.Warn("challenge_event", "event", "reset_failed", "widget", widgetID, "error", err.Error())
	}
}
