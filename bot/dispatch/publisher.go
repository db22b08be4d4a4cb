// Package dispatch delivers finished transport requests into the target
// group chat.
package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/core/logger"
)

// ErrNotConfigured is returned when the target chat or the bot binding is
// missing. Callers treat it as a hard stop, not a retryable failure.
var ErrNotConfigured = errors.New("dispatch: target chat not configured")

// Config selects the destination chat.
type Config struct {
	// TargetChatID is the group that receives every request. Zero disables
	// publishing; the dialogue reports it instead of sending.
	TargetChatID int64 `yaml:"target_chat_id" envconfig:"TARGET_CHAT_ID"`
}

// Telegram publishes request texts to the configured group chat. The bot
// handle is bound after startup, once the transport is up.
type Telegram struct {
	chatID int64
	bot    atomic.Pointer[tele.Bot]
}

// NewTelegram creates a publisher for the given chat.
func NewTelegram(chatID int64) *Telegram {
	return &Telegram{chatID: chatID}
}

// Bind attaches the live bot. Publishing before Bind fails with
// ErrNotConfigured.
func (t *Telegram) Bind(bot *tele.Bot) {
	t.bot.Store(bot)
}

// Configured reports whether the publisher can deliver at all.
func (t *Telegram) Configured() bool {
	return t.chatID != 0
}

// Publish sends the request text into the target chat, routed to the
// department thread when one is set.
func (t *Telegram) Publish(ctx context.Context, threadID int, text string) error {
	if !t.Configured() {
		return ErrNotConfigured
	}
	bot := t.bot.Load()
	if bot == nil {
		return ErrNotConfigured
	}

	start := time.Now()
	opts := &tele.SendOptions{ThreadID: threadID}
	_, err := bot.Send(tele.ChatID(t.chatID), text, opts)
	if err != nil {
		logger.DISPATCH.LogAttrs(ctx, slog.LevelError, "publish.failed",
			slog.Int64("chat_id", t.chatID),
			slog.Int("thread_id", threadID),
			slog.String("err", err.Error()),
		)
		return err
	}
	logger.DISPATCH.LogAttrs(ctx, slog.LevelInfo, "publish.ok",
		slog.Int64("chat_id", t.chatID),
		slog.Int("thread_id", threadID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}
