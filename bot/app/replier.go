package app

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/core/logger"
	tghelpers "github.com/agrohub/transportbot/core/telegram/helpers"
)

// teleReplier binds the engine's outbound side to one telebot context.
// Sends are synchronous so consecutive prompts keep their order.
type teleReplier struct {
	c tele.Context
}

func newReplier(c tele.Context) teleReplier {
	return teleReplier{c: c}
}

func (r teleReplier) Send(text string, kb *tele.ReplyMarkup) error {
	if kb == nil {
		return r.c.Send(text)
	}
	return r.c.Send(text, kb)
}

// EditLast rewrites the message the event came from. For callbacks that is
// the message under the pressed keyboard.
func (r teleReplier) EditLast(text string, kb *tele.ReplyMarkup) error {
	if kb == nil {
		return r.c.Edit(text)
	}
	return r.c.Edit(text, kb)
}

// DeleteInbound removes the user's message. Deletion can fail in private
// chats with old messages; that is not a flow error.
func (r teleReplier) DeleteInbound() {
	if r.c.Callback() != nil {
		return
	}
	if err := r.c.Delete(); err != nil {
		ctx := tghelpers.BuildContext(r.c)
		logger.TG.LogAttrs(ctx, slog.LevelDebug, "inbound.delete_failed",
			slog.String("err", err.Error()),
		)
	}
}
