package app

import (
	"strings"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/bot/flow"
	"github.com/agrohub/transportbot/core/logger"
	"github.com/agrohub/transportbot/core/telegram/callbacks"
	tghelpers "github.com/agrohub/transportbot/core/telegram/helpers"
)

// fsmAdapter plugs the dialogue engine into the shared text router.
type fsmAdapter struct {
	app *App
}

func (f fsmAdapter) InProgress(userID int64) bool {
	return f.app.sessions.InProgress(userID)
}

func (f fsmAdapter) ManagerHandler(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return f.app.engine.HandleText(ctx, eventFrom(c), newReplier(c))
}

func eventFrom(c tele.Context) flow.Event {
	ev := flow.Event{Text: strings.TrimSpace(c.Text())}
	if sender := c.Sender(); sender != nil {
		ev.UserID = sender.ID
		ev.Username = sender.Username
		ev.FullName = strings.TrimSpace(sender.FirstName + " " + sender.LastName)
	}
	if c.Callback() != nil {
		ev.Payload = callbacks.CallbackPayload(c)
	}
	return ev
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.engine.Start(ctx, eventFrom(c), newReplier(c))
}

func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.engine.Cancel(ctx, eventFrom(c), newReplier(c))
}

func (a *App) handleCalendar(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.engine.HandleCalendar(ctx, eventFrom(c), newReplier(c))
}

// handleIdleText reacts to the persistent "make a request" buttons left in
// chats after a finished conversation. Anything else is ignored.
func (a *App) handleIdleText(c tele.Context) error {
	switch strings.TrimSpace(c.Text()) {
	case "📝 Зробити заявку", "📝 Нова заявка":
		return a.handleStart(c)
	}
	return nil
}

// handleRequest pins a deep-link button in a group so members can open a
// private dialogue with one tap.
func (a *App) handleRequest(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	chat := c.Chat()
	if chat == nil || (chat.Type != tele.ChatGroup && chat.Type != tele.ChatSuperGroup) {
		return tghelpers.SendText(c, "Ця команда працює лише в групах. Для створення заявки натисніть /start")
	}

	username := a.cfg.BotUsername
	if username == "" && a.bot != nil && a.bot.Me != nil {
		username = a.bot.Me.Username
	}
	if username == "" {
		return tghelpers.SendText(c, "Не задано BOT_USERNAME.")
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(markup.URL("📝 Зробити заявку", "https://t.me/"+username+"?start=apply")))

	msg, err := a.bot.Send(chat, "👇 Натисніть кнопку для створення заявки на перевезення:", markup)
	if err != nil {
		return err
	}
	// Pinning needs admin rights; failure is not worth surfacing.
	if err := a.bot.Pin(msg, tele.Silent); err != nil {
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "request.pin_failed",
			slog.Int64("chat_id", chat.ID),
			slog.String("err", err.Error()),
		)
	}
	return nil
}
