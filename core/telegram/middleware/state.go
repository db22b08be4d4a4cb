package middleware

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/core/logger"
	tghelpers "github.com/agrohub/transportbot/core/telegram/helpers"
)

// StateGetter is the minimal interface required from a conversation store.
type StateGetter interface {
	GetState(userID int64) string
}

// State returns a middleware that runs the handler only while the user is in
// one of the expected conversation states. Updates arriving in any other
// state are dropped, so stale inline keyboards in chat history stay inert.
func State(mgr StateGetter, expected ...string) tele.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(expected))
	for _, st := range expected {
		allowed[st] = struct{}{}
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			currentState := mgr.GetState(userID)
			ctx := tghelpers.BuildContext(c)
			if _, ok := allowed[currentState]; ok {
				logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.match",
					slog.Int64("user_id", userID),
					slog.String("state", currentState),
					slog.String("rid", logger.RIDFrom(ctx)),
				)
				return next(c)
			}
			logger.TG.LogAttrs(ctx, slog.LevelDebug, "fsm.skip",
				slog.Int64("user_id", userID),
				slog.String("state", currentState),
				slog.String("rid", logger.RIDFrom(ctx)),
			)
			return nil
		}
	}
}
