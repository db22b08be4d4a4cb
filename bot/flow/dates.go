package flow

import (
	"context"

	"log/slog"

	"github.com/agrohub/transportbot/bot/calendarkb"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/core/logger"
	tghelpers "github.com/agrohub/transportbot/core/telegram/helpers"
)

func (e *Engine) handleDateType(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	switch ev.Text {
	case btnBack:
		if s.Cursor > 0 {
			s.Cursor--
		}
		return e.askQuestion(ctx, s, r)

	case btnSingleTrip:
		s.DateMode = "single"
		r.DeleteInbound()
		if err := r.Send("Оберіть тип перевезення: 📅 Разове ✅", nil); err != nil {
			return err
		}
		now := e.now()
		s.State = session.StateDateCalendar
		return r.Send("Оберіть дату перевезення:", calendarkb.Month(now.Year(), now.Month()))

	case btnPeriodTrip:
		s.DateMode = "period"
		r.DeleteInbound()
		if err := r.Send("Оберіть тип перевезення: 📆 Період ✅", nil); err != nil {
			return err
		}
		now := e.now()
		s.State = session.StateDateCalendar
		return r.Send("Оберіть початкову дату перевезення:", calendarkb.Month(now.Year(), now.Month()))
	}
	return r.Send("Будь ласка, оберіть тип перевезення.", nil)
}

func (e *Engine) calendarPrompt(s *session.Session) string {
	if s.DateMode == "single" {
		return "Оберіть дату перевезення:"
	}
	return "Оберіть початкову дату перевезення:"
}

func (e *Engine) handleCalendar(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	action, picked := calendarkb.Parse(ev.Payload, e.now())
	switch action {
	case calendarkb.ActionNav:
		return r.EditLast(e.calendarPrompt(s), calendarkb.Month(picked.Year(), picked.Month()))

	case calendarkb.ActionDate:
		date := calendarkb.FormatDate(picked)
		if s.DateMode == "period" {
			s.PeriodStart = date
			s.State = session.StateDatePeriodEnd
			return r.EditLast("Оберіть кінцеву дату перевезення:", calendarkb.Month(picked.Year(), picked.Month()))
		}

		s.Form.DatePeriod = date
		logger.FLOW.LogAttrs(ctx, slog.LevelDebug, "flow.date_picked",
			slog.Int64("user_id", s.UserID),
			slog.String("payload", ev.Payload),
		)
		if err := r.EditLast("Дата перевезення: "+date, nil); err != nil {
			return err
		}
		return e.advance(ctx, s, r)
	}
	return nil
}

func (e *Engine) handlePeriodEnd(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	action, picked := calendarkb.Parse(ev.Payload, e.now())
	switch action {
	case calendarkb.ActionNav:
		return r.EditLast("Оберіть кінцеву дату перевезення:", calendarkb.Month(picked.Year(), picked.Month()))

	case calendarkb.ActionDate:
		end := calendarkb.FormatDate(picked)
		period := s.PeriodStart + " - " + end
		s.Form.DatePeriod = period
		s.PeriodStart = ""
		if err := r.EditLast("Період перевезення: ✅ "+period, nil); err != nil {
			return err
		}
		return e.advance(ctx, s, r)
	}
	return nil
}

// handleDateText accepts a typed date while a calendar is on screen, for
// users who prefer the keyboard over tapping through months.
func (e *Engine) handleDateText(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	t, ok := tghelpers.ParseFlexibleDate(ev.Text)
	if !ok {
		return r.Send("Оберіть дату в календарі або введіть її у форматі 02.01.2006.", nil)
	}
	date := calendarkb.FormatDate(t)
	r.DeleteInbound()

	if s.State == session.StateDatePeriodEnd {
		period := s.PeriodStart + " - " + date
		s.Form.DatePeriod = period
		s.PeriodStart = ""
		if err := r.Send("Період перевезення: ✅ "+period, nil); err != nil {
			return err
		}
		return e.advance(ctx, s, r)
	}

	if s.DateMode == "period" {
		s.PeriodStart = date
		s.State = session.StateDatePeriodEnd
		return r.Send("Оберіть кінцеву дату перевезення:", calendarkb.Month(t.Year(), t.Month()))
	}

	s.Form.DatePeriod = date
	if err := r.Send("Дата перевезення: "+date, nil); err != nil {
		return err
	}
	return e.advance(ctx, s, r)
}
