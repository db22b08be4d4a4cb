package flow

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/agrohub/transportbot/bot/catalog"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/core/logger"
)

// askQuestion advances the cursor over skipped questions, then prompts for
// the one it lands on, or hands over to confirmation once past the end.
func (e *Engine) askQuestion(ctx context.Context, s *session.Session, r Replier) error {
	for !s.Done() && catalog.Skip(s.Question().Key, s.QuickMode, s.Form) {
		key := s.Question().Key
		s.Form.Set(key, catalog.FillValue(key, s.QuickMode, s.Form, e.cfg.DefaultCompany))
		s.Cursor++
	}

	if s.Done() {
		return e.showConfirm(ctx, s, r)
	}

	q := s.Question()
	progress := fmt.Sprintf("(%d/%d)", s.Cursor+1, catalog.Len())
	showBack := s.Cursor > 0

	logger.FLOW.LogAttrs(ctx, slog.LevelDebug, "flow.ask",
		slog.Int64("user_id", s.UserID),
		slog.String("question_key", string(q.Key)),
		slog.Int("cursor", s.Cursor),
	)

	if q.UseCitySearch {
		s.State = session.StateCitySearch
		kb := removeKeyboard()
		if showBack {
			kb = replyRows([]string{btnBack})
		}
		prompt := q.Prompt + " " + progress + "\n\n💡 Почніть вводити назву населеного пункту..."
		return r.Send(prompt, kb)
	}

	if q.Key == catalog.KeyDatePeriod {
		s.State = session.StateDateType
		rows := [][]string{{btnSingleTrip}, {btnPeriodTrip}}
		if showBack {
			rows = append(rows, []string{btnBack})
		}
		return r.Send("Оберіть тип перевезення:", replyRows(rows...))
	}

	s.State = session.StateQuestion
	return r.Send(q.Prompt+" "+progress, optionsKeyboard(q.Options, showBack))
}

func (e *Engine) handleAnswer(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	q := s.Question()
	text := ev.Text

	if text == btnBack {
		r.DeleteInbound()
		if s.Cursor > 0 {
			s.Cursor--
			return e.askQuestion(ctx, s, r)
		}
		if err := r.Send("Ви вже на першому питанні.", nil); err != nil {
			return err
		}
		return e.askQuestion(ctx, s, r)
	}

	if strings.EqualFold(text, btnCustom) {
		s.Custom = session.CustomPlain
		s.State = session.StateCustomInput
		return r.Send("Введіть своє значення:", removeKeyboard())
	}

	if text == btnOther {
		switch q.Key {
		case catalog.KeyVehicleType:
			s.Custom = session.CustomOther
			s.State = session.StateCustomInput
			return r.Send("Введіть тип авто:", removeKeyboard())
		case catalog.KeyCompany:
			s.Custom = session.CustomOther
			s.State = session.StateCustomInput
			return r.Send("Введіть підприємство:", removeKeyboard())
		case catalog.KeyCargoType:
			s.Custom = session.CustomOther
			s.State = session.StateCustomInput
			return r.Send("Введіть тип вантажу:", removeKeyboard())
		}
	}

	if q.Key == catalog.KeyCargoType && catalog.IsCropCategory(text) {
		s.CropPrefix = text
		s.State = session.StateCrop
		r.DeleteInbound()
		return r.Send("Оберіть культуру:", optionsKeyboard(catalog.CropTypes, true))
	}

	value := text
	if strings.EqualFold(text, btnSkipOption) && (q.Options != nil || q.Key == catalog.KeyNotes) {
		value = catalog.Placeholder
	}
	s.Form.Set(q.Key, value)

	r.DeleteInbound()
	if err := r.Send(q.Prompt+" ✅ "+value, nil); err != nil {
		return err
	}
	return e.advance(ctx, s, r)
}

// advance moves to the next question, or back to confirmation when the
// answer came from the edit menu.
func (e *Engine) advance(ctx context.Context, s *session.Session, r Replier) error {
	if s.EditMode {
		s.EditMode = false
		s.Cursor = catalog.Len()
	} else {
		s.Cursor++
	}
	return e.askQuestion(ctx, s, r)
}

func (e *Engine) handleCustomInput(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	q := s.Question()
	text := ev.Text

	var echo string
	if s.Custom == session.CustomOther {
		s.Form.Set(q.Key, "Інше: "+text)
		echo = q.Label + ": Інше: ✅ " + text
	} else {
		s.Form.Set(q.Key, text)
		echo = q.Prompt + " ✅ " + text
	}
	s.Custom = session.CustomNone

	r.DeleteInbound()
	if err := r.Send(echo, nil); err != nil {
		return err
	}
	return e.advance(ctx, s, r)
}

func (e *Engine) handleCrop(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	text := ev.Text

	if strings.EqualFold(text, btnCustom) {
		s.Custom = session.CustomPlain
		return r.Send("Введіть назву культури:", removeKeyboard())
	}

	if s.Custom != session.CustomNone {
		prefix := s.CropPrefix
		if prefix == "" {
			prefix = "Зерно"
		}
		s.Form.CargoType = prefix + ": " + text
		s.Custom = session.CustomNone
		s.CropPrefix = ""
		r.DeleteInbound()
		if err := r.Send("Оберіть культуру: ✅ "+text, nil); err != nil {
			return err
		}
		return e.advance(ctx, s, r)
	}

	for _, crop := range catalog.CropTypes {
		if text == crop {
			prefix := s.CropPrefix
			if prefix == "" {
				prefix = "Зерно"
			}
			s.Form.CargoType = prefix + ": " + crop
			s.CropPrefix = ""
			r.DeleteInbound()
			if err := r.Send("Вид вантажу: "+prefix+" ✅ "+crop, nil); err != nil {
				return err
			}
			return e.advance(ctx, s, r)
		}
	}

	return r.Send("Будь ласка, оберіть культуру зі списку або натисніть 'Ввести своє'.", nil)
}
