package flow

import (
	"context"

	"log/slog"

	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/core/logger"
)

func (e *Engine) handleCitySearch(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	if ev.Text == btnBack {
		if s.Cursor > 0 {
			s.Cursor--
		}
		return e.askQuestion(ctx, s, r)
	}

	results := e.search.Search(ctx, ev.Text)
	if len(results) == 0 {
		return r.Send("🔍 Нічого не знайдено. Спробуйте інший запит або введіть повну назву вручну.", nil)
	}

	s.SearchResults = s.SearchResults[:0]
	rows := make([][]string, 0, len(results)+2)
	for _, res := range results {
		s.SearchResults = append(s.SearchResults, session.SearchResult{
			Display: res.Display,
			Value:   res.Value,
		})
		rows = append(rows, []string{res.Display})
	}
	rows = append(rows, []string{btnManualCity})
	if s.Cursor > 0 {
		rows = append(rows, []string{btnBack})
	}

	logger.FLOW.LogAttrs(ctx, slog.LevelDebug, "flow.city_results",
		slog.Int64("user_id", s.UserID),
		slog.String("query", ev.Text),
		slog.Int("results", len(results)),
	)

	s.State = session.StateCitySelect
	return r.Send("Оберіть населений пункт зі списку або введіть вручну:", replyRows(rows...))
}

func (e *Engine) handleCitySelect(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	if ev.Text == btnBack {
		s.SearchResults = nil
		if s.Cursor > 0 {
			s.Cursor--
		}
		return e.askQuestion(ctx, s, r)
	}

	if ev.Text == btnManualCity {
		s.State = session.StateCitySearch
		return r.Send("Введіть назву населеного пункту вручну:", removeKeyboard())
	}

	q := s.Question()
	// A tap on a result stores the bare settlement name; anything else is a
	// manual entry kept verbatim.
	value := ev.Text
	for _, res := range s.SearchResults {
		if res.Display == ev.Text {
			value = res.Value
			break
		}
	}
	s.Form.Set(q.Key, value)
	s.SearchResults = nil

	r.DeleteInbound()
	if err := r.Send(q.Label+": ✅ "+value, nil); err != nil {
		return err
	}

	if s.EditMode {
		if err := r.Send("✅ Змінено на '"+value+"'", removeKeyboard()); err != nil {
			return err
		}
	}
	return e.advance(ctx, s, r)
}
