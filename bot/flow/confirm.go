package flow

import (
	"context"
	"strings"

	"log/slog"

	"github.com/agrohub/transportbot/bot/catalog"
	"github.com/agrohub/transportbot/bot/form"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/bot/storage"
	"github.com/agrohub/transportbot/core/logger"
)

func (e *Engine) showConfirm(ctx context.Context, s *session.Session, r Replier) error {
	s.State = session.StateConfirm
	text := form.Render(s.Form, e.now())

	if s.QuickMode {
		return r.Send(
			"Перевірте заявку:\n\n"+text+"\n\n💡 Це швидка заявка. Хочете додати додаткову інформацію або надіслати як є?",
			replyRows([]string{btnQuickSend}, []string{btnAddDetails}),
		)
	}
	return r.Send(
		"Перевірте заявку:\n\n"+text+"\n\nНадіслати заявку в чат?",
		replyRows([]string{btnConfirmYes}, []string{btnEditFields}),
	)
}

func (e *Engine) handleConfirm(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	text := ev.Text

	if text == btnAddDetails {
		s.QuickMode = false
		return e.showEditFields(s, r)
	}
	if text == btnQuickSend {
		return e.dispatch(ctx, s, ev, r, false)
	}
	if strings.EqualFold(text, btnEditFields) {
		return e.showEditFields(s, r)
	}
	if strings.EqualFold(text, btnRestart) {
		s.Restart()
		if err := r.Send("Заповнення скинуто. Починаємо спочатку.", nil); err != nil {
			return err
		}
		return e.askDepartment(s, r)
	}
	if strings.EqualFold(text, btnConfirmYes) {
		return e.dispatch(ctx, s, ev, r, true)
	}
	return r.Send("Будь ласка, оберіть ТАК або Почати спочатку.", nil)
}

// dispatch publishes the finished request. offerSave keeps the form around
// long enough to offer storing it as a template.
func (e *Engine) dispatch(ctx context.Context, s *session.Session, ev Event, r Replier, offerSave bool) error {
	if !e.publisher.Configured() {
		logger.DISPATCH.LogAttrs(ctx, slog.LevelError, "publish.unconfigured",
			slog.Int64("user_id", s.UserID),
		)
		s.Reset()
		return r.Send("Не задано TARGET_CHAT_ID. Додайте змінну середовища.", removeKeyboard())
	}

	text := form.Render(s.Form, e.now())
	notification := "📋 " + ev.Mention() + " створив нову заявку:\n\n" + text

	if err := e.publisher.Publish(ctx, s.Form.ThreadID, notification); err != nil {
		return r.Send("⚠️ Не вдалося надіслати заявку. Спробуйте ще раз.", nil)
	}

	logger.FLOW.LogAttrs(ctx, slog.LevelInfo, "request.dispatched",
		slog.Int64("user_id", s.UserID),
		slog.Int("thread_id", s.Form.ThreadID),
	)

	e.rememberContacts(ctx, s)

	if offerSave {
		s.State = session.StateSaveOffer
		return r.Send(
			"✅ Заявку надіслано!\n\nБажаєте зберегти дані як шаблон для повторного використання?",
			replyRows([]string{btnSaveTemplate}, []string{btnNewRequest}),
		)
	}

	s.Reset()
	return r.Send("✅ Заявку надіслано!", replyRows([]string{btnNewRequest}))
}

// rememberContacts refreshes the user's contact book from the dispatched
// form. Failures only log: the request is already delivered.
func (e *Engine) rememberContacts(ctx context.Context, s *session.Session) {
	var contacts []storage.Contact
	if v := s.Form.LoadContact; v != "" && v != catalog.Placeholder {
		contacts = append(contacts, storage.Contact{Type: "load", Value: v})
	}
	if v := s.Form.UnloadContact; v != "" && v != catalog.Placeholder {
		contacts = append(contacts, storage.Contact{Type: "unload", Value: v})
	}
	if len(contacts) == 0 {
		return
	}
	if err := e.contacts.Replace(ctx, s.UserID, contacts); err != nil {
		logger.SVCContacts.LogAttrs(ctx, slog.LevelWarn, "contacts.replace_failed",
			slog.Int64("user_id", s.UserID),
			slog.String("err", err.Error()),
		)
	}
}

func (e *Engine) showEditFields(s *session.Session, r Replier) error {
	s.State = session.StateEdit

	dept := s.Form.Department
	if dept == "" {
		dept = catalog.Placeholder
	}
	rows := [][]string{{"Запит від: " + dept}}

	for _, q := range catalog.Questions() {
		value := s.Form.Value(q.Key)
		if value == "" {
			value = catalog.Placeholder
		}
		rows = append(rows, []string{q.Label + ": " + truncate(value, 20)})
	}
	rows = append(rows, []string{btnBackToConfirm})

	return r.Send("Оберіть поле для редагування:", replyRows(rows...))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func (e *Engine) handleEditChoice(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	text := ev.Text

	if text == btnBackToConfirm {
		return e.askQuestion(ctx, s, r)
	}

	if strings.HasPrefix(text, "Запит від:") {
		s.EditDepartment = true
		s.State = session.StateDepartment
		return r.Send("Запит від:", e.departmentKeyboard())
	}

	if idx, ok := catalog.ByLabelPrefix(text); ok {
		s.Cursor = idx
		s.EditMode = true
		return e.askQuestion(ctx, s, r)
	}

	return r.Send("Будь ласка, оберіть поле зі списку.", nil)
}

func (e *Engine) handleSaveOffer(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	switch ev.Text {
	case btnSaveTemplate:
		s.State = session.StateSaveName
		return r.Send("Як назвати цей шаблон?", removeKeyboard())
	case btnNewRequest:
		s.Reset()
		return e.showMenu(ctx, s, r)
	}
	return r.Send("Оберіть опцію:", replyRows([]string{btnSaveTemplate}, []string{btnNewRequest}))
}

func (e *Engine) handleSaveName(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return r.Send("Назва не може бути порожною. Спробуйте ще раз:", nil)
	}

	if err := e.templates.Save(ctx, s.UserID, name, s.Form.Snapshot()); err != nil {
		logger.SVCTemplates.LogAttrs(ctx, slog.LevelError, "template.save_failed",
			slog.Int64("user_id", s.UserID),
			slog.String("template_name", name),
			slog.String("err", err.Error()),
		)
		return r.Send("⚠️ Не вдалося зберегти шаблон. Спробуйте ще раз:", nil)
	}

	s.Reset()
	return r.Send("✅ Шаблон '"+name+"' збережено!", replyRows([]string{btnNewRequest}))
}
