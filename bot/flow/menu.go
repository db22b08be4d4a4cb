package flow

import (
	"context"
	"strings"

	"log/slog"

	"github.com/agrohub/transportbot/bot/catalog"
	"github.com/agrohub/transportbot/bot/form"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/core/logger"
)

func (e *Engine) showMenu(ctx context.Context, s *session.Session, r Replier) error {
	s.State = session.StateMenu
	rows := [][]string{
		{btnNewRequest},
		{btnQuickRequest},
	}
	if e.hasTemplates(ctx, s.UserID) {
		rows = append(rows, []string{btnLoadTemplate}, []string{btnDropTemplate})
	}
	return r.Send("Що робитимемо?", replyRows(rows...))
}

func (e *Engine) hasTemplates(ctx context.Context, userID int64) bool {
	list, err := e.templates.List(ctx, userID)
	if err != nil {
		logger.SVCTemplates.LogAttrs(ctx, slog.LevelWarn, "template.list_failed",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return false
	}
	return len(list) > 0
}

func (e *Engine) handleMenu(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	switch ev.Text {
	case btnResume:
		if err := r.Send("Продовжуємо заповнення...", removeKeyboard()); err != nil {
			return err
		}
		return e.askQuestion(ctx, s, r)

	case btnRestart:
		s.Restart()
		return e.askDepartment(s, r)

	case btnNewRequest:
		s.Reset()
		s.State = session.StateDepartment
		return e.askDepartment(s, r)

	case btnQuickRequest:
		s.Reset()
		s.State = session.StateDepartment
		s.QuickMode = true
		s.Form.Company = e.cfg.DefaultCompany
		return e.askDepartment(s, r)

	case btnLoadTemplate:
		return e.showTemplates(ctx, s, r)

	case btnDropTemplate:
		s.DeleteMode = true
		return e.showTemplates(ctx, s, r)
	}
	return r.Send("Будь ласка, оберіть опцію.", nil)
}

func (e *Engine) askDepartment(s *session.Session, r Replier) error {
	s.State = session.StateDepartment
	return r.Send("Запит від:", e.departmentKeyboard())
}

func (e *Engine) showTemplates(ctx context.Context, s *session.Session, r Replier) error {
	list, err := e.templates.List(ctx, s.UserID)
	if err != nil {
		logger.SVCTemplates.LogAttrs(ctx, slog.LevelWarn, "template.list_failed",
			slog.Int64("user_id", s.UserID),
			slog.String("err", err.Error()),
		)
		list = nil
	}
	if len(list) == 0 {
		s.DeleteMode = false
		if err := r.Send("У вас немає збережених шаблонів.", removeKeyboard()); err != nil {
			return err
		}
		return e.showMenu(ctx, s, r)
	}

	rows := make([][]string, 0, len(list)+1)
	for _, t := range list {
		rows = append(rows, []string{t.Name})
	}
	rows = append(rows, []string{btnBack})

	prompt := "Оберіть шаблон:"
	if s.DeleteMode {
		prompt = "Оберіть шаблон для видалення:"
	}
	s.State = session.StateTemplateSelect
	return r.Send(prompt, replyRows(rows...))
}

func (e *Engine) handleTemplateSelect(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	if ev.Text == btnBack {
		s.DeleteMode = false
		return e.showMenu(ctx, s, r)
	}

	list, err := e.templates.List(ctx, s.UserID)
	if err != nil {
		logger.SVCTemplates.LogAttrs(ctx, slog.LevelWarn, "template.list_failed",
			slog.Int64("user_id", s.UserID),
			slog.String("err", err.Error()),
		)
	}
	var (
		found bool
		id    int64
		name  string
		snap  form.Snapshot
	)
	// Duplicate names resolve to the newest save: the list is ordered by
	// creation time descending.
	for _, t := range list {
		if t.Name == ev.Text {
			name, snap, err = e.templates.Get(ctx, t.ID)
			if err != nil {
				logger.SVCTemplates.LogAttrs(ctx, slog.LevelWarn, "template.get_failed",
					slog.Int64("template_id", t.ID),
					slog.String("err", err.Error()),
				)
				break
			}
			id = t.ID
			found = true
			break
		}
	}

	if s.DeleteMode {
		if !found {
			return r.Send("Шаблон не знайдено.", nil)
		}
		s.DeleteTemplateID = id
		s.DeleteTemplateName = name
		s.State = session.StateDeleteConfirm
		return r.Send("Видалити шаблон '"+name+"'?", replyRows(
			[]string{btnYes},
			[]string{btnNo},
		))
	}

	if !found {
		return r.Send("Шаблон не знайдено.", nil)
	}

	s.Reset()
	s.Form = form.FromSnapshot(snap)
	logger.FLOW.LogAttrs(ctx, slog.LevelInfo, "template.loaded",
		slog.Int64("user_id", s.UserID),
		slog.Int64("template_id", id),
		slog.String("template_name", name),
	)

	if s.Form.Routed() {
		s.Cursor = catalog.Len()
		s.State = session.StateQuestion
		if err := r.Send("📋 Завантажено шаблон '"+name+"'\n✅ Запит від: "+s.Form.Department, removeKeyboard()); err != nil {
			return err
		}
		return e.askQuestion(ctx, s, r)
	}

	s.TemplateLoaded = true
	s.State = session.StateDepartment
	return r.Send("📋 Завантажено шаблон '"+name+"'\n\nЗапит від:", e.departmentKeyboard())
}

func (e *Engine) handleDeleteConfirm(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	switch ev.Text {
	case btnYes:
		name := s.DeleteTemplateName
		if s.DeleteTemplateID != 0 {
			if err := e.templates.Delete(ctx, s.DeleteTemplateID); err != nil {
				logger.SVCTemplates.LogAttrs(ctx, slog.LevelWarn, "template.delete_failed",
					slog.Int64("template_id", s.DeleteTemplateID),
					slog.String("err", err.Error()),
				)
			}
		}
		msg := "✅ Шаблон видалено."
		if name != "" {
			msg = "✅ Шаблон '" + name + "' видалено."
		}
		if err := r.Send(msg, nil); err != nil {
			return err
		}
	case btnNo:
		if err := r.Send("❎ Видалення скасовано.", nil); err != nil {
			return err
		}
	default:
		return r.Send("Оберіть: ✅ Так або ❌ Ні.", nil)
	}

	s.DeleteMode = false
	s.DeleteTemplateID = 0
	s.DeleteTemplateName = ""
	return e.showMenu(ctx, s, r)
}

func (e *Engine) handleDepartment(ctx context.Context, s *session.Session, ev Event, r Replier) error {
	dep, ok := e.department(ev.Text)
	if !ok {
		names := make([]string, 0, len(e.cfg.Departments))
		for _, d := range e.cfg.Departments {
			names = append(names, d.Name)
		}
		return r.Send("Будь ласка, оберіть "+strings.Join(names, " або ")+".", nil)
	}

	s.Form.Department = dep.Name
	s.Form.ThreadID = dep.ThreadID
	r.DeleteInbound()
	if err := r.Send("Запит від: ✅ "+dep.Name, nil); err != nil {
		return err
	}

	if s.EditDepartment {
		s.EditDepartment = false
		s.Cursor = catalog.Len()
		s.State = session.StateQuestion
		if err := r.Send("✅ Змінено на '"+dep.Name+"'", removeKeyboard()); err != nil {
			return err
		}
		return e.askQuestion(ctx, s, r)
	}

	if s.TemplateLoaded {
		s.TemplateLoaded = false
		s.Cursor = catalog.Len()
		s.State = session.StateQuestion
		if err := r.Send("Форма заповнена з шаблону.", removeKeyboard()); err != nil {
			return err
		}
		return e.askQuestion(ctx, s, r)
	}

	s.Cursor = 0
	if err := r.Send("Починаємо заповнення заявки.", removeKeyboard()); err != nil {
		return err
	}
	return e.askQuestion(ctx, s, r)
}
