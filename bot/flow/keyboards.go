package flow

import (
	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/core/telegram/keyboard"
)

func replyRows(rows ...[]string) *tele.ReplyMarkup {
	kb := keyboard.ReplyButtons(rows...)
	kb.OneTimeKeyboard = true
	return kb
}

func removeKeyboard() *tele.ReplyMarkup {
	return keyboard.RemoveKeyboard()
}

// optionsKeyboard renders one option per row, appends the free-text override
// unless the options already include it, and a back button when allowed.
// Nil options yield a back-only keyboard or nothing at all.
func optionsKeyboard(options []string, showBack bool) *tele.ReplyMarkup {
	if len(options) == 0 {
		if !showBack {
			return nil
		}
		return replyRows([]string{btnBack})
	}
	rows := make([][]string, 0, len(options)+2)
	hasCustom := false
	for _, opt := range options {
		if opt == btnCustom {
			hasCustom = true
		}
		rows = append(rows, []string{opt})
	}
	if !hasCustom {
		rows = append(rows, []string{btnCustom})
	}
	if showBack {
		rows = append(rows, []string{btnBack})
	}
	return replyRows(rows...)
}

func (e *Engine) departmentKeyboard() *tele.ReplyMarkup {
	rows := make([][]string, 0, len(e.cfg.Departments))
	for _, d := range e.cfg.Departments {
		rows = append(rows, []string{d.Name})
	}
	return replyRows(rows...)
}
