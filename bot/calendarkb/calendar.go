// Package calendarkb renders an inline month calendar and parses its
// callback payloads. The grid is a plain Telegram inline keyboard, no
// external date-picker service involved.
package calendarkb

import (
	"fmt"
	"strings"
	"time"

	"github.com/agrohub/transportbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Unique is the callback key all calendar buttons carry.
const Unique = "cal"

var monthNamesUK = [...]string{
	"Січень", "Лютий", "Березень", "Квітень", "Травень", "Червень",
	"Липень", "Серпень", "Вересень", "Жовтень", "Листопад", "Грудень",
}

var weekdaysUK = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Нд"}

// Month builds the inline keyboard for one month: header, weekday row,
// day grid (Monday first) and a navigation row.
func Month(year int, month time.Month) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn

	header := fmt.Sprintf("%s %d", monthNamesUK[month-1], year)
	rows = append(rows, []keyboard.InlineBtn{{Text: header, Unique: Unique, Data: "X"}})

	week := make([]keyboard.InlineBtn, 0, 7)
	for _, wd := range weekdaysUK {
		week = append(week, keyboard.InlineBtn{Text: wd, Unique: Unique, Data: "X"})
	}
	rows = append(rows, week)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	// Monday-first column index of the 1st.
	offset := (int(first.Weekday()) + 6) % 7
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	row := make([]keyboard.InlineBtn, 0, 7)
	for i := 0; i < offset; i++ {
		row = append(row, keyboard.InlineBtn{Text: " ", Unique: Unique, Data: "X"})
	}
	for day := 1; day <= daysInMonth; day++ {
		row = append(row, keyboard.InlineBtn{
			Text:   fmt.Sprintf("%d", day),
			Unique: Unique,
			Data:   fmt.Sprintf("D:%04d-%02d-%02d", year, month, day),
		})
		if len(row) == 7 {
			rows = append(rows, row)
			row = make([]keyboard.InlineBtn, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, keyboard.InlineBtn{Text: " ", Unique: Unique, Data: "X"})
		}
		rows = append(rows, row)
	}

	prev := time.Date(year, month-1, 1, 0, 0, 0, 0, time.Local)
	next := time.Date(year, month+1, 1, 0, 0, 0, 0, time.Local)
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "«", Unique: Unique, Data: fmt.Sprintf("N:%04d-%02d", prev.Year(), int(prev.Month()))},
		{Text: "Сьогодні", Unique: Unique, Data: "T"},
		{Text: "»", Unique: Unique, Data: fmt.Sprintf("N:%04d-%02d", next.Year(), int(next.Month()))},
	})

	return keyboard.InlineButtonsRows(rows...)
}

// Action classifies a parsed calendar callback.
type Action int

const (
	// ActionIgnore covers decorative buttons (header, weekdays, filler).
	ActionIgnore Action = iota
	// ActionNav re-renders the grid for another month.
	ActionNav
	// ActionDate selects a concrete day.
	ActionDate
)

// Parse decodes a calendar callback payload. For ActionNav the returned time
// points at the first day of the target month; for ActionDate at the chosen
// day. now supplies "today" for the T shortcut.
func Parse(payload string, now time.Time) (Action, time.Time) {
	switch {
	case payload == "T":
		return ActionNav, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	case strings.HasPrefix(payload, "N:"):
		t, err := time.ParseInLocation("2006-01", payload[2:], time.Local)
		if err != nil {
			return ActionIgnore, time.Time{}
		}
		return ActionNav, t
	case strings.HasPrefix(payload, "D:"):
		t, err := time.ParseInLocation("2006-01-02", payload[2:], time.Local)
		if err != nil {
			return ActionIgnore, time.Time{}
		}
		return ActionDate, t
	}
	return ActionIgnore, time.Time{}
}

// FormatDate renders a picked day the way it appears in the request text.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
