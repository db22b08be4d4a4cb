// Package session tracks per-user conversation state in memory.
package session

import (
	"time"

	"github.com/agrohub/transportbot/bot/catalog"
	"github.com/agrohub/transportbot/bot/form"
)

// State names the conversation phase a user is currently in.
type State string

const (
	// StateIdle means no conversation is in progress.
	StateIdle State = "idle"
	// StateMenu covers the start menu, including the resume prompt.
	StateMenu State = "menu"
	// StateDepartment waits for the department choice that routes the request.
	StateDepartment State = "department"
	// StateQuestion is the main questionnaire loop.
	StateQuestion State = "question"
	// StateCustomInput waits for free text overriding an option list.
	StateCustomInput State = "custom_input"
	// StateCrop refines a grain/seed cargo answer into a specific crop.
	StateCrop State = "crop"
	// StateDateType chooses between a single date and a period.
	StateDateType State = "date_type"
	// StateDateCalendar waits for the (first) calendar date.
	StateDateCalendar State = "date_calendar"
	// StateDatePeriodEnd waits for the closing date of a period.
	StateDatePeriodEnd State = "date_period_end"
	// StateCitySearch waits for a settlement search query.
	StateCitySearch State = "city_search"
	// StateCitySelect waits for a pick from settlement search results.
	StateCitySelect State = "city_select"
	// StateConfirm shows the assembled request for review.
	StateConfirm State = "confirm"
	// StateEdit shows the field list for in-place editing.
	StateEdit State = "edit"
	// StateTemplateSelect waits for a template pick (load or delete).
	StateTemplateSelect State = "template_select"
	// StateDeleteConfirm waits for the template deletion confirmation.
	StateDeleteConfirm State = "delete_confirm"
	// StateSaveOffer asks whether to keep the sent request as a template.
	StateSaveOffer State = "save_offer"
	// StateSaveName waits for the template name.
	StateSaveName State = "save_name"
)

// CustomKind tells the free-text override handler how to store the input.
type CustomKind int

const (
	// CustomNone means no free-text override is pending.
	CustomNone CustomKind = iota
	// CustomPlain stores the text verbatim under the current question.
	CustomPlain
	// CustomOther stores the text with the "Інше: " prefix.
	CustomOther
)

// Session is the full conversation state for one user. Handlers mutate it in
// place; the repository serializes access per user.
type Session struct {
	UserID int64
	State  State
	Form   *form.Form

	// Cursor is the questionnaire position. It may point past the last
	// question, which means the form is complete and under review.
	Cursor int

	QuickMode      bool
	EditMode       bool
	EditDepartment bool
	TemplateLoaded bool
	DeleteMode     bool

	Custom     CustomKind
	CropPrefix string

	DateMode    string // "single" or "period"
	PeriodStart string

	SearchResults []SearchResult

	DeleteTemplateID   int64
	DeleteTemplateName string

	LastSeen time.Time
}

// SearchResult is one settlement offered to the user during city search.
type SearchResult struct {
	Display string
	Value   string
}

// Reset wipes everything except the user identity, returning the session to
// the idle state.
func (s *Session) Reset() {
	*s = Session{UserID: s.UserID, State: StateIdle, Form: form.New(), LastSeen: s.LastSeen}
}

// Restart clears collected answers but keeps the conversation alive at the
// department question.
func (s *Session) Restart() {
	s.Reset()
	s.State = StateDepartment
}

// Question returns the catalog entry under the cursor.
func (s *Session) Question() catalog.Question {
	return catalog.At(s.Cursor)
}

// Done reports whether the cursor moved past the last question.
func (s *Session) Done() bool {
	return s.Cursor >= catalog.Len()
}
