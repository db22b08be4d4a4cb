// Package flow drives the transport request dialogue: one engine method per
// conversation state, with every side channel (storage, search, delivery)
// behind an interface so the whole machine runs against fakes in tests.
package flow

import (
	"context"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/bot/form"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/bot/settlements"
	"github.com/agrohub/transportbot/bot/storage"
	"github.com/agrohub/transportbot/core/logger"
)

// Event is one inbound user action, already stripped of transport detail.
// Text carries message text; Payload carries a callback payload.
type Event struct {
	UserID   int64
	Text     string
	Payload  string
	Username string
	FullName string
}

// Mention renders the author reference used in the published request.
func (ev Event) Mention() string {
	if ev.Username != "" {
		return "@" + ev.Username
	}
	return ev.FullName
}

// Replier is the outbound side of one event. Send posts a new message,
// EditLast rewrites the message the event originated from (calendar grids),
// DeleteInbound best-effort removes the user's message and never fails.
type Replier interface {
	Send(text string, kb *tele.ReplyMarkup) error
	EditLast(text string, kb *tele.ReplyMarkup) error
	DeleteInbound()
}

// TemplateStore persists form snapshots under user-chosen names.
type TemplateStore interface {
	List(ctx context.Context, userID int64) ([]storage.TemplateSummary, error)
	Get(ctx context.Context, id int64) (string, form.Snapshot, error)
	Save(ctx context.Context, userID int64, name string, data form.Snapshot) error
	Delete(ctx context.Context, id int64) error
}

// ContactStore remembers the contacts from the latest dispatched request.
type ContactStore interface {
	Replace(ctx context.Context, userID int64, contacts []storage.Contact) error
}

// Searcher resolves settlement queries. Failures surface as empty results.
type Searcher interface {
	Search(ctx context.Context, query string) []settlements.Settlement
}

// Publisher delivers the finished request text to the target chat.
type Publisher interface {
	Configured() bool
	Publish(ctx context.Context, threadID int, text string) error
}

// Department is one request origin with its delivery thread.
type Department struct {
	Name     string
	ThreadID int
}

// Config holds the engine's fixed dialogue parameters.
type Config struct {
	// Departments appear on the routing keyboard in listed order.
	Departments []Department
	// DefaultCompany is pre-filled for quick requests.
	DefaultCompany string
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
}

// Engine is the conversation state machine. It owns no transport: every
// outbound message goes through the per-event Replier.
type Engine struct {
	sessions  *session.Repository
	templates TemplateStore
	contacts  ContactStore
	search    Searcher
	publisher Publisher
	cfg       Config
}

// New assembles an engine.
func New(sessions *session.Repository, templates TemplateStore, contacts ContactStore, search Searcher, publisher Publisher, cfg Config) *Engine {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		sessions:  sessions,
		templates: templates,
		contacts:  contacts,
		search:    search,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Sessions exposes the session store for wiring (router in-progress checks).
func (e *Engine) Sessions() *session.Repository {
	return e.sessions
}

// Start handles /start and the new-request buttons. A conversation already
// in progress gets a resume prompt instead of being dropped.
func (e *Engine) Start(ctx context.Context, ev Event, r Replier) error {
	s := e.sessions.Get(ev.UserID)
	if s.State != session.StateIdle && s.State != session.StateMenu {
		s.State = session.StateMenu
		return r.Send("Ви вже заповнюєте заявку. Що робити?", replyRows(
			[]string{btnResume},
			[]string{btnRestart},
		))
	}
	s.State = session.StateMenu
	return e.showMenu(ctx, s, r)
}

// Cancel aborts the conversation and forgets everything collected so far.
func (e *Engine) Cancel(ctx context.Context, ev Event, r Replier) error {
	s := e.sessions.Get(ev.UserID)
	s.Reset()
	logger.FLOW.LogAttrs(ctx, slog.LevelInfo, "flow.cancelled",
		slog.Int64("user_id", ev.UserID),
	)
	return r.Send("Заповнення скасовано. Натисніть кнопку нижче, щоб почати нову заявку.", replyRows(
		[]string{btnMakeRequest},
	))
}

// HandleText routes a text message to the handler for the current state.
func (e *Engine) HandleText(ctx context.Context, ev Event, r Replier) error {
	s := e.sessions.Get(ev.UserID)
	logger.FLOW.LogAttrs(ctx, slog.LevelDebug, "flow.event",
		slog.Int64("user_id", ev.UserID),
		slog.String("state", string(s.State)),
		slog.Int("cursor", s.Cursor),
	)
	switch s.State {
	case session.StateIdle, session.StateMenu:
		return e.handleMenu(ctx, s, ev, r)
	case session.StateDepartment:
		return e.handleDepartment(ctx, s, ev, r)
	case session.StateQuestion:
		return e.handleAnswer(ctx, s, ev, r)
	case session.StateCustomInput:
		return e.handleCustomInput(ctx, s, ev, r)
	case session.StateCrop:
		return e.handleCrop(ctx, s, ev, r)
	case session.StateDateType:
		return e.handleDateType(ctx, s, ev, r)
	case session.StateDateCalendar, session.StateDatePeriodEnd:
		return e.handleDateText(ctx, s, ev, r)
	case session.StateCitySearch:
		return e.handleCitySearch(ctx, s, ev, r)
	case session.StateCitySelect:
		return e.handleCitySelect(ctx, s, ev, r)
	case session.StateConfirm:
		return e.handleConfirm(ctx, s, ev, r)
	case session.StateEdit:
		return e.handleEditChoice(ctx, s, ev, r)
	case session.StateTemplateSelect:
		return e.handleTemplateSelect(ctx, s, ev, r)
	case session.StateDeleteConfirm:
		return e.handleDeleteConfirm(ctx, s, ev, r)
	case session.StateSaveOffer:
		return e.handleSaveOffer(ctx, s, ev, r)
	case session.StateSaveName:
		return e.handleSaveName(ctx, s, ev, r)
	}
	return nil
}

// HandleCalendar routes a calendar callback. Outside the date states the
// press is silently ignored (stale keyboards linger in chat history).
func (e *Engine) HandleCalendar(ctx context.Context, ev Event, r Replier) error {
	s := e.sessions.Get(ev.UserID)
	switch s.State {
	case session.StateDateCalendar:
		return e.handleCalendar(ctx, s, ev, r)
	case session.StateDatePeriodEnd:
		return e.handlePeriodEnd(ctx, s, ev, r)
	}
	return nil
}

func (e *Engine) now() time.Time {
	return e.cfg.Now()
}

func (e *Engine) department(name string) (Department, bool) {
	for _, d := range e.cfg.Departments {
		if d.Name == name {
			return d, true
		}
	}
	return Department{}, false
}
