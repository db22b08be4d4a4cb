package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/agrohub/transportbot/bot/catalog"
	"github.com/agrohub/transportbot/bot/form"
	"github.com/agrohub/transportbot/bot/session"
	"github.com/agrohub/transportbot/bot/settlements"
	"github.com/agrohub/transportbot/bot/storage"
	"github.com/agrohub/transportbot/core/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitLogger(nil)
	m.Run()
}

type sentMessage struct {
	Text string
	KB   *tele.ReplyMarkup
}

type fakeReplier struct {
	sends   []sentMessage
	edits   []sentMessage
	deleted int
}

func (r *fakeReplier) Send(text string, kb *tele.ReplyMarkup) error {
	r.sends = append(r.sends, sentMessage{Text: text, KB: kb})
	return nil
}

func (r *fakeReplier) EditLast(text string, kb *tele.ReplyMarkup) error {
	r.edits = append(r.edits, sentMessage{Text: text, KB: kb})
	return nil
}

func (r *fakeReplier) DeleteInbound() { r.deleted++ }

func (r *fakeReplier) last(t *testing.T) sentMessage {
	t.Helper()
	if len(r.sends) == 0 {
		t.Fatal("no messages sent")
	}
	return r.sends[len(r.sends)-1]
}

func (r *fakeReplier) lastEdit(t *testing.T) sentMessage {
	t.Helper()
	if len(r.edits) == 0 {
		t.Fatal("no messages edited")
	}
	return r.edits[len(r.edits)-1]
}

func (r *fakeReplier) contains(substr string) bool {
	for _, m := range r.sends {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

type storedTemplate struct {
	id   int64
	name string
	data form.Snapshot
}

type fakeTemplates struct {
	items   []storedTemplate
	nextID  int64
	listErr error
}

func (f *fakeTemplates) List(ctx context.Context, userID int64) ([]storage.TemplateSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	// Newest first, mirroring the repository ordering.
	out := make([]storage.TemplateSummary, 0, len(f.items))
	for i := len(f.items) - 1; i >= 0; i-- {
		out = append(out, storage.TemplateSummary{ID: f.items[i].id, Name: f.items[i].name})
	}
	return out, nil
}

func (f *fakeTemplates) Get(ctx context.Context, id int64) (string, form.Snapshot, error) {
	for _, it := range f.items {
		if it.id == id {
			return it.name, it.data, nil
		}
	}
	return "", nil, errors.New("not found")
}

func (f *fakeTemplates) Save(ctx context.Context, userID int64, name string, data form.Snapshot) error {
	f.nextID++
	f.items = append(f.items, storedTemplate{id: f.nextID, name: name, data: data})
	return nil
}

func (f *fakeTemplates) Delete(ctx context.Context, id int64) error {
	for i, it := range f.items {
		if it.id == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

type fakeContacts struct {
	calls [][]storage.Contact
}

func (f *fakeContacts) Replace(ctx context.Context, userID int64, contacts []storage.Contact) error {
	f.calls = append(f.calls, contacts)
	return nil
}

type fakeSearcher struct {
	results []settlements.Settlement
}

func (f *fakeSearcher) Search(ctx context.Context, query string) []settlements.Settlement {
	return f.results
}

type published struct {
	ThreadID int
	Text     string
}

type fakePublisher struct {
	configured bool
	fail       bool
	sent       []published
}

func (f *fakePublisher) Configured() bool { return f.configured }

func (f *fakePublisher) Publish(ctx context.Context, threadID int, text string) error {
	if f.fail {
		return errors.New("telegram down")
	}
	f.sent = append(f.sent, published{ThreadID: threadID, Text: text})
	return nil
}

type fixture struct {
	engine    *Engine
	replier   *fakeReplier
	templates *fakeTemplates
	contacts  *fakeContacts
	searcher  *fakeSearcher
	publisher *fakePublisher
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		replier:   &fakeReplier{},
		templates: &fakeTemplates{},
		contacts:  &fakeContacts{},
		searcher:  &fakeSearcher{},
		publisher: &fakePublisher{configured: true},
		now:       time.Date(2024, 5, 7, 14, 30, 0, 0, time.Local),
	}
	f.engine = New(session.NewRepository(), f.templates, f.contacts, f.searcher, f.publisher, Config{
		Departments: []Department{
			{Name: "Тваринництво", ThreadID: 2},
			{Name: "Виробництво", ThreadID: 4},
		},
		DefaultCompany: "Вінницький ХАБ",
		Now:            func() time.Time { return f.now },
	})
	return f
}

const testUser int64 = 100

func (f *fixture) event(text string) Event {
	return Event{UserID: testUser, Text: text, Username: "vasyl"}
}

func (f *fixture) say(t *testing.T, text string) sentMessage {
	t.Helper()
	if err := f.engine.HandleText(context.Background(), f.event(text), f.replier); err != nil {
		t.Fatalf("HandleText(%q): %v", text, err)
	}
	return f.replier.last(t)
}

func (f *fixture) press(t *testing.T, payload string) {
	t.Helper()
	ev := Event{UserID: testUser, Payload: payload, Username: "vasyl"}
	if err := f.engine.HandleCalendar(context.Background(), ev, f.replier); err != nil {
		t.Fatalf("HandleCalendar(%q): %v", payload, err)
	}
}

func (f *fixture) start(t *testing.T) sentMessage {
	t.Helper()
	if err := f.engine.Start(context.Background(), f.event("/start"), f.replier); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return f.replier.last(t)
}

func (f *fixture) session() *session.Session {
	return f.engine.Sessions().Get(testUser)
}

func TestStartShowsMenu(t *testing.T) {
	f := newFixture()
	msg := f.start(t)
	if msg.Text != "Що робитимемо?" {
		t.Fatalf("menu text = %q", msg.Text)
	}
	if f.session().State != session.StateMenu {
		t.Fatalf("state = %s", f.session().State)
	}
}

func TestStartResumesConversation(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")

	msg := f.start(t)
	if !strings.Contains(msg.Text, "Ви вже заповнюєте заявку") {
		t.Fatalf("resume prompt = %q", msg.Text)
	}

	msg = f.say(t, "Продовжити")
	if !strings.Contains(msg.Text, "Тип авто:") {
		t.Fatalf("resume did not re-ask the current question: %q", msg.Text)
	}
}

func TestCancelResetsSession(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Виробництво")

	if err := f.engine.Cancel(context.Background(), f.event("/cancel"), f.replier); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !strings.Contains(f.replier.last(t).Text, "Заповнення скасовано") {
		t.Fatalf("cancel message = %q", f.replier.last(t).Text)
	}
	if f.session().State != session.StateIdle {
		t.Fatalf("state = %s", f.session().State)
	}
	if f.engine.Sessions().InProgress(testUser) {
		t.Fatal("cancelled session still in progress")
	}
}

func TestDepartmentValidation(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")

	msg := f.say(t, "Бухгалтерія")
	if msg.Text != "Будь ласка, оберіть Тваринництво або Виробництво." {
		t.Fatalf("validation = %q", msg.Text)
	}

	msg = f.say(t, "Тваринництво")
	if !strings.Contains(msg.Text, "Тип авто: (1/16)") {
		t.Fatalf("first question = %q", msg.Text)
	}
	s := f.session()
	if s.Form.Department != "Тваринництво" || s.Form.ThreadID != 2 {
		t.Fatalf("routing = %q/%d", s.Form.Department, s.Form.ThreadID)
	}
}

func TestBackAtFirstQuestion(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")

	f.say(t, "⬅️ Назад")
	if !f.replier.contains("Ви вже на першому питанні.") {
		t.Fatal("missing first-question notice")
	}
	if !strings.Contains(f.replier.last(t).Text, "Тип авто: (1/16)") {
		t.Fatalf("question not re-asked: %q", f.replier.last(t).Text)
	}
	if f.session().Cursor != 0 {
		t.Fatalf("cursor = %d", f.session().Cursor)
	}
}

func TestBackStepsToPreviousQuestion(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Зерновоз")

	msg := f.say(t, "⬅️ Назад")
	if !strings.Contains(msg.Text, "Тип авто: (1/16)") {
		t.Fatalf("back landed on %q", msg.Text)
	}
}

func TestCropRefinement(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Зерновоз")
	f.say(t, "Іваненко І.І.")
	f.say(t, "Зернопродукт")

	msg := f.say(t, "Зерно")
	if msg.Text != "Оберіть культуру:" {
		t.Fatalf("crop prompt = %q", msg.Text)
	}
	if f.session().State != session.StateCrop {
		t.Fatalf("state = %s", f.session().State)
	}

	f.say(t, "Пшениця")
	if got := f.session().Form.CargoType; got != "Зерно: Пшениця" {
		t.Fatalf("cargo = %q", got)
	}
	if !f.replier.contains("Вид вантажу: Зерно ✅ Пшениця") {
		t.Fatal("missing crop echo")
	}
}

func TestCropRejectsUnknownAnswer(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Зерновоз")
	f.say(t, "Іваненко І.І.")
	f.say(t, "Зернопродукт")
	f.say(t, "Насіння")

	msg := f.say(t, "Банани")
	if !strings.Contains(msg.Text, "оберіть культуру зі списку") {
		t.Fatalf("rejection = %q", msg.Text)
	}
	if f.session().State != session.StateCrop {
		t.Fatalf("state = %s", f.session().State)
	}

	f.say(t, "Ввести своє")
	f.say(t, "Гречка")
	if got := f.session().Form.CargoType; got != "Насіння: Гречка" {
		t.Fatalf("cargo = %q", got)
	}
}

func TestLiquidCargoSkipsMethods(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Цистерна")
	f.say(t, "Іваненко І.І.")
	f.say(t, "Зернопродукт")
	f.say(t, "КАС")
	f.say(t, "Рідкі")
	f.say(t, "20 т")
	f.say(t, "Пропустити") // notes

	f.say(t, "📅 Разове перевезення")
	f.say(t, "15.06.2024")

	// Back from city search returns to the date question.
	f.searcher.results = nil
	msg := f.say(t, "⬅️ Назад")
	if !strings.Contains(msg.Text, "Оберіть тип перевезення:") {
		t.Fatalf("back from city landed on %q", msg.Text)
	}
	f.say(t, "📅 Разове перевезення")
	f.say(t, "15.06.2024")

	f.say(t, "Вінниця") // empty search result
	if !strings.Contains(f.replier.last(t).Text, "🔍 Нічого не знайдено") {
		t.Fatalf("empty search = %q", f.replier.last(t).Text)
	}
	f.searcher.results = []settlements.Settlement{{Display: "м. Вінниця (Вінницька)", Value: "м. Вінниця"}}
	f.say(t, "Вінниця")
	f.say(t, "м. Вінниця (Вінницька)")
	f.say(t, "Пропустити") // load place

	// Load method skipped for liquid cargo: next is load contact.
	if !strings.Contains(f.replier.last(t).Text, "Контакт на завантаженні") {
		t.Fatalf("expected load contact, got %q", f.replier.last(t).Text)
	}
	if f.session().Form.LoadMethod != "—" {
		t.Fatalf("load method = %q", f.session().Form.LoadMethod)
	}
}

func TestSingleDateViaCalendar(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Зерновоз")
	f.say(t, "Іваненко І.І.")
	f.say(t, "Зернопродукт")
	f.say(t, "КАС")
	f.say(t, "Рідкі")
	f.say(t, "20 т")
	f.say(t, "Пропустити")

	msg := f.say(t, "📅 Разове перевезення")
	if msg.Text != "Оберіть дату перевезення:" {
		t.Fatalf("calendar prompt = %q", msg.Text)
	}
	if msg.KB == nil || len(msg.KB.InlineKeyboard) == 0 {
		t.Fatal("calendar keyboard missing")
	}

	f.press(t, "N:2024-06")
	if f.replier.lastEdit(t).Text != "Оберіть дату перевезення:" {
		t.Fatalf("nav edit = %q", f.replier.lastEdit(t).Text)
	}

	f.press(t, "D:2024-06-15")
	if got := f.session().Form.DatePeriod; got != "15.06.2024" {
		t.Fatalf("date = %q", got)
	}
	if f.replier.edits[len(f.replier.edits)-1].Text != "Дата перевезення: 15.06.2024" {
		t.Fatalf("date edit = %q", f.replier.edits[len(f.replier.edits)-1].Text)
	}
}

func TestPeriodDates(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Зерновоз")
	f.say(t, "Іваненко І.І.")
	f.say(t, "Зернопродукт")
	f.say(t, "КАС")
	f.say(t, "Рідкі")
	f.say(t, "20 т")
	f.say(t, "Пропустити")

	f.say(t, "📆 Період перевезення")
	f.press(t, "D:2024-05-01")
	if f.session().State != session.StateDatePeriodEnd {
		t.Fatalf("state = %s", f.session().State)
	}
	if f.replier.lastEdit(t).Text != "Оберіть кінцеву дату перевезення:" {
		t.Fatalf("end prompt = %q", f.replier.lastEdit(t).Text)
	}

	f.press(t, "D:2024-05-10")
	if got := f.session().Form.DatePeriod; got != "01.05.2024 - 10.05.2024" {
		t.Fatalf("period = %q", got)
	}
	if !strings.Contains(f.replier.lastEdit(t).Text, "Період перевезення: ✅ 01.05.2024 - 10.05.2024") {
		t.Fatalf("period edit = %q", f.replier.lastEdit(t).Text)
	}
}

func TestTypedDateRejectsGarbage(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	f.say(t, "Зерновоз")
	f.say(t, "Іваненко І.І.")
	f.say(t, "Зернопродукт")
	f.say(t, "КАС")
	f.say(t, "Рідкі")
	f.say(t, "20 т")
	f.say(t, "Пропустити")
	f.say(t, "📅 Разове перевезення")

	msg := f.say(t, "завтра")
	if !strings.Contains(msg.Text, "Оберіть дату в календарі") {
		t.Fatalf("rejection = %q", msg.Text)
	}
	if f.session().State != session.StateDateCalendar {
		t.Fatalf("state = %s", f.session().State)
	}
}

func TestCalendarPressOutsideDateStatesIgnored(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")

	before := len(f.replier.sends) + len(f.replier.edits)
	f.press(t, "D:2024-06-15")
	if len(f.replier.sends)+len(f.replier.edits) != before {
		t.Fatal("stale calendar press produced output")
	}
}

// completeQuickForm drives a quick request up to the confirmation screen.
func completeQuickForm(t *testing.T, f *fixture) {
	t.Helper()
	f.start(t)
	f.say(t, "⚡ Швидка заявка")
	f.say(t, "Виробництво")
	f.say(t, "Зерновоз")       // vehicle
	f.say(t, "Іваненко І.І.") // initiator; company is skipped with the default
	f.say(t, "АМ вода")       // cargo
	f.say(t, "25 т")          // volume
	f.say(t, "📅 Разове перевезення")
	f.say(t, "15.06.2024")
	f.searcher.results = []settlements.Settlement{{Display: "м. Вінниця (Вінницька)", Value: "м. Вінниця"}}
	f.say(t, "Вінниця")
	f.say(t, "м. Вінниця (Вінницька)")
	f.say(t, "Склад №1") // load place
	f.searcher.results = []settlements.Settlement{{Display: "м. Гайсин (Вінницька)", Value: "м. Гайсин"}}
	f.say(t, "Гайсин")
	f.say(t, "м. Гайсин (Вінницька)")
	f.say(t, "Елеватор") // unload place
}

func TestQuickFlowSkipsAndDefaults(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)

	s := f.session()
	if s.State != session.StateConfirm {
		t.Fatalf("state = %s", s.State)
	}
	if s.Form.Company != "Вінницький ХАБ" {
		t.Fatalf("company = %q", s.Form.Company)
	}
	for key, got := range map[string]string{
		"size":           s.Form.SizeType,
		"notes":          s.Form.Notes,
		"load method":    s.Form.LoadMethod,
		"unload method":  s.Form.UnloadMethod,
		"load contact":   s.Form.LoadContact,
		"unload contact": s.Form.UnloadContact,
	} {
		if got != "—" {
			t.Errorf("%s = %q, want placeholder", key, got)
		}
	}
	if s.Form.LoadCity != "м. Вінниця" || s.Form.UnloadCity != "м. Гайсин" {
		t.Fatalf("cities = %q / %q", s.Form.LoadCity, s.Form.UnloadCity)
	}

	msg := f.replier.last(t)
	if !strings.Contains(msg.Text, "Це швидка заявка") {
		t.Fatalf("quick confirm = %q", msg.Text)
	}
}

func TestQuickSendDispatches(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)

	f.say(t, "📤 Надіслати")
	if len(f.publisher.sent) != 1 {
		t.Fatalf("published %d messages", len(f.publisher.sent))
	}
	got := f.publisher.sent[0]
	if got.ThreadID != 4 {
		t.Fatalf("thread = %d", got.ThreadID)
	}
	if !strings.HasPrefix(got.Text, "📋 @vasyl створив нову заявку:\n\n") {
		t.Fatalf("notification prefix wrong:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "Дата: 07.05.2024") || !strings.Contains(got.Text, "Час: 14:30") {
		t.Fatalf("clock stamp missing:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "Підприємство: Вінницький ХАБ") {
		t.Fatalf("default company missing:\n%s", got.Text)
	}

	// Quick dispatch resets without offering a template.
	if f.session().State != session.StateIdle {
		t.Fatalf("state = %s", f.session().State)
	}
	if !strings.Contains(f.replier.last(t).Text, "✅ Заявку надіслано!") {
		t.Fatalf("final message = %q", f.replier.last(t).Text)
	}
	// Placeholder contacts are not stored.
	if len(f.contacts.calls) != 0 {
		t.Fatalf("contacts stored: %v", f.contacts.calls)
	}
}

func TestQuickAddDetailsOpensEditMenu(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)

	msg := f.say(t, "✏️ Додати деталі")
	if !strings.Contains(msg.Text, "Оберіть поле для редагування:") {
		t.Fatalf("edit menu = %q", msg.Text)
	}
	if f.session().QuickMode {
		t.Fatal("add-details must drop quick mode")
	}
	if f.session().State != session.StateEdit {
		t.Fatalf("state = %s", f.session().State)
	}
}

func TestEditFieldReturnsToConfirm(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)
	f.say(t, "✏️ Додати деталі")

	msg := f.say(t, "Обсяг: 25 т")
	if !strings.Contains(msg.Text, "Обсяг") {
		t.Fatalf("edit prompt = %q", msg.Text)
	}
	msg = f.say(t, "30 т")
	if f.session().Form.Volume != "30 т" {
		t.Fatalf("volume = %q", f.session().Form.Volume)
	}
	if f.session().State != session.StateConfirm {
		t.Fatalf("state = %s, want confirm after edit", f.session().State)
	}
	if !strings.Contains(msg.Text, "Перевірте заявку:") {
		t.Fatalf("confirm not shown: %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "Обсяг: 30 т") {
		t.Fatalf("edited value missing: %q", msg.Text)
	}
}

func TestEditDepartment(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)
	f.say(t, "✏️ Додати деталі")

	f.say(t, "Запит від: Виробництво")
	msg := f.say(t, "Тваринництво")
	if f.session().Form.ThreadID != 2 {
		t.Fatalf("thread = %d", f.session().Form.ThreadID)
	}
	if !strings.Contains(msg.Text, "Перевірте заявку:") {
		t.Fatalf("confirm not shown after department edit: %q", msg.Text)
	}
	if !f.replier.contains("✅ Змінено на 'Тваринництво'") {
		t.Fatal("missing change confirmation")
	}
}

func TestEditBackToConfirm(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)
	f.say(t, "✏️ Додати деталі")

	msg := f.say(t, "⬅️ Назад до підтвердження")
	if !strings.Contains(msg.Text, "Перевірте заявку:") {
		t.Fatalf("back landed on %q", msg.Text)
	}
}

func TestFullConfirmDispatchAndTemplateSave(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)
	f.say(t, "✏️ Додати деталі")
	f.say(t, "⬅️ Назад до підтвердження") // now a full confirm with ТАК

	f.say(t, "ТАК")
	if len(f.publisher.sent) != 1 {
		t.Fatalf("published %d messages", len(f.publisher.sent))
	}
	if f.session().State != session.StateSaveOffer {
		t.Fatalf("state = %s, want save offer", f.session().State)
	}
	if !f.replier.contains("Бажаєте зберегти дані як шаблон") {
		t.Fatal("missing save offer")
	}

	f.say(t, "💾 Зберегти як шаблон")
	if f.session().State != session.StateSaveName {
		t.Fatalf("state = %s", f.session().State)
	}

	msg := f.say(t, "   ")
	if !strings.Contains(msg.Text, "Назва не може бути порожною") {
		t.Fatalf("empty name = %q", msg.Text)
	}

	msg = f.say(t, "Вода у Вінницю")
	if !strings.Contains(msg.Text, "✅ Шаблон 'Вода у Вінницю' збережено!") {
		t.Fatalf("save message = %q", msg.Text)
	}
	if len(f.templates.items) != 1 {
		t.Fatalf("templates stored = %d", len(f.templates.items))
	}
	snap := f.templates.items[0].data
	if snap["department"] != "Виробництво" || snap["thread_id"] != "4" {
		t.Fatalf("snapshot routing = %v", snap)
	}
	if f.session().State != session.StateIdle {
		t.Fatalf("state = %s", f.session().State)
	}
}

func TestContactsRememberedOnDispatch(t *testing.T) {
	f := newFixture()
	s := f.session()
	s.State = session.StateConfirm
	s.Cursor = catalog.Len()
	s.Form.Department = "Тваринництво"
	s.Form.ThreadID = 2
	s.Form.LoadContact = "Петренко, 067"
	s.Form.UnloadContact = "—"

	f.say(t, "ТАК")
	if len(f.contacts.calls) != 1 {
		t.Fatalf("contact calls = %d", len(f.contacts.calls))
	}
	got := f.contacts.calls[0]
	if len(got) != 1 || got[0].Type != "load" || got[0].Value != "Петренко, 067" {
		t.Fatalf("contacts = %+v", got)
	}
}

func TestDispatchUnconfiguredTarget(t *testing.T) {
	f := newFixture()
	f.publisher.configured = false
	completeQuickForm(t, f)

	msg := f.say(t, "📤 Надіслати")
	if !strings.Contains(msg.Text, "Не задано TARGET_CHAT_ID") {
		t.Fatalf("message = %q", msg.Text)
	}
	if len(f.publisher.sent) != 0 {
		t.Fatal("unconfigured publisher must not receive anything")
	}
	if len(f.contacts.calls) != 0 {
		t.Fatal("contacts must not be stored")
	}
	if f.session().State != session.StateIdle {
		t.Fatalf("state = %s, want reset", f.session().State)
	}
}

func TestDispatchFailureKeepsConfirm(t *testing.T) {
	f := newFixture()
	f.publisher.fail = true
	completeQuickForm(t, f)

	msg := f.say(t, "📤 Надіслати")
	if !strings.Contains(msg.Text, "⚠️ Не вдалося надіслати заявку") {
		t.Fatalf("message = %q", msg.Text)
	}
	if f.session().State != session.StateConfirm {
		t.Fatalf("state = %s, want confirm for retry", f.session().State)
	}

	f.publisher.fail = false
	f.say(t, "📤 Надіслати")
	if len(f.publisher.sent) != 1 {
		t.Fatal("retry did not dispatch")
	}
}

func TestRestartFromConfirm(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)
	f.say(t, "✏️ Додати деталі")
	f.say(t, "⬅️ Назад до підтвердження")

	msg := f.say(t, "Почати спочатку")
	if msg.Text != "Запит від:" {
		t.Fatalf("restart landed on %q", msg.Text)
	}
	s := f.session()
	if s.State != session.StateDepartment {
		t.Fatalf("state = %s", s.State)
	}
	if s.Form.Volume != "" {
		t.Fatal("restart must clear collected answers")
	}
}

func TestMenuHidesTemplateButtonsWhenEmpty(t *testing.T) {
	f := newFixture()
	msg := f.start(t)
	if msg.KB == nil || len(msg.KB.ReplyKeyboard) != 2 {
		t.Fatalf("menu rows = %+v", msg.KB)
	}

	_ = f.templates.Save(context.Background(), testUser, "Х", form.Snapshot{})
	f.session().Reset()
	msg = f.start(t)
	if len(msg.KB.ReplyKeyboard) != 4 {
		t.Fatalf("menu rows with templates = %d", len(msg.KB.ReplyKeyboard))
	}
}

func TestTemplateLoadRoutedJumpsToConfirm(t *testing.T) {
	f := newFixture()
	_ = f.templates.Save(context.Background(), testUser, "Зерно у Гайсин", form.Snapshot{
		"department":     "Виробництво",
		"thread_id":      "4",
		"vehicle_type":   "Зерновоз",
		"cargo_type":     "Зерно: Пшениця",
		"size_type":      "Габарит",
		"volume":         "22 т",
		"notes":          "—",
		"date_period":    "01.06.2024",
		"load_city":      "Вінниця",
		"load_place":     "—",
		"load_method":    "—",
		"load_contact":   "—",
		"unload_city":    "Гайсин",
		"unload_place":   "—",
		"unload_method":  "—",
		"unload_contact": "—",
	})

	f.start(t)
	f.say(t, "📋 Завантажити шаблон")
	msg := f.say(t, "Зерно у Гайсин")
	if !f.replier.contains("📋 Завантажено шаблон 'Зерно у Гайсин'\n✅ Запит від: Виробництво") {
		t.Fatal("missing load announcement")
	}
	if !strings.Contains(msg.Text, "Перевірте заявку:") {
		t.Fatalf("confirm not shown: %q", msg.Text)
	}
	if f.session().Form.ThreadID != 4 {
		t.Fatalf("thread = %d", f.session().Form.ThreadID)
	}
}

func TestTemplateLoadUnroutedAsksDepartment(t *testing.T) {
	f := newFixture()
	_ = f.templates.Save(context.Background(), testUser, "Без відділу", form.Snapshot{
		"vehicle_type": "ТРАЛ",
	})

	f.start(t)
	f.say(t, "📋 Завантажити шаблон")
	msg := f.say(t, "Без відділу")
	if !strings.Contains(msg.Text, "Запит від:") {
		t.Fatalf("department not asked: %q", msg.Text)
	}
	if !f.session().TemplateLoaded {
		t.Fatal("template-loaded flag not set")
	}

	msg = f.say(t, "Тваринництво")
	if !f.replier.contains("Форма заповнена з шаблону.") {
		t.Fatal("missing template fill notice")
	}
	if !strings.Contains(msg.Text, "Перевірте заявку:") {
		t.Fatalf("confirm not shown: %q", msg.Text)
	}
	if f.session().Form.VehicleType != "ТРАЛ" {
		t.Fatalf("vehicle = %q", f.session().Form.VehicleType)
	}
}

func TestTemplateDelete(t *testing.T) {
	f := newFixture()
	_ = f.templates.Save(context.Background(), testUser, "Старий", form.Snapshot{})

	f.start(t)
	msg := f.say(t, "🗑️ Видалити шаблон")
	if msg.Text != "Оберіть шаблон для видалення:" {
		t.Fatalf("delete prompt = %q", msg.Text)
	}

	msg = f.say(t, "Старий")
	if msg.Text != "Видалити шаблон 'Старий'?" {
		t.Fatalf("confirm prompt = %q", msg.Text)
	}

	msg = f.say(t, "може")
	if msg.Text != "Оберіть: ✅ Так або ❌ Ні." {
		t.Fatalf("re-prompt = %q", msg.Text)
	}

	f.say(t, "✅ Так")
	if !f.replier.contains("✅ Шаблон 'Старий' видалено.") {
		t.Fatal("missing delete notice")
	}
	if len(f.templates.items) != 0 {
		t.Fatalf("templates left = %d", len(f.templates.items))
	}
	if f.replier.last(t).Text != "Що робитимемо?" {
		t.Fatalf("menu not shown: %q", f.replier.last(t).Text)
	}
}

func TestTemplateDeleteCancelled(t *testing.T) {
	f := newFixture()
	_ = f.templates.Save(context.Background(), testUser, "Старий", form.Snapshot{})

	f.start(t)
	f.say(t, "🗑️ Видалити шаблон")
	f.say(t, "Старий")
	f.say(t, "❌ Ні")
	if !f.replier.contains("❎ Видалення скасовано.") {
		t.Fatal("missing cancel notice")
	}
	if len(f.templates.items) != 1 {
		t.Fatal("template must survive cancelled deletion")
	}
	if f.session().DeleteMode {
		t.Fatal("delete mode not cleared")
	}
}

func TestManualCityEntry(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "⚡ Швидка заявка")
	f.say(t, "Виробництво")
	f.say(t, "Зерновоз")
	f.say(t, "Іваненко І.І.")
	f.say(t, "АМ вода")
	f.say(t, "25 т")
	f.say(t, "📅 Разове перевезення")
	f.say(t, "15.06.2024")

	f.searcher.results = []settlements.Settlement{{Display: "смт Літин (Вінницька)", Value: "смт Літин"}}
	f.say(t, "Літин")
	msg := f.say(t, "✍️ Ввести вручну")
	if msg.Text != "Введіть назву населеного пункту вручну:" {
		t.Fatalf("manual prompt = %q", msg.Text)
	}
	if f.session().State != session.StateCitySearch {
		t.Fatalf("state = %s", f.session().State)
	}

	// The next message is another search; picking an unlisted value keeps it
	// verbatim.
	f.say(t, "Літин")
	f.say(t, "с. Малий Літинець")
	if f.session().Form.LoadCity != "с. Малий Літинець" {
		t.Fatalf("city = %q", f.session().Form.LoadCity)
	}
}

func TestCustomOptionInput(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")

	msg := f.say(t, "Інше")
	if msg.Text != "Введіть тип авто:" {
		t.Fatalf("other prompt = %q", msg.Text)
	}
	f.say(t, "Маніпулятор")
	if got := f.session().Form.VehicleType; got != "Інше: Маніпулятор" {
		t.Fatalf("vehicle = %q", got)
	}
	if !f.replier.contains("Тип авто: Інше: ✅ Маніпулятор") {
		t.Fatal("missing other echo")
	}
}

func TestCustomFreeTextInput(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")

	msg := f.say(t, "Ввести своє")
	if msg.Text != "Введіть своє значення:" {
		t.Fatalf("custom prompt = %q", msg.Text)
	}
	f.say(t, "Рефрижератор")
	if got := f.session().Form.VehicleType; got != "Рефрижератор" {
		t.Fatalf("vehicle = %q", got)
	}
}

func TestMentionFallsBackToFullName(t *testing.T) {
	ev := Event{Username: "vasyl", FullName: "Василь Петренко"}
	if ev.Mention() != "@vasyl" {
		t.Fatalf("mention = %q", ev.Mention())
	}
	ev.Username = ""
	if ev.Mention() != "Василь Петренко" {
		t.Fatalf("mention = %q", ev.Mention())
	}
}

func TestProgressCounterSkipsNothingInFullMode(t *testing.T) {
	f := newFixture()
	f.start(t)
	f.say(t, "📝 Нова заявка")
	f.say(t, "Тваринництво")
	for i, answer := range []string{"Зерновоз", "Іваненко І.І.", "Зернопродукт"} {
		want := fmt.Sprintf("(%d/16)", i+1)
		if !strings.Contains(f.replier.last(t).Text, want) {
			t.Fatalf("step %d: progress %q missing in %q", i, want, f.replier.last(t).Text)
		}
		f.say(t, answer)
	}
}

func TestTruncateEditLabels(t *testing.T) {
	f := newFixture()
	completeQuickForm(t, f)
	f.session().Form.Volume = strings.Repeat("а", 30)
	f.say(t, "✏️ Додати деталі")

	msg := f.replier.last(t)
	want := "Обсяг: " + strings.Repeat("а", 20) + "..."
	var found bool
	if msg.KB != nil {
		for _, row := range msg.KB.ReplyKeyboard {
			for _, btn := range row {
				if btn.Text == want {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatalf("truncated label %q not on keyboard", want)
	}
}
