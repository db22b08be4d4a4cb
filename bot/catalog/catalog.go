// Package catalog defines the fixed, ordered questionnaire for a transport
// request and the pure skip policy applied while walking it.
package catalog

import "strings"

// Key identifies a single question slot in the form.
type Key string

const (
	KeyVehicleType   Key = "vehicle_type"
	KeyInitiator     Key = "initiator"
	KeyCompany       Key = "company"
	KeyCargoType     Key = "cargo_type"
	KeySizeType      Key = "size_type"
	KeyVolume        Key = "volume"
	KeyNotes         Key = "notes"
	KeyDatePeriod    Key = "date_period"
	KeyLoadCity      Key = "load_city"
	KeyLoadPlace     Key = "load_place"
	KeyLoadMethod    Key = "load_method"
	KeyLoadContact   Key = "load_contact"
	KeyUnloadCity    Key = "unload_city"
	KeyUnloadPlace   Key = "unload_place"
	KeyUnloadMethod  Key = "unload_method"
	KeyUnloadContact Key = "unload_contact"
)

// Question describes a single catalog entry. Options == nil means free text.
type Question struct {
	Key           Key
	Label         string
	Prompt        string
	Options       []string
	UseCitySearch bool
}

// Placeholder marks answers that were skipped or intentionally left blank.
const Placeholder = "—"

// BulkUnloadMethod is written instead of Placeholder when the bulk size type
// makes the unload-method question redundant.
const BulkUnloadMethod = "Самоскид"

// CropTypes is the fixed crop picker shown for grain/seed cargo.
var CropTypes = []string{"Кукурудза", "Пшениця", "Соя", "Ріпак", "Соняшник"}

// CropCategories are cargo answers that trigger the crop refinement picker.
var CropCategories = []string{"Зерно", "Насіння"}

var questions = []Question{
	{
		Key:     KeyVehicleType,
		Label:   "Тип авто",
		Prompt:  "Тип авто:",
		Options: []string{"ТРАЛ", "Зерновоз", "Самоскид", "Цистерна", "Тент", "Інше"},
	},
	{
		Key:    KeyInitiator,
		Label:  "Ініціатор заявки (ПІБ)",
		Prompt: "Ініціатор заявки (ПІБ):",
	},
	{
		Key:     KeyCompany,
		Label:   "Підприємство",
		Prompt:  "Підприємство:",
		Options: []string{"Зернопродукт", "Агрокряж", "Інше"},
	},
	{
		Key:     KeyCargoType,
		Label:   "Вид вантажу",
		Prompt:  "Вид вантажу:",
		Options: []string{"Зерно", "Насіння", "АМ вода", "КАС", "РКД", "Інше"},
	},
	{
		Key:     KeySizeType,
		Label:   "Габарит / негабарит",
		Prompt:  "Габарит / негабарит:",
		Options: []string{"Габарит", "Негабарит", "Насип", "Рідкі"},
	},
	{
		Key:    KeyVolume,
		Label:  "Обсяг",
		Prompt: "Обсяг (наприклад: 22 т або 10 біг-бегів):",
	},
	{
		Key:     KeyNotes,
		Label:   "Примітки",
		Prompt:  "Примітки (можна пропустити):",
		Options: []string{"Пропустити"},
	},
	{
		Key:    KeyDatePeriod,
		Label:  "Дата / період перевезення",
		Prompt: "Дата / період перевезення:",
	},
	{
		Key:           KeyLoadCity,
		Label:         "Населений пункт завантаження",
		Prompt:        "Населений пункт завантаження:",
		UseCitySearch: true,
	},
	{
		Key:     KeyLoadPlace,
		Label:   "Склад завантаження (якщо відомо)",
		Prompt:  "Склад завантаження (якщо відомо):",
		Options: []string{"Пропустити"},
	},
	{
		Key:     KeyLoadMethod,
		Label:   "Спосіб завантаження",
		Prompt:  "Спосіб завантаження:",
		Options: []string{"Пропустити"},
	},
	{
		Key:     KeyLoadContact,
		Label:   "Контакт на завантаженні (ПІБ, телефон)",
		Prompt:  "Контакт на завантаженні (ПІБ, телефон):",
		Options: []string{"Пропустити"},
	},
	{
		Key:           KeyUnloadCity,
		Label:         "Населений пункт розвантаження",
		Prompt:        "Населений пункт розвантаження:",
		UseCitySearch: true,
	},
	{
		Key:     KeyUnloadPlace,
		Label:   "Склад розвантаження (якщо відомо)",
		Prompt:  "Склад розвантаження (якщо відомо):",
		Options: []string{"Пропустити"},
	},
	{
		Key:    KeyUnloadMethod,
		Label:  "Спосіб розвантаження",
		Prompt: "Спосіб розвантаження:",
	},
	{
		Key:    KeyUnloadContact,
		Label:  "Контакт на розвантаженні (ПІБ, телефон)",
		Prompt: "Контакт на розвантаженні (ПІБ, телефон):",
	},
}

// Questions returns the catalog in presentation order.
func Questions() []Question {
	return questions
}

// Len reports the number of catalog questions.
func Len() int {
	return len(questions)
}

// At returns the question at the given cursor position.
func At(i int) Question {
	return questions[i]
}

// Index returns the cursor position for a key, or -1 when unknown.
func Index(key Key) int {
	for i, q := range questions {
		if q.Key == key {
			return i
		}
	}
	return -1
}

// ByLabelPrefix resolves an edit-menu button back to its cursor position.
// Buttons are rendered as "<label>: <value>", so prefix match is enough.
func ByLabelPrefix(text string) (int, bool) {
	for i, q := range questions {
		if strings.HasPrefix(text, q.Label) {
			return i, true
		}
	}
	return -1, false
}

// IsCropCategory reports whether a cargo answer routes to the crop picker.
func IsCropCategory(text string) bool {
	for _, c := range CropCategories {
		if strings.EqualFold(text, c) {
			return true
		}
	}
	return false
}
