package flow

// Reply keyboard labels. The literals double as match targets in handlers,
// so they must stay byte-identical between keyboard and comparison.
const (
	btnBack          = "⬅️ Назад"
	btnBackToConfirm = "⬅️ Назад до підтвердження"
	btnCustom        = "Ввести своє"
	btnOther         = "Інше"
	btnSkipOption    = "Пропустити"

	btnNewRequest   = "📝 Нова заявка"
	btnQuickRequest = "⚡ Швидка заявка"
	btnLoadTemplate = "📋 Завантажити шаблон"
	btnDropTemplate = "🗑️ Видалити шаблон"
	btnMakeRequest  = "📝 Зробити заявку"

	btnResume  = "Продовжити"
	btnRestart = "Почати спочатку"

	btnSingleTrip = "📅 Разове перевезення"
	btnPeriodTrip = "📆 Період перевезення"

	btnManualCity = "✍️ Ввести вручну"

	btnConfirmYes = "ТАК"
	btnEditFields = "✏️ Редагувати поля"
	btnQuickSend  = "📤 Надіслати"
	btnAddDetails = "✏️ Додати деталі"

	btnSaveTemplate = "💾 Зберегти як шаблон"

	btnYes = "✅ Так"
	btnNo  = "❌ Ні"
)
