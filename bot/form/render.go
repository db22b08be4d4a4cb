package form

import (
	"fmt"
	"time"

	"github.com/agrohub/transportbot/bot/catalog"
)

// Render produces the final request text. Unanswered fields show the
// placeholder so the layout stays fixed regardless of how much was filled.
func Render(f *Form, now time.Time) string {
	val := func(v string) string {
		if v == "" {
			return catalog.Placeholder
		}
		return v
	}
	return fmt.Sprintf(
		"Дата: %s\n"+
			"Час: %s\n\n"+
			"ЗАЯВКА НА ПЕРЕВЕЗЕННЯ\n\n"+
			"Запит від: %s\n\n"+
			"Вимоги до авто:\n"+
			"Тип авто: %s\n\n"+
			"Ініціатор заявки:\n"+
			"ПІБ: %s\n\n"+
			"Параметри перевезення:\n"+
			"Підприємство: %s\n"+
			"Вид вантажу: %s\n"+
			"Габарит / негабарит: %s\n"+
			"Обсяг: %s\n"+
			"Примітки: %s\n\n"+
			"Маршрут:\n"+
			"Дата / період перевезення: %s\n\n"+
			"Населений пункт завантаження: %s\n"+
			"Склад завантаження: %s\n"+
			"Спосіб завантаження: %s\n"+
			"Контакт на завантаженні: %s\n\n"+
			"Населений пункт розвантаження: %s\n"+
			"Склад розвантаження: %s\n"+
			"Спосіб розвантаження: %s\n"+
			"Контакт на розвантаженні: %s",
		now.Format("02.01.2006"),
		now.Format("15:04"),
		val(f.Department),
		val(f.VehicleType),
		val(f.Initiator),
		val(f.Company),
		val(f.CargoType),
		val(f.SizeType),
		val(f.Volume),
		val(f.Notes),
		val(f.DatePeriod),
		val(f.LoadCity),
		val(f.LoadPlace),
		val(f.LoadMethod),
		val(f.LoadContact),
		val(f.UnloadCity),
		val(f.UnloadPlace),
		val(f.UnloadMethod),
		val(f.UnloadContact),
	)
}
