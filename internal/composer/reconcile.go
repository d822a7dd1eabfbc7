package composer

import (
	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/models"
)

// Change описывает активность, присутствующую в обоих снимках, но с
// отличающимися полями.
type Change struct {
	Previous models.Activity
	Next     models.Activity
}

// Result — итог сверки двух снимков списка активностей одного дня.
// Дельты цен уже агрегированы по всем добавлениям, удалениям и изменениям
// и применяются к итогам одним вызовом, а не по одной активности.
type Result struct {
	Added   []models.Activity
	Removed []models.Activity
	Changed []Change

	RetailDeltaCents int64
	NetDeltaCents    int64
}

// IsEmpty сообщает, что сверка не нашла никаких расхождений.
func (r Result) IsEmpty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// ToPersist возвращает измененные активности, которые нужно сохранить:
// только те, у которых сдвинулся приоритет или цена. Чисто косметические
// правки уже сохранены модальным редактором и повторно не пишутся.
func (r Result) ToPersist() []models.Activity {
	out := make([]models.Activity, 0, len(r.Changed))
	for _, change := range r.Changed {
		if change.Next.Priority != change.Previous.Priority ||
			change.Next.RetailPriceCents != change.Previous.RetailPriceCents ||
			change.Next.NetPriceCents != change.Previous.NetPriceCents {
			out = append(out, change.Next)
		}
	}

	return out
}

// Reconcile сверяет прежний и новый снимки списка активностей: классифицирует
// каждую запись как добавленную, удаленную или измененную и считает общую
// дельту retail/net цен. Идентичные снимки дают пустой результат.
func Reconcile(previous, next []models.Activity) Result {
	result := Result{}

	prevByID := make(map[uuid.UUID]models.Activity, len(previous))
	for _, activity := range previous {
		prevByID[activity.ID] = activity
	}

	nextByID := make(map[uuid.UUID]models.Activity, len(next))
	for _, activity := range next {
		nextByID[activity.ID] = activity
	}

	for _, activity := range next {
		prev, ok := prevByID[activity.ID]
		if !ok {
			result.Added = append(result.Added, activity)
			result.RetailDeltaCents += activity.RetailPriceCents
			result.NetDeltaCents += activity.NetPriceCents
			continue
		}

		if !activityEqual(prev, activity) {
			result.Changed = append(result.Changed, Change{Previous: prev, Next: activity})
			result.RetailDeltaCents += activity.RetailPriceCents - prev.RetailPriceCents
			result.NetDeltaCents += activity.NetPriceCents - prev.NetPriceCents
		}
	}

	for _, activity := range previous {
		if _, ok := nextByID[activity.ID]; !ok {
			result.Removed = append(result.Removed, activity)
			result.RetailDeltaCents -= activity.RetailPriceCents
			result.NetDeltaCents -= activity.NetPriceCents
		}
	}

	return result
}

// activityEqual сравнивает активности по полям, а не по сериализованному
// представлению, чтобы порядок ключей не давал ложных расхождений.
// Служебные таймстемпы в сравнении не участвуют.
func activityEqual(a, b models.Activity) bool {
	return a.ID == b.ID &&
		a.DayID == b.DayID &&
		a.CatalogItemID == b.CatalogItemID &&
		a.Name == b.Name &&
		a.Description == b.Description &&
		a.Category == b.Category &&
		a.RetailPriceCents == b.RetailPriceCents &&
		a.NetPriceCents == b.NetPriceCents &&
		stringPtrEqual(a.SupplierName, b.SupplierName) &&
		stringPtrEqual(a.SupplierRef, b.SupplierRef) &&
		a.Priority == b.Priority
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
