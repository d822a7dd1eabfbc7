package composer

import "example.com/trip-composer/backend/internal/models"

// AssignPriorities переводит новый визуальный порядок активностей в плотную
// последовательность приоритетов 1..N. Вход не мутируется; результат подается
// в Reconcile как новый снимок, так что сохраняются только те записи, чей
// приоритет действительно сдвинулся.
func AssignPriorities(ordered []models.Activity) []models.Activity {
	out := make([]models.Activity, len(ordered))
	copy(out, ordered)

	for i := range out {
		out[i].Priority = i + 1
	}

	return out
}
