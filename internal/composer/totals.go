package composer

import "sync"

// Totals ведет текущие retail/net итоги маршрута. Значения один раз
// засеиваются из хранилища при загрузке и дальше меняются только знаковыми
// дельтами; пересчета суммированием по всем активностям в сессии нет.
type Totals struct {
	mu          sync.Mutex
	retailCents int64
	netCents    int64
}

// NewTotals создает аккумулятор итогов с нулевыми значениями.
func NewTotals() *Totals {
	return &Totals{}
}

// Seed устанавливает стартовые итоги, полученные из хранилища.
func (t *Totals) Seed(retailCents, netCents int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.retailCents = retailCents
	t.netCents = netCents
}

// ApplyDelta прибавляет знаковые дельты к текущим итогам.
func (t *Totals) ApplyDelta(retailCents, netCents int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.retailCents += retailCents
	t.netCents += netCents
}

// Snapshot возвращает текущие retail/net итоги.
func (t *Totals) Snapshot() (retailCents, netCents int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.retailCents, t.netCents
}
