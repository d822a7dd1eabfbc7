package composer

import "testing"

// TestTotalsScenario проверяет эволюцию итогов дельтами: добавление двух
// активностей и удаление первой.
func TestTotalsScenario(t *testing.T) {
	totals := NewTotals()
	totals.Seed(0, 0)

	totals.ApplyDelta(10000, 6000)
	if retail, net := totals.Snapshot(); retail != 10000 || net != 6000 {
		t.Fatalf("expected (10000, 6000), got (%d, %d)", retail, net)
	}

	totals.ApplyDelta(5000, 2000)
	if retail, net := totals.Snapshot(); retail != 15000 || net != 8000 {
		t.Fatalf("expected (15000, 8000), got (%d, %d)", retail, net)
	}

	totals.ApplyDelta(-10000, -6000)
	if retail, net := totals.Snapshot(); retail != 5000 || net != 2000 {
		t.Fatalf("expected (5000, 2000), got (%d, %d)", retail, net)
	}
}

// TestTotalsSeed проверяет засев итогов значениями из хранилища.
func TestTotalsSeed(t *testing.T) {
	totals := NewTotals()
	totals.Seed(123400, 98700)

	if retail, net := totals.Snapshot(); retail != 123400 || net != 98700 {
		t.Fatalf("expected seeded totals, got (%d, %d)", retail, net)
	}
}
