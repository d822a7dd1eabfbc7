package composer

import (
	"testing"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/models"
)

func testActivity(priority int, retail, net int64) models.Activity {
	return models.Activity{
		ID:               uuid.New(),
		DayID:            uuid.New(),
		CatalogItemID:    uuid.New(),
		Name:             "Snorkeling tour",
		Category:         models.ItemCategoryActivity,
		RetailPriceCents: retail,
		NetPriceCents:    net,
		Priority:         priority,
	}
}

// TestReconcileIdentical проверяет, что сверка списка с самим собой пуста.
func TestReconcileIdentical(t *testing.T) {
	list := []models.Activity{
		testActivity(1, 10000, 6000),
		testActivity(2, 5000, 2000),
	}

	result := Reconcile(list, list)

	if !result.IsEmpty() {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.RetailDeltaCents != 0 || result.NetDeltaCents != 0 {
		t.Fatalf("expected zero deltas, got (%d, %d)", result.RetailDeltaCents, result.NetDeltaCents)
	}
	if len(result.ToPersist()) != 0 {
		t.Fatalf("expected nothing to persist, got %d", len(result.ToPersist()))
	}
}

// TestReconcileDelta проверяет, что дельта цен равна разности сумм снимков.
func TestReconcileDelta(t *testing.T) {
	kept := testActivity(1, 10000, 6000)
	removed := testActivity(2, 5000, 2000)

	changed := kept
	changed.RetailPriceCents = 12000
	changed.NetPriceCents = 7000

	added := testActivity(2, 3000, 1500)

	previous := []models.Activity{kept, removed}
	next := []models.Activity{changed, added}

	result := Reconcile(previous, next)

	var sumPrevRetail, sumPrevNet, sumNextRetail, sumNextNet int64
	for _, a := range previous {
		sumPrevRetail += a.RetailPriceCents
		sumPrevNet += a.NetPriceCents
	}
	for _, a := range next {
		sumNextRetail += a.RetailPriceCents
		sumNextNet += a.NetPriceCents
	}

	if result.RetailDeltaCents != sumNextRetail-sumPrevRetail {
		t.Fatalf("expected retail delta %d, got %d", sumNextRetail-sumPrevRetail, result.RetailDeltaCents)
	}
	if result.NetDeltaCents != sumNextNet-sumPrevNet {
		t.Fatalf("expected net delta %d, got %d", sumNextNet-sumPrevNet, result.NetDeltaCents)
	}

	if len(result.Added) != 1 || len(result.Removed) != 1 || len(result.Changed) != 1 {
		t.Fatalf("unexpected classification: added=%d removed=%d changed=%d",
			len(result.Added), len(result.Removed), len(result.Changed))
	}
}

// TestReconcileEmptyNext проверяет, что пустой новый снимок дает только удаления.
func TestReconcileEmptyNext(t *testing.T) {
	previous := []models.Activity{
		testActivity(1, 10000, 6000),
		testActivity(2, 5000, 2000),
	}

	result := Reconcile(previous, nil)

	if len(result.Removed) != 2 || len(result.Added) != 0 || len(result.Changed) != 0 {
		t.Fatalf("expected only removals, got %+v", result)
	}
	if result.RetailDeltaCents != -15000 || result.NetDeltaCents != -8000 {
		t.Fatalf("unexpected deltas (%d, %d)", result.RetailDeltaCents, result.NetDeltaCents)
	}
	if len(result.ToPersist()) != 0 {
		t.Fatal("removals must not produce persist entries")
	}
}

// TestReconcileCosmeticChange проверяет, что правка без влияния на цену и
// приоритет классифицируется как изменение, но повторно не сохраняется.
func TestReconcileCosmeticChange(t *testing.T) {
	original := testActivity(1, 10000, 6000)

	renamed := original
	renamed.Name = "Snorkeling tour (small group)"
	renamed.Description = "Updated description"

	result := Reconcile([]models.Activity{original}, []models.Activity{renamed})

	if len(result.Changed) != 1 {
		t.Fatalf("expected one changed entry, got %d", len(result.Changed))
	}
	if result.RetailDeltaCents != 0 || result.NetDeltaCents != 0 {
		t.Fatalf("expected zero deltas, got (%d, %d)", result.RetailDeltaCents, result.NetDeltaCents)
	}
	if len(result.ToPersist()) != 0 {
		t.Fatal("cosmetic change must not be re-persisted")
	}
}

// TestReconcileReorder проверяет сверку после перестановки [A, B, C] -> [C, A, B].
func TestReconcileReorder(t *testing.T) {
	a := testActivity(1, 10000, 6000)
	b := testActivity(2, 5000, 2000)
	c := testActivity(3, 2000, 1000)

	previous := []models.Activity{a, b, c}
	next := AssignPriorities([]models.Activity{c, a, b})

	result := Reconcile(previous, next)

	if len(result.Added) != 0 || len(result.Removed) != 0 {
		t.Fatalf("reorder must not add or remove, got %+v", result)
	}
	if len(result.Changed) != 3 {
		t.Fatalf("expected all three changed, got %d", len(result.Changed))
	}
	if result.RetailDeltaCents != 0 || result.NetDeltaCents != 0 {
		t.Fatalf("expected zero deltas, got (%d, %d)", result.RetailDeltaCents, result.NetDeltaCents)
	}

	toPersist := result.ToPersist()
	if len(toPersist) != 3 {
		t.Fatalf("expected three priority saves, got %d", len(toPersist))
	}
}

// TestReconcilePartialReorder проверяет, что сохраняются только активности
// со сдвинувшимся приоритетом.
func TestReconcilePartialReorder(t *testing.T) {
	a := testActivity(1, 10000, 6000)
	b := testActivity(2, 5000, 2000)
	c := testActivity(3, 2000, 1000)

	next := AssignPriorities([]models.Activity{a, c, b})

	result := Reconcile([]models.Activity{a, b, c}, next)

	toPersist := result.ToPersist()
	if len(toPersist) != 2 {
		t.Fatalf("expected two priority saves, got %d", len(toPersist))
	}
	for _, activity := range toPersist {
		if activity.ID == a.ID {
			t.Fatal("activity with unchanged priority must not be persisted")
		}
	}
}
