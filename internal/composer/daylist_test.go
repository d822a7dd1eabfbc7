package composer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/models"
)

type fakeStore struct {
	mu sync.Mutex

	createDayErr      error
	deleteDayErr      error
	deleteActivityErr error

	itemRetailCents int64
	itemNetCents    int64

	createDayCalls      int
	updateDayCalls      int
	deleteDayCalls      int
	updateActivityCalls int
	fetchActivityCalls  int

	updatedActivities []models.Activity
	dayActivities     map[uuid.UUID][]models.Activity
}

func newFakeStore() *fakeStore {
	return &fakeStore{dayActivities: make(map[uuid.UUID][]models.Activity)}
}

func (f *fakeStore) CreateDay(_ context.Context, itineraryID uuid.UUID, draft DayDraft) (models.ScheduledDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createDayCalls++
	if f.createDayErr != nil {
		return models.ScheduledDay{}, f.createDayErr
	}

	return models.ScheduledDay{
		ID:          uuid.New(),
		ItineraryID: itineraryID,
		Name:        draft.Name,
		Location:    draft.Location,
		Date:        draft.Date,
	}, nil
}

func (f *fakeStore) UpdateDay(_ context.Context, _ models.ScheduledDay) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateDayCalls++
	return nil
}

func (f *fakeStore) DeleteDay(_ context.Context, _, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteDayCalls++
	return f.deleteDayErr
}

func (f *fakeStore) CreateActivity(_ context.Context, dayID, itemID uuid.UUID, priority int) (models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return models.Activity{
		ID:               uuid.New(),
		DayID:            dayID,
		CatalogItemID:    itemID,
		Name:             "Copied item",
		Category:         models.ItemCategoryActivity,
		RetailPriceCents: f.itemRetailCents,
		NetPriceCents:    f.itemNetCents,
		Priority:         priority,
	}, nil
}

func (f *fakeStore) UpdateActivity(_ context.Context, activity models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateActivityCalls++
	f.updatedActivities = append(f.updatedActivities, activity)
	return nil
}

func (f *fakeStore) DeleteActivity(_ context.Context, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.deleteActivityErr
}

func (f *fakeStore) UpdateItineraryHeader(_ context.Context, _ uuid.UUID, _ ItineraryHeader) error {
	return nil
}

func (f *fakeStore) FetchItinerary(_ context.Context, itineraryID uuid.UUID) (models.Itinerary, error) {
	return models.Itinerary{ID: itineraryID}, nil
}

func (f *fakeStore) FetchDayActivities(_ context.Context, dayID uuid.UUID) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetchActivityCalls++
	return f.dayActivities[dayID], nil
}

func testItinerary(days ...models.ScheduledDay) models.Itinerary {
	return models.Itinerary{
		ID:    uuid.New(),
		Title: "Peru adventure",
		Days:  days,
	}
}

func testDay(date string) models.ScheduledDay {
	parsed, _ := time.Parse("2006-01-02", date)
	return models.ScheduledDay{ID: uuid.New(), Name: "Day", Location: "Lima", Date: parsed}
}

// TestAppendDayDefaultDate проверяет, что день без явной даты датируется
// сутками позже последнего существующего.
func TestAppendDayDefaultDate(t *testing.T) {
	store := newFakeStore()
	list := NewDayList(store, NewTotals(), nil, time.Hour, testItinerary(testDay("2025-01-01")))

	day, err := list.AppendDay(context.Background(), DayDraft{Name: "Cusco"})
	if err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}

	if got := day.Date.Format("2006-01-02"); got != "2025-01-02" {
		t.Fatalf("expected date 2025-01-02, got %s", got)
	}
	if day.ID == uuid.Nil {
		t.Fatal("expected store-assigned identity")
	}

	days := list.Days()
	if len(days) != 2 {
		t.Fatalf("expected two days, got %d", len(days))
	}
	if days[1].State != models.DayStatePersisted {
		t.Fatalf("expected persisted state, got %s", days[1].State)
	}
	if days[1].Day.ID != day.ID {
		t.Fatal("expected identity replaced in place, preserving position")
	}
}

// TestAppendDayFailure проверяет, что при ошибке create-вызова запись
// остается в списке в состоянии failed и закрыта для правок.
func TestAppendDayFailure(t *testing.T) {
	store := newFakeStore()
	store.createDayErr = errors.New("store unavailable")
	list := NewDayList(store, NewTotals(), nil, time.Hour, testItinerary(testDay("2025-01-01")))

	if _, err := list.AppendDay(context.Background(), DayDraft{Name: "Cusco"}); err == nil {
		t.Fatal("expected append to fail")
	}

	days := list.Days()
	if len(days) != 2 {
		t.Fatalf("expected failed day kept in list, got %d days", len(days))
	}
	if days[1].State != models.DayStateFailed {
		t.Fatalf("expected failed state, got %s", days[1].State)
	}
}

// TestRemoveDayFailureKeepsList проверяет, что при ошибке delete-вызова
// список и итоги не меняются.
func TestRemoveDayFailureKeepsList(t *testing.T) {
	store := newFakeStore()
	day := testDay("2025-01-01")
	store.dayActivities[day.ID] = []models.Activity{testActivity(1, 10000, 6000)}
	store.deleteDayErr = errors.New("store unavailable")

	itinerary := testItinerary(day)
	itinerary.RetailTotalCents = 10000
	itinerary.NetTotalCents = 6000

	totals := NewTotals()
	list := NewDayList(store, totals, nil, time.Hour, itinerary)

	if err := list.RemoveDay(context.Background(), day.ID); err == nil {
		t.Fatal("expected remove to fail")
	}

	if len(list.Days()) != 1 {
		t.Fatal("day must not be removed optimistically")
	}
	if retail, net := totals.Snapshot(); retail != 10000 || net != 6000 {
		t.Fatalf("totals must be unchanged, got (%d, %d)", retail, net)
	}
}

// TestRemoveDayReversesTotals проверяет, что удаление дня возвращает вклад
// его активностей в итоги.
func TestRemoveDayReversesTotals(t *testing.T) {
	store := newFakeStore()
	day := testDay("2025-01-01")
	store.dayActivities[day.ID] = []models.Activity{
		testActivity(1, 10000, 6000),
		testActivity(2, 5000, 2000),
	}

	itinerary := testItinerary(day, testDay("2025-01-02"))
	itinerary.RetailTotalCents = 15000
	itinerary.NetTotalCents = 8000

	totals := NewTotals()
	list := NewDayList(store, totals, nil, time.Hour, itinerary)

	if err := list.RemoveDay(context.Background(), day.ID); err != nil {
		t.Fatalf("expected remove to succeed, got %v", err)
	}

	if len(list.Days()) != 1 {
		t.Fatalf("expected one remaining day, got %d", len(list.Days()))
	}
	if retail, net := totals.Snapshot(); retail != 0 || net != 0 {
		t.Fatalf("expected totals (0, 0), got (%d, %d)", retail, net)
	}
}

// TestAddAndRemoveActivityTotals прогоняет сценарий: добавить X (100, 60),
// добавить Y (50, 20), удалить X.
func TestAddAndRemoveActivityTotals(t *testing.T) {
	store := newFakeStore()
	day := testDay("2025-01-01")
	totals := NewTotals()
	list := NewDayList(store, totals, nil, time.Hour, testItinerary(day))

	store.itemRetailCents, store.itemNetCents = 10000, 6000
	x, err := list.AddActivity(context.Background(), day.ID, uuid.New())
	if err != nil {
		t.Fatalf("expected add to succeed, got %v", err)
	}
	if retail, net := totals.Snapshot(); retail != 10000 || net != 6000 {
		t.Fatalf("expected (10000, 6000), got (%d, %d)", retail, net)
	}

	store.itemRetailCents, store.itemNetCents = 5000, 2000
	if _, err := list.AddActivity(context.Background(), day.ID, uuid.New()); err != nil {
		t.Fatalf("expected add to succeed, got %v", err)
	}
	if retail, net := totals.Snapshot(); retail != 15000 || net != 8000 {
		t.Fatalf("expected (15000, 8000), got (%d, %d)", retail, net)
	}

	if err := list.RemoveActivity(context.Background(), day.ID, x.ID); err != nil {
		t.Fatalf("expected remove to succeed, got %v", err)
	}
	if retail, net := totals.Snapshot(); retail != 5000 || net != 2000 {
		t.Fatalf("expected (5000, 2000), got (%d, %d)", retail, net)
	}
}

// TestApplyDayActivitiesNoop проверяет, что идентичный снимок не порождает
// ни дельты, ни сетевых вызовов.
func TestApplyDayActivitiesNoop(t *testing.T) {
	store := newFakeStore()
	day := testDay("2025-01-01")
	activities := []models.Activity{testActivity(1, 10000, 6000)}
	store.dayActivities[day.ID] = activities

	totals := NewTotals()
	list := NewDayList(store, totals, nil, time.Hour, testItinerary(day))

	if _, err := list.LoadDayActivities(context.Background(), day.ID); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	result, err := list.ApplyDayActivities(context.Background(), day.ID, activities)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.IsEmpty() {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if store.updateActivityCalls != 0 {
		t.Fatalf("expected zero update calls, got %d", store.updateActivityCalls)
	}
}

// TestReorderActivitiesPersistsMoved проверяет перестановку [A, B, C] -> [C, A, B]:
// общая дельта нулевая, сохраняются все три сдвинувшихся приоритета.
func TestReorderActivitiesPersistsMoved(t *testing.T) {
	store := newFakeStore()
	day := testDay("2025-01-01")

	a := testActivity(1, 10000, 6000)
	b := testActivity(2, 5000, 2000)
	c := testActivity(3, 2000, 1000)
	store.dayActivities[day.ID] = []models.Activity{a, b, c}

	itinerary := testItinerary(day)
	itinerary.RetailTotalCents = 17000
	itinerary.NetTotalCents = 9000

	totals := NewTotals()
	list := NewDayList(store, totals, nil, time.Hour, itinerary)

	if _, err := list.LoadDayActivities(context.Background(), day.ID); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	result, err := list.ReorderActivities(context.Background(), day.ID, []models.Activity{c, a, b})
	if err != nil {
		t.Fatalf("expected reorder to succeed, got %v", err)
	}

	if len(result.Changed) != 3 {
		t.Fatalf("expected three changed, got %d", len(result.Changed))
	}
	if store.updateActivityCalls != 3 {
		t.Fatalf("expected three update calls, got %d", store.updateActivityCalls)
	}
	if retail, net := totals.Snapshot(); retail != 17000 || net != 9000 {
		t.Fatalf("reorder must not move totals, got (%d, %d)", retail, net)
	}
}

// TestUpdateDayFieldsDebounced проверяет, что серия правок полей дня
// схлопывается в одно сохранение.
func TestUpdateDayFieldsDebounced(t *testing.T) {
	store := newFakeStore()
	day := testDay("2025-01-01")
	list := NewDayList(store, NewTotals(), nil, 30*time.Millisecond, testItinerary(day))

	for _, name := range []string{"Lima a", "Lima ar", "Lima arrival"} {
		if err := list.UpdateDayFields(day.ID, DayFields{Name: name, Location: day.Location, Date: day.Date}); err != nil {
			t.Fatalf("expected update to succeed, got %v", err)
		}
	}

	time.Sleep(200 * time.Millisecond)

	store.mu.Lock()
	calls := store.updateDayCalls
	store.mu.Unlock()

	if calls != 1 {
		t.Fatalf("expected one debounced save, got %d", calls)
	}
}
