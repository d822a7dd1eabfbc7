package composer

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/models"
)

var (
	ErrDayNotFound      = errors.New("day not found")
	ErrDayPending       = errors.New("day is awaiting persistence")
	ErrActivityNotFound = errors.New("activity not found")
)

// DayFields — редактируемые поля дня, сохраняемые через FieldSyncer одним
// снимком, чтобы серия быстрых правок схлопнулась в одно сохранение.
type DayFields struct {
	Name     string
	Location string
	Date     time.Time
}

// DayView — снимок дня для отображения: сам день плюс тег состояния,
// по которому интерфейс блокирует взаимодействие с несохраненными днями.
type DayView struct {
	Day   models.ScheduledDay
	State models.DayState
}

type dayEntry struct {
	day        models.ScheduledDay
	state      models.DayState
	activities []models.Activity
	loaded     bool
	sync       *FieldSyncer[DayFields]
}

// DayList владеет упорядоченным списком дней одного маршрута и списками
// активностей по дням. Все сохранения идут через Store; итоги цен меняются
// только знаковыми дельтами через Totals.
type DayList struct {
	mu       sync.Mutex
	store    Store
	totals   *Totals
	logger   *slog.Logger
	interval time.Duration

	itineraryID uuid.UUID
	entries     []*dayEntry
}

// NewDayList создает менеджер дней из загруженного маршрута и засеивает
// итоги цен значениями из хранилища.
func NewDayList(store Store, totals *Totals, logger *slog.Logger, interval time.Duration, itinerary models.Itinerary) *DayList {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultQuietInterval
	}

	list := &DayList{
		store:       store,
		totals:      totals,
		logger:      logger,
		interval:    interval,
		itineraryID: itinerary.ID,
	}

	totals.Seed(itinerary.RetailTotalCents, itinerary.NetTotalCents)

	for _, day := range itinerary.Days {
		entry := &dayEntry{day: day, state: models.DayStatePersisted}
		entry.sync = list.newDaySyncer(entry)
		list.entries = append(list.entries, entry)
	}

	return list
}

// Days возвращает снимок списка дней в текущем порядке.
func (d *DayList) Days() []DayView {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]DayView, 0, len(d.entries))
	for _, entry := range d.entries {
		out = append(out, DayView{Day: entry.day, State: entry.state})
	}

	return out
}

// AppendDay добавляет день в конец списка и выполняет create-вызов.
// Без явной даты новый день датируется на сутки позже последнего. Пока вызов
// не завершился, запись находится в состоянии creating и закрыта для правок;
// при успехе временная запись получает идентификатор хранилища на месте,
// при ошибке остается в списке с состоянием failed.
func (d *DayList) AppendDay(ctx context.Context, draft DayDraft) (models.ScheduledDay, error) {
	d.mu.Lock()

	if draft.Date.IsZero() {
		if last := d.lastDatedLocked(); !last.IsZero() {
			draft.Date = last.AddDate(0, 0, 1)
		} else {
			draft.Date = dateOnly(time.Now().UTC())
		}
	} else {
		draft.Date = dateOnly(draft.Date)
	}

	entry := &dayEntry{
		day: models.ScheduledDay{
			ItineraryID: d.itineraryID,
			Name:        draft.Name,
			Location:    draft.Location,
			Date:        draft.Date,
		},
		state: models.DayStateCreating,
	}
	d.entries = append(d.entries, entry)
	d.mu.Unlock()

	day, err := d.store.CreateDay(ctx, d.itineraryID, draft)

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		entry.state = models.DayStateFailed
		d.logger.Error("day create failed",
			slog.String("itinerary_id", d.itineraryID.String()),
			slog.String("error", err.Error()))
		return models.ScheduledDay{}, err
	}

	entry.day = day
	entry.state = models.DayStatePersisted
	entry.loaded = true
	entry.sync = d.newDaySyncer(entry)

	return day, nil
}

// UpdateDayFields применяет локальную правку полей дня и передает снимок
// синхронизатору; само сохранение произойдет после периода тишины.
func (d *DayList) UpdateDayFields(dayID uuid.UUID, fields DayFields) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, err := d.findLocked(dayID)
	if err != nil {
		return err
	}

	fields.Date = dateOnly(fields.Date)
	entry.day.Name = fields.Name
	entry.day.Location = fields.Location
	entry.day.Date = fields.Date
	entry.sync.Set(fields)

	return nil
}

// BeginDayEdit открывает сессию правки дня: автосохранение его полей
// приостанавливается до EndDayEdit.
func (d *DayList) BeginDayEdit(dayID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, err := d.findLocked(dayID)
	if err != nil {
		return err
	}

	entry.sync.BeginEdit()
	return nil
}

// EndDayEdit закрывает сессию правки дня.
func (d *DayList) EndDayEdit(dayID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, err := d.findLocked(dayID)
	if err != nil {
		return err
	}

	entry.sync.EndEdit()
	return nil
}

// FlushDay немедленно сохраняет несохраненные правки полей дня.
func (d *DayList) FlushDay(ctx context.Context, dayID uuid.UUID) error {
	d.mu.Lock()
	entry, err := d.findLocked(dayID)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	return entry.sync.Flush(ctx)
}

// RemoveDay удаляет день: сначала delete-вызов, и только при его успехе —
// локальное удаление и отрицательная дельта цен за активности дня. При
// ошибке список не трогается: на сервере удаление каскадно сносит
// активности, и устаревший локальный список хуже видимого отказа.
func (d *DayList) RemoveDay(ctx context.Context, dayID uuid.UUID) error {
	d.mu.Lock()
	entry, err := d.findLocked(dayID)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	loaded := entry.loaded
	d.mu.Unlock()

	if !loaded {
		if _, err := d.LoadDayActivities(ctx, dayID); err != nil {
			return err
		}
	}

	if err := d.store.DeleteDay(ctx, d.itineraryID, dayID); err != nil {
		d.logger.Error("day delete failed",
			slog.String("day_id", dayID.String()),
			slog.String("error", err.Error()))
		return err
	}

	d.mu.Lock()
	var retail, net int64
	for i, e := range d.entries {
		if e.state == models.DayStatePersisted && e.day.ID == dayID {
			for _, activity := range e.activities {
				retail += activity.RetailPriceCents
				net += activity.NetPriceCents
			}
			e.sync.Stop()
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}
	d.mu.Unlock()

	d.totals.ApplyDelta(-retail, -net)
	return nil
}

// LoadDayActivities возвращает список активностей дня, при первом обращении
// загружая его из хранилища.
func (d *DayList) LoadDayActivities(ctx context.Context, dayID uuid.UUID) ([]models.Activity, error) {
	d.mu.Lock()
	entry, err := d.findLocked(dayID)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	if entry.loaded {
		out := slices.Clone(entry.activities)
		d.mu.Unlock()
		return out, nil
	}
	d.mu.Unlock()

	activities, err := d.store.FetchDayActivities(ctx, dayID)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	entry.activities = activities
	entry.loaded = true
	return slices.Clone(activities), nil
}

// AddActivity планирует каталожную позицию на день: хранилище копирует ее
// поля и присваивает идентификатор, локально активность получает следующий
// приоритет, а итоги — положительную дельту ее цен.
func (d *DayList) AddActivity(ctx context.Context, dayID, itemID uuid.UUID) (models.Activity, error) {
	current, err := d.LoadDayActivities(ctx, dayID)
	if err != nil {
		return models.Activity{}, err
	}

	activity, err := d.store.CreateActivity(ctx, dayID, itemID, len(current)+1)
	if err != nil {
		return models.Activity{}, err
	}

	d.mu.Lock()
	if entry, findErr := d.findLocked(dayID); findErr == nil {
		entry.activities = append(entry.activities, activity)
	}
	d.mu.Unlock()

	d.totals.ApplyDelta(activity.RetailPriceCents, activity.NetPriceCents)
	return activity, nil
}

// RemoveActivity удаляет активность: delete-вызов, затем локальное удаление
// и возврат ее вклада в итоги. При ошибке локальная модель не меняется.
func (d *DayList) RemoveActivity(ctx context.Context, dayID, activityID uuid.UUID) error {
	d.mu.Lock()
	entry, err := d.findLocked(dayID)
	if err != nil {
		d.mu.Unlock()
		return err
	}

	idx := slices.IndexFunc(entry.activities, func(a models.Activity) bool { return a.ID == activityID })
	if idx < 0 {
		d.mu.Unlock()
		return ErrActivityNotFound
	}
	activity := entry.activities[idx]
	d.mu.Unlock()

	if err := d.store.DeleteActivity(ctx, activityID); err != nil {
		d.logger.Error("activity delete failed",
			slog.String("activity_id", activityID.String()),
			slog.String("error", err.Error()))
		return err
	}

	d.mu.Lock()
	if idx := slices.IndexFunc(entry.activities, func(a models.Activity) bool { return a.ID == activityID }); idx >= 0 {
		entry.activities = append(entry.activities[:idx], entry.activities[idx+1:]...)
	}
	d.mu.Unlock()

	d.totals.ApplyDelta(-activity.RetailPriceCents, -activity.NetPriceCents)
	return nil
}

// ApplyDayActivities проводит один проход сверки: новый снимок списка
// сравнивается с прежним, общая дельта цен применяется ровно один раз после
// классификации, затем по отдельности сохраняются только активности из
// ToPersist. Идентичные снимки не порождают ни одного сетевого вызова.
func (d *DayList) ApplyDayActivities(ctx context.Context, dayID uuid.UUID, next []models.Activity) (Result, error) {
	d.mu.Lock()
	entry, err := d.findLocked(dayID)
	if err != nil {
		d.mu.Unlock()
		return Result{}, err
	}

	result := Reconcile(entry.activities, next)
	if result.IsEmpty() {
		d.mu.Unlock()
		return result, nil
	}

	entry.activities = slices.Clone(next)
	entry.loaded = true
	d.mu.Unlock()

	d.totals.ApplyDelta(result.RetailDeltaCents, result.NetDeltaCents)

	var errs error
	for _, activity := range result.ToPersist() {
		if err := d.store.UpdateActivity(ctx, activity); err != nil {
			d.logger.Error("activity update failed",
				slog.String("activity_id", activity.ID.String()),
				slog.String("error", err.Error()))
			errs = errors.Join(errs, err)
		}
	}

	return result, errs
}

// ReorderActivities принимает новый визуальный порядок активностей дня,
// переназначает плотные приоритеты и проводит проход сверки.
func (d *DayList) ReorderActivities(ctx context.Context, dayID uuid.UUID, ordered []models.Activity) (Result, error) {
	return d.ApplyDayActivities(ctx, dayID, AssignPriorities(ordered))
}

func (d *DayList) findLocked(dayID uuid.UUID) (*dayEntry, error) {
	for _, entry := range d.entries {
		if entry.day.ID != dayID {
			continue
		}
		if entry.state != models.DayStatePersisted {
			return nil, ErrDayPending
		}
		return entry, nil
	}

	return nil, ErrDayNotFound
}

func (d *DayList) lastDatedLocked() time.Time {
	if len(d.entries) == 0 {
		return time.Time{}
	}

	return d.entries[len(d.entries)-1].day.Date
}

func (d *DayList) newDaySyncer(entry *dayEntry) *FieldSyncer[DayFields] {
	baseline := DayFields{Name: entry.day.Name, Location: entry.day.Location, Date: dateOnly(entry.day.Date)}

	return NewFieldSyncer(baseline, d.interval, d.logger, func(ctx context.Context, fields DayFields) error {
		d.mu.Lock()
		day := entry.day
		d.mu.Unlock()

		day.Name = fields.Name
		day.Location = fields.Location
		day.Date = fields.Date
		return d.store.UpdateDay(ctx, day)
	})
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}

	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
