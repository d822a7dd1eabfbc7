package composer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultQuietInterval — период тишины после последней правки, по истечении
// которого срабатывает автосохранение поля.
const DefaultQuietInterval = time.Second

// FieldSyncer следит за редактируемым полем и сохраняет его после периода
// тишины, только если значение разошлось с последним подтвержденным
// снимком. Пока открыта сессия правки, автосохранение не срабатывает.
// Сохранение одиночное: новая правка во время незавершенного вызова не
// порождает второй параллельный вызов, а перевзводит таймер после его
// завершения.
type FieldSyncer[T comparable] struct {
	mu       sync.Mutex
	interval time.Duration
	persist  func(context.Context, T) error
	logger   *slog.Logger

	baseline T
	value    T
	timer    *time.Timer
	editing  bool
	inFlight bool
	stopped  bool
}

// NewFieldSyncer создает синхронизатор поля с базовым снимком baseline.
func NewFieldSyncer[T comparable](baseline T, interval time.Duration, logger *slog.Logger, persist func(context.Context, T) error) *FieldSyncer[T] {
	if interval <= 0 {
		interval = DefaultQuietInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FieldSyncer[T]{
		interval: interval,
		persist:  persist,
		logger:   logger,
		baseline: baseline,
		value:    baseline,
	}
}

// Set регистрирует новое значение поля и перевзводит таймер тишины.
func (s *FieldSyncer[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	if s.editing || s.stopped {
		return
	}

	s.armLocked()
}

// BeginEdit открывает сессию правки: автосохранение приостанавливается.
func (s *FieldSyncer[T]) BeginEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editing = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// EndEdit закрывает сессию правки; если значение разошлось с базовым
// снимком, таймер взводится заново.
func (s *FieldSyncer[T]) EndEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editing = false
	if !s.stopped {
		s.armLocked()
	}
}

// Flush немедленно сохраняет расхождение, минуя таймер. Используется для
// явного действия "сохранить" и в завершении сессии.
func (s *FieldSyncer[T]) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.inFlight {
		// Одиночное сохранение уже идет; расхождение доберет перевзведенный
		// таймер после его завершения.
		if !s.editing && !s.stopped {
			s.armLocked()
		}
		s.mu.Unlock()
		return nil
	}
	if s.stopped || s.value == s.baseline {
		s.mu.Unlock()
		return nil
	}

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	value := s.value
	s.inFlight = true
	s.mu.Unlock()

	err := s.persist(ctx, value)

	s.mu.Lock()
	s.inFlight = false
	if err == nil {
		s.baseline = value
	}
	s.mu.Unlock()

	return err
}

// Stop останавливает таймер; дальнейшие Set значение запоминают, но
// сохранение больше не планируется.
func (s *FieldSyncer[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Baseline возвращает последний подтвержденный снимок поля.
func (s *FieldSyncer[T]) Baseline() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.baseline
}

// Value возвращает текущее локальное значение поля.
func (s *FieldSyncer[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.value
}

func (s *FieldSyncer[T]) armLocked() {
	if s.value == s.baseline {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		return
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.interval, s.fire)
}

func (s *FieldSyncer[T]) fire() {
	s.mu.Lock()
	if s.editing || s.inFlight || s.stopped || s.value == s.baseline {
		s.mu.Unlock()
		return
	}

	value := s.value
	s.inFlight = true
	s.mu.Unlock()

	err := s.persist(context.Background(), value)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		// Базовый снимок не сдвигаем: следующая правка (или повторный ввод
		// того же значения) запустит сохранение заново. Автоповтора нет;
		// перевзводим таймер только под значение, пришедшее во время вызова.
		s.logger.Error("field autosave failed", slog.String("error", err.Error()))
		if !s.editing && !s.stopped && s.value != value && s.value != s.baseline {
			s.armLocked()
		}
		s.mu.Unlock()
		return
	}

	s.baseline = value
	if !s.editing && !s.stopped && s.value != s.baseline {
		s.armLocked()
	}
	s.mu.Unlock()
}
