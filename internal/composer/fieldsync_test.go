package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type persistRecorder struct {
	mu     sync.Mutex
	values []string
	err    error
}

func (p *persistRecorder) persist(_ context.Context, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	p.values = append(p.values, value)
	return nil
}

func (p *persistRecorder) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.values))
	copy(out, p.values)
	return out
}

func (p *persistRecorder) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// TestFieldSyncerCollapsesEdits проверяет, что серия быстрых правок дает ровно
// одно сохранение с финальным значением.
func TestFieldSyncerCollapsesEdits(t *testing.T) {
	recorder := &persistRecorder{}
	syncer := NewFieldSyncer("baseline", 30*time.Millisecond, nil, recorder.persist)
	defer syncer.Stop()

	for i := 0; i < 5; i++ {
		syncer.Set(fmt.Sprintf("draft-%d", i))
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	calls := recorder.calls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one persist call, got %d", len(calls))
	}
	if calls[0] != "draft-4" {
		t.Fatalf("expected final value, got %s", calls[0])
	}
	if syncer.Baseline() != "draft-4" {
		t.Fatalf("expected baseline advanced, got %s", syncer.Baseline())
	}
}

// TestFieldSyncerSkipsUnchanged проверяет, что возврат к базовому значению
// не порождает сохранения.
func TestFieldSyncerSkipsUnchanged(t *testing.T) {
	recorder := &persistRecorder{}
	syncer := NewFieldSyncer("baseline", 20*time.Millisecond, nil, recorder.persist)
	defer syncer.Stop()

	syncer.Set("edited")
	syncer.Set("baseline")

	time.Sleep(120 * time.Millisecond)

	if calls := recorder.calls(); len(calls) != 0 {
		t.Fatalf("expected no persist calls, got %v", calls)
	}
}

// TestFieldSyncerEditSession проверяет, что открытая сессия правки блокирует
// автосохранение даже после истечения периода тишины.
func TestFieldSyncerEditSession(t *testing.T) {
	recorder := &persistRecorder{}
	syncer := NewFieldSyncer("baseline", 20*time.Millisecond, nil, recorder.persist)
	defer syncer.Stop()

	syncer.BeginEdit()
	syncer.Set("in-session")

	time.Sleep(120 * time.Millisecond)
	if calls := recorder.calls(); len(calls) != 0 {
		t.Fatalf("expected no persist while editing, got %v", calls)
	}

	syncer.EndEdit()
	time.Sleep(120 * time.Millisecond)

	calls := recorder.calls()
	if len(calls) != 1 || calls[0] != "in-session" {
		t.Fatalf("expected one persist after session end, got %v", calls)
	}
}

// TestFieldSyncerFailureKeepsBaseline проверяет, что при ошибке сохранения
// базовый снимок не сдвигается и автоповтора нет, но следующая правка
// запускает сохранение заново.
func TestFieldSyncerFailureKeepsBaseline(t *testing.T) {
	recorder := &persistRecorder{}
	recorder.setErr(errors.New("store unavailable"))

	syncer := NewFieldSyncer("baseline", 20*time.Millisecond, nil, recorder.persist)
	defer syncer.Stop()

	syncer.Set("edited")
	time.Sleep(120 * time.Millisecond)

	if syncer.Baseline() != "baseline" {
		t.Fatalf("expected baseline unchanged, got %s", syncer.Baseline())
	}
	if calls := recorder.calls(); len(calls) != 0 {
		t.Fatalf("expected no recorded persists, got %v", calls)
	}

	recorder.setErr(nil)
	syncer.Set("edited-again")
	time.Sleep(120 * time.Millisecond)

	calls := recorder.calls()
	if len(calls) != 1 || calls[0] != "edited-again" {
		t.Fatalf("expected retry on next edit, got %v", calls)
	}
}

// TestFieldSyncerEditDuringFailedPersist проверяет, что правка, пришедшая во
// время неудачного сохранения, не теряется: таймер перевзводится и новое
// значение сохраняется следующим вызовом.
func TestFieldSyncerEditDuringFailedPersist(t *testing.T) {
	started := make(chan struct{})
	var mu sync.Mutex
	var calls []string

	persist := func(_ context.Context, value string) error {
		mu.Lock()
		calls = append(calls, value)
		first := len(calls) == 1
		mu.Unlock()

		if first {
			close(started)
			time.Sleep(100 * time.Millisecond)
			return errors.New("store unavailable")
		}
		return nil
	}

	syncer := NewFieldSyncer("baseline", 20*time.Millisecond, nil, persist)
	defer syncer.Stop()

	syncer.Set("first")
	<-started
	syncer.Set("second")

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	got := make([]string, len(calls))
	copy(got, calls)
	mu.Unlock()

	if len(got) != 2 || got[1] != "second" {
		t.Fatalf("expected second value persisted after failed flight, got %v", got)
	}
	if syncer.Baseline() != "second" {
		t.Fatalf("expected baseline advanced to second, got %s", syncer.Baseline())
	}
}

// TestFieldSyncerNoRetryWithoutNewEdit проверяет, что без новой правки
// неудачное сохранение не повторяется само по себе.
func TestFieldSyncerNoRetryWithoutNewEdit(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	persist := func(_ context.Context, _ string) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("store unavailable")
	}

	syncer := NewFieldSyncer("baseline", 20*time.Millisecond, nil, persist)
	defer syncer.Stop()

	syncer.Set("edited")
	time.Sleep(250 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if attempts != 1 {
		t.Fatalf("expected single attempt without new edits, got %d", attempts)
	}
}

// TestFieldSyncerFlushDuringPersist проверяет, что Flush во время
// незавершенного вызова не теряет расхождение, а перевзводит таймер.
func TestFieldSyncerFlushDuringPersist(t *testing.T) {
	started := make(chan struct{})
	var mu sync.Mutex
	var calls []string

	persist := func(_ context.Context, value string) error {
		mu.Lock()
		calls = append(calls, value)
		first := len(calls) == 1
		mu.Unlock()

		if first {
			close(started)
			time.Sleep(100 * time.Millisecond)
		}
		return nil
	}

	syncer := NewFieldSyncer("baseline", 20*time.Millisecond, nil, persist)
	defer syncer.Stop()

	syncer.Set("first")
	<-started
	syncer.Set("second")

	if err := syncer.Flush(context.Background()); err != nil {
		t.Fatalf("expected flush during flight to succeed, got %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	got := make([]string, len(calls))
	copy(got, calls)
	mu.Unlock()

	if len(got) != 2 || got[1] != "second" {
		t.Fatalf("expected deferred persist of second value, got %v", got)
	}
}

// TestFieldSyncerFlush проверяет немедленное сохранение расхождения.
func TestFieldSyncerFlush(t *testing.T) {
	recorder := &persistRecorder{}
	syncer := NewFieldSyncer("baseline", time.Hour, nil, recorder.persist)
	defer syncer.Stop()

	syncer.Set("edited")
	if err := syncer.Flush(context.Background()); err != nil {
		t.Fatalf("expected flush to succeed, got %v", err)
	}

	calls := recorder.calls()
	if len(calls) != 1 || calls[0] != "edited" {
		t.Fatalf("expected one flushed value, got %v", calls)
	}

	// Повторный Flush без новых правок ничего не сохраняет.
	if err := syncer.Flush(context.Background()); err != nil {
		t.Fatalf("expected no-op flush, got %v", err)
	}
	if calls := recorder.calls(); len(calls) != 1 {
		t.Fatalf("expected still one call, got %v", calls)
	}
}
