package config

import (
	"testing"
	"time"
)

// TestParseDurationEnv проверяет разбор длительности из ENV.
func TestParseDurationEnv(t *testing.T) {
	t.Setenv("SYNC_DEBOUNCE_INTERVAL", "250ms")

	got, err := parseDurationEnv("SYNC_DEBOUNCE_INTERVAL", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
}

// TestParseDurationEnvMissing проверяет значение по умолчанию.
func TestParseDurationEnvMissing(t *testing.T) {
	got, err := parseDurationEnv("MISSING_ENV", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != time.Second {
		t.Fatalf("expected fallback 1s, got %v", got)
	}
}

// TestParseDurationEnvInvalid проверяет ошибку при неположительной длительности.
func TestParseDurationEnvInvalid(t *testing.T) {
	t.Setenv("SYNC_STORE_TIMEOUT", "-5s")

	if _, err := parseDurationEnv("SYNC_STORE_TIMEOUT", time.Second); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
