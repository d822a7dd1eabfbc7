package storeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/composer"
)

func staticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

// TestCreateDay проверяет маршрут, bearer-заголовок и разбор ответа.
func TestCreateDay(t *testing.T) {
	itineraryID := uuid.New()
	dayID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if want := "/api/v1/itineraries/" + itineraryID.String() + "/days"; r.URL.Path != want {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header %q", got)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["date"] != "2025-01-02" {
			t.Fatalf("unexpected date %q", body["date"])
		}

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(dayPayload{
			ID:          dayID,
			ItineraryID: itineraryID,
			Name:        body["name"],
			Location:    body["location"],
			Date:        body["date"],
		})
	}))
	defer server.Close()

	client := New(server.URL, staticToken("test-token"), 5*time.Second)

	date, _ := time.Parse(dateLayout, "2025-01-02")
	day, err := client.CreateDay(context.Background(), itineraryID, composer.DayDraft{Name: "Cusco", Date: date})
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}

	if day.ID != dayID {
		t.Fatalf("expected assigned id %s, got %s", dayID, day.ID)
	}
	if day.Date.Format(dateLayout) != "2025-01-02" {
		t.Fatalf("unexpected date %s", day.Date)
	}
}

// TestCallSurfacesStoreError проверяет, что не-2xx статус превращается в ошибку.
func TestCallSurfacesStoreError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid day id"})
	}))
	defer server.Close()

	client := New(server.URL, staticToken("test-token"), 5*time.Second)

	if err := client.DeleteActivity(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
