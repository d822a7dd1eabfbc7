package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/models"
)

// TestParseDateValid проверяет корректный разбор даты дня.
func TestParseDateValid(t *testing.T) {
	date, err := parseDate(" 2026-03-15 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if date.Format(dateLayout) != "2026-03-15" {
		t.Fatalf("unexpected date: %s", date.Format(dateLayout))
	}
}

// TestParseDateInvalid проверяет ошибку при неверном формате даты.
func TestParseDateInvalid(t *testing.T) {
	if _, err := parseDate("15.03.2026"); err == nil {
		t.Fatal("expected error for invalid date format")
	}
}

// TestParseUUIDs проверяет разбор списка идентификаторов с защитой от дублей.
func TestParseUUIDs(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	ids, err := parseUUIDs([]string{first.String(), " " + second.String() + " "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 || ids[0] != first || ids[1] != second {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if _, err := parseUUIDs([]string{first.String(), first.String()}); err == nil {
		t.Fatal("expected error for duplicate id")
	}

	if _, err := parseUUIDs([]string{"not-a-uuid"}); err == nil {
		t.Fatal("expected error for invalid uuid")
	}
}

// TestToItineraryResponse проверяет формат дат в ответе маршрута.
func TestToItineraryResponse(t *testing.T) {
	itinerary := models.Itinerary{
		ID:               uuid.New(),
		Title:            "Italy Honeymoon",
		LeadName:         "Rossi",
		RetailTotalCents: 250000,
		NetTotalCents:    200000,
		Days: []models.ScheduledDay{
			{ID: uuid.New(), Name: "Day 1 - Rome", Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	response := toItineraryResponse(itinerary)
	if response.Title != "Italy Honeymoon" {
		t.Fatalf("unexpected title: %s", response.Title)
	}
	if len(response.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(response.Days))
	}
	if response.Days[0].Date != "2026-05-01" {
		t.Fatalf("unexpected day date: %s", response.Days[0].Date)
	}
}
