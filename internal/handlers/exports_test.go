package handlers

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func sampleExport() ItineraryExport {
	supplier := "Roma Tours"
	day := DayResponse{
		ID:   uuid.New(),
		Name: "Day 1 - Rome",
		Date: "2026-05-01",
	}

	return ItineraryExport{
		Itinerary: ItineraryResponse{ID: uuid.New(), Title: "Italy Honeymoon"},
		Days: []DayExport{
			{
				DayResponse: day,
				Activities: []ActivityResponse{
					{
						ID:               uuid.New(),
						Name:             "Colosseum Tour",
						Category:         "activity",
						RetailPriceCents: 15000,
						NetPriceCents:    12000,
						SupplierName:     &supplier,
						Priority:         1,
					},
				},
			},
		},
	}
}

// TestWriteActivitiesCSV проверяет выгрузку активностей в CSV.
func TestWriteActivitiesCSV(t *testing.T) {
	export := sampleExport()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeActivitiesCSV(writer, export); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one record, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "Colosseum Tour") {
		t.Fatalf("expected activity name in record: %s", lines[1])
	}
	if !strings.Contains(lines[1], "15000") || !strings.Contains(lines[1], "12000") {
		t.Fatalf("expected both prices in record: %s", lines[1])
	}
}

// TestWriteDaysCSV проверяет подитоги дня в CSV.
func TestWriteDaysCSV(t *testing.T) {
	export := sampleExport()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeDaysCSV(writer, export); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	writer.Flush()

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one record, got %d", len(records))
	}

	record := records[1]
	if record[6] != "1" {
		t.Fatalf("expected activity_count 1, got %s", record[6])
	}
	if record[7] != "15000" || record[8] != "12000" {
		t.Fatalf("unexpected subtotals: %v", record)
	}
}
