package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/trip-composer/backend/internal/auth"
	"example.com/trip-composer/backend/internal/repository"
)

const (
	exportTypeActivities = "activities"
	exportTypeDays       = "days"
)

type DayExport struct {
	DayResponse
	Activities []ActivityResponse `json:"activities"`
}

type ItineraryExport struct {
	Itinerary ItineraryResponse `json:"itinerary"`
	Days      []DayExport       `json:"days"`
}

// ExportJSON выгружает маршрут с днями и активностями в JSON-файл.
func (h *ItineraryHandler) ExportJSON(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	export, err := h.buildExport(c.Request().Context(), agentID, itineraryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "itinerary not found")
		}
		return serverError(c)
	}

	filename := "itinerary-" + itineraryID.String() + ".json"
	c.Response().Header().Set(echo.HeaderContentType, "application/json")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.JSON(http.StatusOK, export)
}

// ExportCSV выгружает маршрут в CSV-файл.
func (h *ItineraryHandler) ExportCSV(c echo.Context) error {
	agentID, ok := auth.AgentIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itineraryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid itinerary id")
	}

	exportType := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	if exportType == "" {
		exportType = exportTypeActivities
	}

	export, err := h.buildExport(c.Request().Context(), agentID, itineraryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "itinerary not found")
		}
		return serverError(c)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	switch exportType {
	case exportTypeDays:
		if err := writeDaysCSV(writer, export); err != nil {
			return serverError(c)
		}
	case exportTypeActivities:
		if err := writeActivitiesCSV(writer, export); err != nil {
			return serverError(c)
		}
	default:
		return badRequest(c, "invalid export type")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	filename := "itinerary-" + itineraryID.String() + "-" + exportType + ".csv"
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ItineraryHandler) buildExport(ctx context.Context, agentID, itineraryID uuid.UUID) (ItineraryExport, error) {
	itinerary, err := h.Itineraries.GetByID(ctx, agentID, itineraryID)
	if err != nil {
		return ItineraryExport{}, err
	}

	export := ItineraryExport{
		Itinerary: toItineraryResponse(itinerary),
		Days:      make([]DayExport, 0, len(itinerary.Days)),
	}

	for _, day := range itinerary.Days {
		activities, err := h.Activities.ListByDay(ctx, agentID, day.ID)
		if err != nil {
			return ItineraryExport{}, err
		}

		entry := DayExport{
			DayResponse: toDayResponse(day),
			Activities:  make([]ActivityResponse, 0, len(activities)),
		}
		for _, activity := range activities {
			entry.Activities = append(entry.Activities, toActivityResponse(activity))
		}

		export.Days = append(export.Days, entry)
	}

	return export, nil
}

func writeActivitiesCSV(writer *csv.Writer, export ItineraryExport) error {
	header := []string{
		"itinerary_id",
		"itinerary_title",
		"day_id",
		"day_name",
		"day_date",
		"activity_id",
		"activity_name",
		"category",
		"retail_price_cents",
		"net_price_cents",
		"supplier_name",
		"priority",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, day := range export.Days {
		for _, activity := range day.Activities {
			supplier := ""
			if activity.SupplierName != nil {
				supplier = *activity.SupplierName
			}

			record := []string{
				export.Itinerary.ID.String(),
				export.Itinerary.Title,
				day.ID.String(),
				day.Name,
				day.Date,
				activity.ID.String(),
				activity.Name,
				string(activity.Category),
				formatInt64(activity.RetailPriceCents),
				formatInt64(activity.NetPriceCents),
				supplier,
				formatInt(activity.Priority),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeDaysCSV(writer *csv.Writer, export ItineraryExport) error {
	header := []string{
		"itinerary_id",
		"itinerary_title",
		"day_id",
		"day_name",
		"location",
		"date",
		"activity_count",
		"retail_subtotal_cents",
		"net_subtotal_cents",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, day := range export.Days {
		var retail, net int64
		for _, activity := range day.Activities {
			retail += activity.RetailPriceCents
			net += activity.NetPriceCents
		}

		record := []string{
			export.Itinerary.ID.String(),
			export.Itinerary.Title,
			day.ID.String(),
			day.Name,
			day.Location,
			day.Date,
			formatInt(len(day.Activities)),
			formatInt64(retail),
			formatInt64(net),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func formatInt64(value int64) string {
	return strconv.FormatInt(value, 10)
}

func formatInt(value int) string {
	return strconv.Itoa(value)
}
