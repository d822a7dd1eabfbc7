package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"example.com/trip-composer/backend/internal/composer"
	"example.com/trip-composer/backend/internal/config"
	"example.com/trip-composer/backend/internal/storeclient"
)

// Смоук-инструмент композиции: открывает сессию над удаленным хранилищем,
// печатает дни и итоги, по флагу добавляет день в конец маршрута.
func main() {
	appendDay := flag.Bool("append", false, "append a day after the last one")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	syncCfg, err := config.LoadSync()
	if err != nil {
		logger.Error("failed to load sync config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	baseURL := os.Getenv("STORE_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	token := os.Getenv("STORE_TOKEN")
	if token == "" {
		logger.Error("STORE_TOKEN is required")
		os.Exit(1)
	}

	itineraryID, err := uuid.Parse(os.Getenv("ITINERARY_ID"))
	if err != nil {
		logger.Error("ITINERARY_ID must be a valid uuid", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := storeclient.New(baseURL, func(ctx context.Context) (string, error) {
		return token, nil
	}, syncCfg.StoreTimeout)

	ctx := context.Background()

	itinerary, err := client.FetchItinerary(ctx, itineraryID)
	if err != nil {
		logger.Error("failed to fetch itinerary", slog.String("error", err.Error()))
		os.Exit(1)
	}

	totals := composer.NewTotals()
	list := composer.NewDayList(client, totals, logger, syncCfg.DebounceInterval, itinerary)

	if *appendDay {
		day, err := list.AppendDay(ctx, composer.DayDraft{Name: "New day"})
		if err != nil {
			logger.Error("failed to append day", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("day appended",
			slog.String("day_id", day.ID.String()),
			slog.String("date", day.Date.Format("2006-01-02")),
		)
	}

	for _, view := range list.Days() {
		logger.Info("day",
			slog.String("day_id", view.Day.ID.String()),
			slog.String("name", view.Day.Name),
			slog.String("date", view.Day.Date.Format("2006-01-02")),
			slog.String("state", string(view.State)),
		)
	}

	retail, net := totals.Snapshot()
	logger.Info("totals",
		slog.String("itinerary_id", itinerary.ID.String()),
		slog.Int64("retail_total_cents", retail),
		slog.Int64("net_total_cents", net),
	)
}
