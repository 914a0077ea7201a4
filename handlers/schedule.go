package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"streamscout/models"
	"streamscout/services/schedule"
)

type scheduleProvider interface {
	ForDay(ctx context.Context, country, date string) (models.Schedule, error)
}

var _ scheduleProvider = (*schedule.Client)(nil)

// ScheduleHandler serves the daily TV broadcast schedule.
type ScheduleHandler struct {
	Provider scheduleProvider
}

func NewScheduleHandler(p scheduleProvider) *ScheduleHandler {
	return &ScheduleHandler{Provider: p}
}

// Schedule handles GET /api/tv/schedule?country=XX&date=YYYY-MM-DD.
func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	sched, err := h.Provider.ForDay(r.Context(), country, date)
	if err != nil {
		log.Printf("[schedule] fetch for country=%q date=%q failed: %v", country, date, err)
		writeError(w, http.StatusBadGateway, "schedule provider unavailable")
		return
	}

	writeJSON(w, http.StatusOK, sched)
}
