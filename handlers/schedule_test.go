package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamscout/handlers"
	"streamscout/models"
)

type fakeScheduleProvider struct {
	schedule    models.Schedule
	err         error
	lastCountry string
	lastDate    string
}

func (f *fakeScheduleProvider) ForDay(ctx context.Context, country, date string) (models.Schedule, error) {
	f.lastCountry = country
	f.lastDate = date
	return f.schedule, f.err
}

func TestScheduleForwardsQueryParams(t *testing.T) {
	provider := &fakeScheduleProvider{schedule: models.Schedule{
		Country: "US", Date: "2026-09-01", Source: "TVmaze",
		Entries: []models.ScheduleEntry{},
	}}
	h := handlers.NewScheduleHandler(provider)

	rec := httptest.NewRecorder()
	h.Schedule(rec, httptest.NewRequest(http.MethodGet, "/api/tv/schedule?country=US&date=2026-09-01", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if provider.lastCountry != "US" || provider.lastDate != "2026-09-01" {
		t.Errorf("expected params forwarded, got country=%q date=%q", provider.lastCountry, provider.lastDate)
	}
	var resp models.Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Source != "TVmaze" {
		t.Errorf("expected TVmaze source, got %q", resp.Source)
	}
}

func TestScheduleProviderFailure(t *testing.T) {
	provider := &fakeScheduleProvider{err: errors.New("upstream timeout")}
	h := handlers.NewScheduleHandler(provider)

	rec := httptest.NewRecorder()
	h.Schedule(rec, httptest.NewRequest(http.MethodGet, "/api/tv/schedule", nil))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := handlers.NewMetaHandler()

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %q", resp["status"])
	}
}

func TestDisclaimer(t *testing.T) {
	h := handlers.NewMetaHandler()

	rec := httptest.NewRecorder()
	h.Disclaimer(rec, httptest.NewRequest(http.MethodGet, "/api/disclaimer", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["copyright"] == "" || resp["message"] == "" {
		t.Errorf("expected copyright and message, got %v", resp)
	}
}
