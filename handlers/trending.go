package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"streamscout/models"
	"streamscout/services/catalog"
)

type trendingCatalog interface {
	Trending(ctx context.Context, segment, period, language string) ([]models.TrendingItem, error)
}

var _ trendingCatalog = (*catalog.Client)(nil)

// TrendingHandler serves the top-3 trending movies and series.
type TrendingHandler struct {
	Catalog trendingCatalog
}

func NewTrendingHandler(c trendingCatalog) *TrendingHandler {
	return &TrendingHandler{Catalog: c}
}

const trendingTopCount = 3

// Trending handles GET /api/trending/top3?period=day|week&lang=xx.
func (h *TrendingHandler) Trending(w http.ResponseWriter, r *http.Request) {
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	if period != "day" && period != "week" {
		period = "day"
	}
	language := strings.TrimSpace(r.URL.Query().Get("lang"))
	if language == "" {
		language = "en-US"
	}

	var movies, series []models.TrendingItem
	var movieErr, seriesErr error

	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() {
		movies, movieErr = h.Catalog.Trending(r.Context(), "movie", period, language)
	})
	p.Go(func() {
		series, seriesErr = h.Catalog.Trending(r.Context(), "tv", period, language)
	})
	p.Wait()

	if err := errors.Join(movieErr, seriesErr); err != nil {
		if errors.Is(movieErr, catalog.ErrNotConfigured) || errors.Is(seriesErr, catalog.ErrNotConfigured) {
			writeError(w, http.StatusBadRequest, "catalog provider not configured")
			return
		}
		log.Printf("[trending] fetch failed: %v", err)
		writeError(w, http.StatusBadGateway, "trending feed unavailable")
		return
	}

	writeJSON(w, http.StatusOK, models.TrendingTop{
		Movies:   topN(movies, trendingTopCount),
		Series:   topN(series, trendingTopCount),
		Period:   period,
		Language: language,
		Source:   "TMDB",
	})
}

func topN(items []models.TrendingItem, n int) []models.TrendingItem {
	if items == nil {
		return []models.TrendingItem{}
	}
	if len(items) > n {
		items = items[:n]
	}
	return items
}
