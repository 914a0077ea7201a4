package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/search"
)

type searchService interface {
	Search(ctx context.Context, q search.Query) (models.SearchResponse, error)
}

var _ searchService = (*search.Aggregator)(nil)

type searchRecorder interface {
	RememberSearch(ctx context.Context, id int64, term string) error
}

// SearchHandler serves the aggregated title search.
type SearchHandler struct {
	Aggregator searchService
	Users      searchRecorder
}

func NewSearchHandler(aggregator searchService, users searchRecorder) *SearchHandler {
	return &SearchHandler{Aggregator: aggregator, Users: users}
}

// Search handles GET /api/movies/search/{title} and GET /api/movies/search
// with filter query parameters. At least a title or one filter is required.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(mux.Vars(r)["title"])
	if title == "" {
		title = strings.TrimSpace(r.URL.Query().Get("title"))
	}
	filters := parseFilters(r)

	if title == "" && filters.IsZero() {
		writeError(w, http.StatusBadRequest, "a title or at least one filter is required")
		return
	}

	response, err := h.Aggregator.Search(r.Context(), search.Query{Title: title, Filters: filters})
	if err != nil {
		log.Printf("[search] request for %q failed: %v", title, err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	// Remember the term for signed-in callers; purely best-effort.
	if userID := auth.GetUserID(r); userID != 0 && title != "" {
		if err := h.Users.RememberSearch(r.Context(), userID, title); err != nil {
			log.Printf("[search] remember search for user %d failed: %v", userID, err)
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func parseFilters(r *http.Request) search.Filters {
	query := r.URL.Query()
	var f search.Filters

	if v, err := strconv.Atoi(query.Get("genre")); err == nil && v > 0 {
		f.GenreID = v
	}
	if v, err := strconv.Atoi(query.Get("year")); err == nil && v > 0 {
		f.Year = v
	}
	if v, err := strconv.ParseFloat(query.Get("minRating"), 64); err == nil && v > 0 {
		f.MinRating = v
	}
	f.Actor = strings.TrimSpace(query.Get("actor"))
	f.Director = strings.TrimSpace(query.Get("director"))

	switch strings.ToLower(strings.TrimSpace(query.Get("mediaType"))) {
	case "movie":
		mt := models.MediaTypeMovie
		f.MediaType = &mt
	case "series", "tv":
		mt := models.MediaTypeSeries
		f.MediaType = &mt
	}
	return f
}
