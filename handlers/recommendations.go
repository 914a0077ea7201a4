package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/billing"
	"streamscout/services/recommend"
	"streamscout/services/watchlist"
)

type recommender interface {
	Recommend(ctx context.Context, input recommend.Input) []models.Recommendation
}

var _ recommender = (*recommend.Service)(nil)

type watchlistReader interface {
	List(ctx context.Context, userID int64) ([]models.WatchlistItem, error)
}

var _ watchlistReader = (*watchlist.Service)(nil)

// RecommendationsHandler serves personalized suggestions. Each request costs
// the caller one token.
type RecommendationsHandler struct {
	Recommender recommender
	Watchlist   watchlistReader
	Meter       *billing.Meter
}

func NewRecommendationsHandler(rec recommender, wl watchlistReader, meter *billing.Meter) *RecommendationsHandler {
	return &RecommendationsHandler{Recommender: rec, Watchlist: wl, Meter: meter}
}

type recommendationsRequest struct {
	LastSearch string `json:"lastSearch"`
}

// Recommendations handles POST /api/recommendations.
func (h *RecommendationsHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req recommendationsRequest
	if r.Body != nil {
		// Body is optional; ignore malformed input and fall back to the
		// stored search history.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	lastSearch := strings.TrimSpace(req.LastSearch)
	if lastSearch == "" && user.LastSearch != nil {
		lastSearch = *user.LastSearch
	}

	items, err := h.Watchlist.List(r.Context(), user.ID)
	if err != nil {
		log.Printf("[recommendations] watchlist load for user %d failed: %v", user.ID, err)
		items = nil
	}

	recs, balance, err := billing.Metered(r.Context(), h.Meter, user.ID,
		func(ctx context.Context) ([]models.Recommendation, error) {
			return h.Recommender.Recommend(ctx, recommend.Input{
				Watchlist:  items,
				LastSearch: lastSearch,
			}), nil
		})
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrInsufficientBalance):
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"error":  "insufficient token balance",
			"tokens": balance,
		})
		return
	default:
		log.Printf("[recommendations] request for user %d failed: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "recommendations failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"tokens":          balance,
	})
}
