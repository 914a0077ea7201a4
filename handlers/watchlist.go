package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/watchlist"
)

type watchlistService interface {
	List(ctx context.Context, userID int64) ([]models.WatchlistItem, error)
	Add(ctx context.Context, userID int64, input models.WatchlistUpsert) (models.WatchlistItem, error)
	Contains(ctx context.Context, userID int64, titleID string) (bool, error)
	Remove(ctx context.Context, userID int64, titleID string) error
}

var _ watchlistService = (*watchlist.Service)(nil)

// WatchlistHandler serves the per-user watchlist endpoints.
type WatchlistHandler struct {
	Watchlist watchlistService
}

func NewWatchlistHandler(svc watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Watchlist: svc}
}

// List handles GET /api/watchlist.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)

	items, err := h.Watchlist.List(r.Context(), userID)
	if err != nil {
		log.Printf("[watchlist] list for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "could not load watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.WatchlistItem{"items": items})
}

// Add handles POST /api/watchlist.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)

	var input models.WatchlistUpsert
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Watchlist.Add(r.Context(), userID, input)
	switch {
	case err == nil:
	case errors.Is(err, watchlist.ErrMissingFields):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		log.Printf("[watchlist] add for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "could not save watchlist entry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]models.WatchlistItem{"item": item})
}

// Contains handles GET /api/watchlist/{titleId}.
func (h *WatchlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)
	titleID := mux.Vars(r)["titleId"]

	found, err := h.Watchlist.Contains(r.Context(), userID, titleID)
	if err != nil {
		log.Printf("[watchlist] lookup for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "could not check watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"inWatchlist": found})
}

// Remove handles DELETE /api/watchlist/{titleId}.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)
	titleID := mux.Vars(r)["titleId"]

	err := h.Watchlist.Remove(r.Context(), userID, titleID)
	switch {
	case err == nil:
	case errors.Is(err, watchlist.ErrNotFound):
		writeError(w, http.StatusNotFound, "watchlist entry not found")
		return
	default:
		log.Printf("[watchlist] remove for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "could not remove watchlist entry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
