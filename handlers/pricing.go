package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/availability"
	"streamscout/services/billing"
)

type pricingLookup interface {
	Pricing(ctx context.Context, mediaType models.MediaType, titleID int64) []models.PriceEntry
}

var _ pricingLookup = (*availability.Client)(nil)

// PricingHandler serves per-title provider pricing. Each successful lookup
// costs the caller one token.
type PricingHandler struct {
	Availability pricingLookup
	Meter        *billing.Meter
}

func NewPricingHandler(lookup pricingLookup, meter *billing.Meter) *PricingHandler {
	return &PricingHandler{Availability: lookup, Meter: meter}
}

// Pricing handles GET /api/pricing/{titleId}?mediaType=movie|series.
func (h *PricingHandler) Pricing(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)

	titleID, err := strconv.ParseInt(mux.Vars(r)["titleId"], 10, 64)
	if err != nil || titleID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid title id")
		return
	}

	mediaType := models.MediaTypeMovie
	if strings.EqualFold(r.URL.Query().Get("mediaType"), string(models.MediaTypeSeries)) {
		mediaType = models.MediaTypeSeries
	}

	providers, balance, err := billing.Metered(r.Context(), h.Meter, userID,
		func(ctx context.Context) ([]models.PriceEntry, error) {
			return h.Availability.Pricing(ctx, mediaType, titleID), nil
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
		log.Printf("[pricing] lookup for title %d failed: %v", titleID, err)
		writeError(w, http.StatusInternalServerError, "pricing lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"providers": providers,
		"tokens":    balance,
	})
}
