package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/billing"
)

type billingService interface {
	Purchase(ctx context.Context, userID int64, packageID string, mock bool) (billing.PurchaseResult, error)
	History(ctx context.Context, userID int64) ([]models.BillingEvent, error)
}

var _ billingService = (*billing.Service)(nil)

// BillingHandler serves token package listing, purchase and history.
type BillingHandler struct {
	Billing billingService
}

func NewBillingHandler(svc billingService) *BillingHandler {
	return &BillingHandler{Billing: svc}
}

// Packages handles GET /api/billing/packages.
func (h *BillingHandler) Packages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.TokenPackage{"packages": billing.Packages()})
}

type purchaseRequest struct {
	PackageID string `json:"packageId"`
	Mock      *bool  `json:"mock"`
}

// Purchase handles POST /api/billing/purchase.
func (h *BillingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)

	var req purchaseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.PackageID == "" {
		req.PackageID = "starter"
	}
	mock := true
	if req.Mock != nil {
		mock = *req.Mock
	}

	result, err := h.Billing.Purchase(r.Context(), userID, req.PackageID, mock)
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrUnknownPackage):
		writeError(w, http.StatusBadRequest, "unknown token package")
		return
	default:
		log.Printf("[billing] purchase for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "purchase failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"tokens":  result.Balance,
		"package": result.Package,
	})
}

// History handles GET /api/billing/history.
func (h *BillingHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r)

	events, err := h.Billing.History(r.Context(), userID)
	if err != nil {
		log.Printf("[billing] history for user %d failed: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "could not load billing history")
		return
	}

	writeJSON(w, http.StatusOK, map[string][]models.BillingEvent{"events": events})
}
