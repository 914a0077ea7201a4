package billing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"streamscout/internal/database"
	"streamscout/models"
)

// ErrUnknownPackage is returned when a purchase names a nonexistent bundle.
var ErrUnknownPackage = errors.New("unknown token package")

// Service credits purchased token bundles and keeps the billing audit trail.
type Service struct {
	users  *database.UserRepository
	events *database.BillingRepository
}

// NewService creates a billing service on the given repositories.
func NewService(users *database.UserRepository, events *database.BillingRepository) *Service {
	return &Service{users: users, events: events}
}

// PurchaseResult is the outcome of a completed token purchase.
type PurchaseResult struct {
	Balance int                 `json:"tokens"`
	Package models.TokenPackage `json:"package"`
	Event   models.BillingEvent `json:"event"`
}

// Purchase credits the bundle to the account and appends one billing event.
// The payment leg is mocked unless the caller opts into the test processor;
// real charging is out of scope and the grant is unconditional either way.
func (s *Service) Purchase(ctx context.Context, userID int64, packageID string, mock bool) (PurchaseResult, error) {
	pack, ok := PackageByID(packageID)
	if !ok {
		return PurchaseResult{}, ErrUnknownPackage
	}

	balance, err := s.users.AddTokens(ctx, userID, pack.Tokens)
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("credit tokens: %w", err)
	}

	provider := "stripe-test"
	var reference *string
	if mock {
		provider = "mock"
		ref := "mock-" + uuid.NewString()
		reference = &ref
	}

	amount := int64(math.Round(pack.Price * 100))
	currency := pack.Currency
	event, err := s.events.Record(ctx, models.BillingEvent{
		UserID:            userID,
		Provider:          provider,
		ProviderReference: reference,
		Tokens:            pack.Tokens,
		Amount:            &amount,
		Currency:          &currency,
	})
	if err != nil {
		return PurchaseResult{}, fmt.Errorf("record purchase: %w", err)
	}

	return PurchaseResult{Balance: balance, Package: pack, Event: event}, nil
}

// History returns the account's billing events, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]models.BillingEvent, error) {
	return s.events.ListByUser(ctx, userID)
}
