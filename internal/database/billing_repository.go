package database

import (
	"context"
	"database/sql"
	"fmt"

	"streamscout/models"
)

// BillingRepository appends token-grant audit records. Events are never
// updated or deleted.
type BillingRepository struct {
	db *sql.DB
}

// NewBillingRepository creates a repository on the given connection.
func NewBillingRepository(db *sql.DB) *BillingRepository {
	return &BillingRepository{db: db}
}

// Record appends one billing event and returns it with its assigned ID.
func (r *BillingRepository) Record(ctx context.Context, event models.BillingEvent) (models.BillingEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO billing_events (user_id, provider, provider_reference, tokens, amount, currency)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		event.UserID, event.Provider, event.ProviderReference, event.Tokens, event.Amount, event.Currency)

	if err := row.Scan(&event.ID, &event.CreatedAt); err != nil {
		return models.BillingEvent{}, fmt.Errorf("record billing event: %w", err)
	}
	return event, nil
}

// ListByUser returns a user's billing events, newest first.
func (r *BillingRepository) ListByUser(ctx context.Context, userID int64) ([]models.BillingEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, provider, provider_reference, tokens, amount, currency, created_at
		  FROM billing_events
		 WHERE user_id = ?
		 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list billing events: %w", err)
	}
	defer rows.Close()

	events := []models.BillingEvent{}
	for rows.Next() {
		var e models.BillingEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Provider, &e.ProviderReference, &e.Tokens, &e.Amount, &e.Currency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan billing event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
