package auth

import (
	"net/http"

	"streamscout/models"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeyUserID is the key for the authenticated user ID in the context
	ContextKeyUserID ContextKey = "userID"
	// ContextKeyUser is the key for the full user record in the context
	ContextKeyUser ContextKey = "user"
)

// GetUserID retrieves the authenticated user ID from the request context.
// Returns 0 when the request is unauthenticated.
func GetUserID(r *http.Request) int64 {
	if id, ok := r.Context().Value(ContextKeyUserID).(int64); ok {
		return id
	}
	return 0
}

// GetUser retrieves the authenticated user record from the request context,
// or nil when the request is unauthenticated.
func GetUser(r *http.Request) *models.User {
	if user, ok := r.Context().Value(ContextKeyUser).(*models.User); ok {
		return user
	}
	return nil
}
