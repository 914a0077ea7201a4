package models

import "time"

// User is a registered account. Tokens is the prepaid usage quota consumed by
// metered operations; it is mutated only through the repository's atomic
// increment/conditional-decrement operations and never goes negative.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	Tokens       int       `json:"tokens"`
	LastSearch   *string   `json:"lastSearch"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the sanitized view returned by the auth endpoints.
type PublicUser struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Tokens      int    `json:"tokens"`
}

// Public returns the sanitized view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Tokens:      u.Tokens,
	}
}

// WatchlistItem is one saved title for a user. Re-adding the same
// (user, title) pair refreshes the metadata and timestamp.
type WatchlistItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	TitleID   string    `json:"titleId"`
	Title     string    `json:"title"`
	MediaType string    `json:"mediaType"`
	PosterURL *string   `json:"posterUrl"`
	AddedAt   time.Time `json:"addedAt"`
}

// WatchlistUpsert is the payload accepted by the watchlist add endpoint.
type WatchlistUpsert struct {
	TitleID   string  `json:"titleId"`
	Title     string  `json:"title"`
	MediaType string  `json:"mediaType"`
	PosterURL *string `json:"posterUrl"`
}

// BillingEvent is an append-only audit record of a token grant.
type BillingEvent struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"userId"`
	Provider          string    `json:"provider"`
	ProviderReference *string   `json:"providerReference"`
	Tokens            int       `json:"tokens"`
	Amount            *int64    `json:"amount"`
	Currency          *string   `json:"currency"`
	CreatedAt         time.Time `json:"createdAt"`
}

// TokenPackage is a purchasable token bundle.
type TokenPackage struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Tokens   int     `json:"tokens"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
}
