package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamscout/handlers"
	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/billing"
	"streamscout/services/recommend"
)

type fakeRecommender struct {
	recs      []models.Recommendation
	lastInput recommend.Input
	calls     int
}

func (f *fakeRecommender) Recommend(ctx context.Context, input recommend.Input) []models.Recommendation {
	f.calls++
	f.lastInput = input
	return f.recs
}

type fakeWatchlistReader struct {
	items []models.WatchlistItem
}

func (f *fakeWatchlistReader) List(ctx context.Context, userID int64) ([]models.WatchlistItem, error) {
	return f.items, nil
}

func recommendationsRequest(user *models.User, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(http.MethodPost, "/api/recommendations", bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(http.MethodPost, "/api/recommendations", nil)
	}
	ctx := context.WithValue(req.Context(), auth.ContextKeyUser, user)
	ctx = context.WithValue(ctx, auth.ContextKeyUserID, user.ID)
	return req.WithContext(ctx)
}

func TestRecommendationsChargesAndSeeds(t *testing.T) {
	id := int64(603)
	rec := &fakeRecommender{recs: []models.Recommendation{
		{TitleID: &id, Title: "The Matrix", Explanation: "Classic."},
	}}
	wl := &fakeWatchlistReader{items: []models.WatchlistItem{
		{TitleID: "27205", Title: "Inception", MediaType: "movie"},
	}}
	balances := &fakeBalances{balance: 3}
	h := handlers.NewRecommendationsHandler(rec, wl, billing.NewMeter(balances))

	user := &models.User{ID: 1, Tokens: 3}
	w := httptest.NewRecorder()
	h.Recommendations(w, recommendationsRequest(user, []byte(`{"lastSearch":"Blade Runner"}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if rec.lastInput.LastSearch != "Blade Runner" {
		t.Errorf("expected request lastSearch forwarded, got %q", rec.lastInput.LastSearch)
	}
	if len(rec.lastInput.Watchlist) != 1 || rec.lastInput.Watchlist[0].Title != "Inception" {
		t.Errorf("expected watchlist seeded, got %+v", rec.lastInput.Watchlist)
	}

	var resp struct {
		Recommendations []models.Recommendation `json:"recommendations"`
		Tokens          int                     `json:"tokens"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tokens != 2 {
		t.Errorf("expected balance 2 after charge, got %d", resp.Tokens)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Title != "The Matrix" {
		t.Errorf("unexpected recommendations: %+v", resp.Recommendations)
	}
}

func TestRecommendationsFallsBackToStoredSearch(t *testing.T) {
	rec := &fakeRecommender{}
	balances := &fakeBalances{balance: 1}
	h := handlers.NewRecommendationsHandler(rec, &fakeWatchlistReader{}, billing.NewMeter(balances))

	last := "Alien"
	user := &models.User{ID: 1, Tokens: 1, LastSearch: &last}
	w := httptest.NewRecorder()
	h.Recommendations(w, recommendationsRequest(user, []byte(`{}`)))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if rec.lastInput.LastSearch != "Alien" {
		t.Errorf("expected stored last search used, got %q", rec.lastInput.LastSearch)
	}
}

func TestRecommendationsInsufficientBalance(t *testing.T) {
	rec := &fakeRecommender{}
	h := handlers.NewRecommendationsHandler(rec, &fakeWatchlistReader{}, billing.NewMeter(&fakeBalances{balance: 0}))

	user := &models.User{ID: 1, Tokens: 0}
	w := httptest.NewRecorder()
	h.Recommendations(w, recommendationsRequest(user, nil))

	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
	if rec.calls != 0 {
		t.Errorf("recommender must not run at zero balance")
	}
}

func TestRecommendationsWithoutUser(t *testing.T) {
	h := handlers.NewRecommendationsHandler(&fakeRecommender{}, &fakeWatchlistReader{}, billing.NewMeter(&fakeBalances{balance: 1}))

	w := httptest.NewRecorder()
	h.Recommendations(w, httptest.NewRequest(http.MethodPost, "/api/recommendations", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
