package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"streamscout/handlers"
	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/users"
)

// fakeUserService implements a minimal account service for testing auth handlers.
type fakeUserService struct {
	registerUser *models.User
	registerErr  error
	authUser     *models.User
	authErr      error
}

func (f *fakeUserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	return f.registerUser, f.registerErr
}

func (f *fakeUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	return f.authUser, f.authErr
}

type fakeIssuer struct {
	token string
	err   error
}

func (f *fakeIssuer) Issue(userID int64, email, name string) (string, error) {
	return f.token, f.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterSuccess(t *testing.T) {
	user := &models.User{ID: 7, Email: "new@example.com", DisplayName: "New User", Tokens: 20}
	h := handlers.NewAuthHandler(&fakeUserService{registerUser: user}, &fakeIssuer{token: "jwt-abc"})

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email": "new@example.com", "password": "hunter22", "name": "New User",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User  models.PublicUser `json:"user"`
		Token string            `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "jwt-abc" {
		t.Errorf("expected issued token, got %q", resp.Token)
	}
	if resp.User.ID != 7 || resp.User.Tokens != 20 {
		t.Errorf("unexpected user payload: %+v", resp.User)
	}
}

func TestRegisterConflictAndValidation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate email", users.ErrEmailInUse, http.StatusConflict},
		{"missing email", users.ErrEmailRequired, http.StatusBadRequest},
		{"missing password", users.ErrPasswordRequired, http.StatusBadRequest},
		{"missing name", users.ErrNameRequired, http.StatusBadRequest},
		{"storage failure", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := handlers.NewAuthHandler(&fakeUserService{registerErr: tc.err}, &fakeIssuer{token: "x"})
			rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
				"email": "a@b.c", "password": "p", "name": "n",
			})
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestLoginSuccess(t *testing.T) {
	user := &models.User{ID: 3, Email: "a@example.com", DisplayName: "A", Tokens: 12}
	h := handlers.NewAuthHandler(&fakeUserService{authUser: user}, &fakeIssuer{token: "jwt-login"})

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "a@example.com", "password": "secret",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "jwt-login" {
		t.Errorf("expected token in response, got %q", resp.Token)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserService{authErr: users.ErrInvalidCredentials}, &fakeIssuer{token: "x"})

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email": "a@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserService{}, &fakeIssuer{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeReturnsContextUser(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserService{}, &fakeIssuer{})

	user := &models.User{ID: 9, Email: "me@example.com", DisplayName: "Me", Tokens: 4}
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	ctx := context.WithValue(req.Context(), auth.ContextKeyUser, user)
	rec := httptest.NewRecorder()
	h.Me(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		User models.PublicUser `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID != 9 || resp.User.Email != "me@example.com" {
		t.Errorf("unexpected user payload: %+v", resp.User)
	}
}

func TestMeWithoutUserIsUnauthorized(t *testing.T) {
	h := handlers.NewAuthHandler(&fakeUserService{}, &fakeIssuer{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
