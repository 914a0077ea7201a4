package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"streamscout/internal/auth"
	"streamscout/models"
	"streamscout/services/users"
)

type userService interface {
	Register(ctx context.Context, email, password, displayName string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

var _ userService = (*users.Service)(nil)

type tokenIssuer interface {
	Issue(userID int64, email, displayName string) (string, error)
}

var _ tokenIssuer = (*auth.TokenIssuer)(nil)

// AuthHandler serves account registration, login and profile lookup.
type AuthHandler struct {
	Users  userService
	Issuer tokenIssuer
}

func NewAuthHandler(usersSvc userService, issuer tokenIssuer) *AuthHandler {
	return &AuthHandler{Users: usersSvc, Issuer: issuer}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Users.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrEmailInUse):
		writeError(w, http.StatusConflict, "email already registered")
		return
	case errors.Is(err, users.ErrEmailRequired),
		errors.Is(err, users.ErrPasswordRequired),
		errors.Is(err, users.ErrNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		log.Printf("[auth] register failed: %v", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := h.Issuer.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		log.Printf("[auth] token issue failed for user %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: user.Public(), Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	case errors.Is(err, users.ErrEmailRequired), errors.Is(err, users.ErrPasswordRequired):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		log.Printf("[auth] login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := h.Issuer.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		log.Printf("[auth] token issue failed for user %d: %v", user.ID, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: user.Public(), Token: token})
}

// Me handles GET /api/auth/me behind the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.PublicUser{"user": user.Public()})
}
