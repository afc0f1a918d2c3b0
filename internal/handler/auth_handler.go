package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sanctuary/backend/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig holds the single-admin credential and session settings.
// The password arrives as a bcrypt hash, never plaintext.
type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	SessionSecret     []byte
	SecureCookies     bool
}

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	cfg AuthConfig
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(cfg AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	if req.Email != h.cfg.AdminEmail ||
		bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(req.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_credentials"})
		return
	}

	token, err := auth.CreateSessionToken(req.Email, h.cfg.SessionSecret)
	if err != nil {
		slog.Error("session token creation failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "login_failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   24 * 60 * 60,
	})
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
