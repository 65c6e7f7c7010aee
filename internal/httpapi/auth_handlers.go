package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gatherly.app/internal/audit"
	"gatherly.app/internal/auth"
	"gatherly.app/internal/social"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  social.User `json:"user"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var missing []string
	if strings.TrimSpace(req.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if !requireFields(w, missing) {
		return
	}

	digest, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	user, err := a.store.CreateUser(r.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), digest)
	if errors.Is(err, social.ErrAlreadyExists) {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	token, err := a.issueSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Registration failed. Please try again.")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var missing []string
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if !requireFields(w, missing) {
		return
	}

	// Unknown email and bad password answer identically so accounts
	// cannot be enumerated.
	user, err := a.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if errors.Is(err, social.ErrNotFound) {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := a.issueSession(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Login failed. Please try again.")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": user.ID,
	})

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	token, ok := auth.TokenFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgTokenInvalid)
		return
	}

	// The blacklist entry lives exactly as long as the token would
	// have; a token the codec cannot read falls back to a full window.
	expiresAt, err := a.authCodec.Expiry(token)
	if err != nil {
		expiresAt = time.Now().Add(a.sessionTTL)
	}

	if err := a.blacklist.Revoke(r.Context(), token, expiresAt); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to log out. Please try again.")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{
		"token_digest": auth.HashToken(token),
	})

	writeMessage(w, http.StatusOK, "Logged out successfully.")
}

func (a *API) issueSession(userID int64) (string, error) {
	return a.authCodec.Issue(map[string]any{"userId": userID}, a.sessionTTL)
}
