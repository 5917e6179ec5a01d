package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/store"
)

const sessionCookieName = "lemonqwest_session"

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{userStore: us, sessionStore: ss, logger: logger}
}

// memberSummary is the pre-login view of a family member: enough to render
// the member picker, nothing more.
type memberSummary struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Role        model.Role `json:"role"`
	AvatarEmoji string     `json:"avatar_emoji"`
	HasPIN      bool       `json:"has_pin"`
}

// Members lists family members for the login screen. Public by design:
// the app runs on a shared household device.
func (h *AuthHandler) Members(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		h.logger.Error("list members", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	summaries := make([]memberSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, memberSummary{
			ID:          u.ID,
			Name:        u.Name,
			Role:        u.Role,
			AvatarEmoji: u.AvatarEmoji,
			HasPIN:      u.HasPIN,
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

// Login authenticates a family member by ID and, when one is set, their PIN.
// A member without a PIN signs in with member selection alone.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64  `json:"user_id"`
		PIN    string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.userStore.GetUser(req.UserID)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if user.HasPIN {
		hash, err := h.userStore.GetPINHash(user.ID)
		if err != nil {
			h.logger.Error("login pin hash", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		pin, err := auth.PINFromHash(hash)
		if err != nil || !pin.Verify(req.PIN) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days, matches session TTL
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusOK, user)
}

// Logout deletes the session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessionStore.GetByToken(cookie.Value); err == nil && sess != nil {
			h.sessionStore.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	user, err := h.userStore.GetUser(ac.UserID)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
