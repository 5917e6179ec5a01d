package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lemonqwest/lemonqwest/internal/auth"
	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/service"
	"github.com/lemonqwest/lemonqwest/internal/store"
)

type UserHandler struct {
	userStore   *store.UserStore
	userService *service.UserService
	logger      *slog.Logger
}

func NewUserHandler(us *store.UserStore, usvc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userStore: us, userService: usvc, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	user, err := h.userStore.GetUser(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string     `json:"name"`
		Role        model.Role `json:"role"`
		AvatarEmoji string     `json:"avatar_emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "role must be child or caregiver")
		return
	}

	user, err := h.userStore.Create(req.Name, req.Role, req.AvatarEmoji)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.userStore.GetUser(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req struct {
		Name        string `json:"name"`
		AvatarEmoji string `json:"avatar_emoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	user, err := h.userStore.Update(id, req.Name, req.AvatarEmoji)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SetPIN sets or replaces a member's 4-digit PIN. Members may set their own
// PIN; caregivers may set anyone's.
func (h *UserHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.canManagePIN(r, id) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	pin, err := auth.NewPIN(req.PIN)
	if err != nil {
		writeError(w, http.StatusBadRequest, "pin must be exactly 4 digits")
		return
	}

	if err := h.userStore.SetPIN(id, pin.Hash()); err != nil {
		h.logger.Error("set pin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set pin")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.canManagePIN(r, id) {
		writeError(w, http.StatusForbidden, "not allowed")
		return
	}

	if err := h.userStore.ClearPIN(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear pin")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.userStore.GetPINHash(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to verify pin")
		return
	}
	pin, err := auth.PINFromHash(hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no pin set")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": pin.Verify(req.PIN)})
}

// AdjustBalance applies a caregiver-initiated token adjustment. Negative
// deltas go through the administrative path and may leave the member in debt.
func (h *UserHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	balance, err := h.userService.AdjustBalance(r.Context(), id, req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"token_balance": balance})
}

func (h *UserHandler) canManagePIN(r *http.Request, targetID int64) bool {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		return false
	}
	return ac.UserID == targetID || ac.Role == model.RoleCaregiver
}
