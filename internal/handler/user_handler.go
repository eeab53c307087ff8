package handler

import (
	"net/http"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// UserHandler handles profile administration.
type UserHandler struct {
	manager IdentityManager
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(manager IdentityManager, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		manager: manager,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// GrantAdmin handles POST /api/users/{uid}/admin.
func (h *UserHandler) GrantAdmin(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	profile, err := h.manager.GrantAdminRole(r.Context(), identity.FromContext(r.Context()), uid)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}
	if profile == nil {
		respondError(w, model.ErrUserNotFound, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
