package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"restaurant-orders/internal/cart"
	"restaurant-orders/internal/guard"
	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/rs/zerolog"
)

// SessionCookie is the cookie carrying the access token for browser clients.
const SessionCookie = "session"

const (
	loginValidationMessage    = "Ingresa correo y contraseña válidos (mín. 6 caracteres)"
	registerValidationMessage = "Ingresa un correo válido y una contraseña (mín. 6 caracteres)"
)

// IdentityManager is the part of identity.Manager driven by HTTP handlers.
type IdentityManager interface {
	SignInWithPassword(ctx context.Context, s *identity.Session, email, password string) (*identity.Result, error)
	Register(ctx context.Context, s *identity.Session, email, password string, role model.Role, fields model.ProfileFields) (*identity.Result, error)
	SignInFederated(ctx context.Context, s *identity.Session, idToken string) (*identity.Result, error)
	SignOut(ctx context.Context, s *identity.Session) error
	GrantAdminRole(ctx context.Context, s *identity.Session, uid string) (*model.Identity, error)
}

// AuthHandler handles sign-in, registration and sign-out.
type AuthHandler struct {
	manager      IdentityManager
	carts        *cart.Registry
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler. secureCookie marks the session cookie Secure.
func NewAuthHandler(manager IdentityManager, carts *cart.Registry, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		manager:      manager,
		carts:        carts,
		secureCookie: secureCookie,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	model.ProfileFields
}

type federatedRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      *model.Identity `json:"usuario"`
	Redirect  string          `json:"redirect"`
}

// Login handles POST /api/auth/login. Only customers sign in with a password; any other
// account is signed back out.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, withValidationMessage(err, loginValidationMessage), h.logger)
		return
	}

	s := identity.FromContext(r.Context())
	result, err := h.manager.SignInWithPassword(r.Context(), s, req.Email, req.Password)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	if identity.AsCustomer(result.Principal) == nil {
		if err := h.manager.SignOut(r.Context(), sessionFor(s, result)); err != nil {
			h.logger.Error().Err(err).Msg("failed to sign out non-customer")
		}
		respondError(w, model.ErrNotCustomer, h.logger)
		return
	}

	h.writeSession(w, r, result)
}

// Register handles POST /api/auth/register. Self-service accounts are always customers.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, withValidationMessage(err, registerValidationMessage), h.logger)
		return
	}

	result, err := h.manager.Register(r.Context(), identity.FromContext(r.Context()),
		req.Email, req.Password, model.RoleCustomer, req.ProfileFields)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	h.writeSession(w, r, result)
}

// Google handles POST /api/auth/google with an ID token from the identity provider.
func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req federatedRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, err, h.logger)
		return
	}

	result, err := h.manager.SignInFederated(r.Context(), identity.FromContext(r.Context()), req.IDToken)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	h.writeSession(w, r, result)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s := identity.FromContext(r.Context())
	if s == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return
	}

	if p := currentPrincipal(r); p != nil {
		h.carts.Drop(p.UID())
	}
	if err := h.manager.SignOut(r.Context(), s); err != nil {
		respondError(w, err, h.logger)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p := currentPrincipal(r)
	if p == nil {
		respondError(w, model.ErrIdentityRequired, h.logger)
		return
	}
	profile := p.Profile()
	writeJSON(w, http.StatusOK, &profile)
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, result *identity.Result) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	resp := sessionResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Redirect:  guard.LoginPath,
	}
	if result.Principal != nil {
		profile := result.Principal.Profile()
		resp.User = &profile
		resp.Redirect = returnURL(r, guard.HomePath(result.Principal))
	}
	writeJSON(w, http.StatusOK, resp)
}

// returnURL returns the local path the sign-in page was opened for, or fallback.
func returnURL(r *http.Request, fallback string) string {
	target := r.URL.Query().Get(guard.ReturnURLParam)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || target == guard.LoginPath {
		return fallback
	}
	return target
}

// sessionFor returns s, or a resolved session for result when the request carried none.
func sessionFor(s *identity.Session, result *identity.Result) *identity.Session {
	if s != nil {
		return s
	}
	return identity.NewResolvedSession(result.Principal, result.Token)
}
