package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"restaurant-orders/internal/guard"
	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"

	"github.com/rs/zerolog"
)

// SessionOpener starts resolving an access token into a session.
type SessionOpener interface {
	Open(ctx context.Context, token string) *identity.Session
}

// Session attaches an identity.Session to every request. The token is read from the
// Authorization bearer header, or from cookieName. Resolution runs in the background; only
// guarded routes wait for it.
func Session(opener SessionOpener, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := opener.Open(r.Context(), requestToken(r, cookieName))
			next.ServeHTTP(w, r.WithContext(identity.WithSession(r.Context(), s)))
		})
	}
}

func requestToken(r *http.Request, cookieName string) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireRoles guards a view route. Denied requests are redirected with 302 to the sign-in
// page or the access-denied page. An empty roles list admits any signed-in principal.
func RequireRoles(logger zerolog.Logger, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := guard.Evaluate(r.Context(), identity.FromContext(r.Context()), r.URL.RequestURI(), roles...)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("session resolution abandoned")
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !decision.Allowed() {
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRolesAPI guards an API route. Anonymous requests get 401 and wrong roles get 403;
// both carry the redirect a client should follow.
func RequireRolesAPI(logger zerolog.Logger, roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := guard.Evaluate(r.Context(), identity.FromContext(r.Context()), r.URL.RequestURI(), roles...)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("session resolution abandoned")
				writeJSONError(w, http.StatusServiceUnavailable, model.ErrorResponse{
					Error:   model.ErrCodeInternalError,
					Message: "La sesión no pudo verificarse",
				})
				return
			}
			if decision.Allowed() {
				next.ServeHTTP(w, r)
				return
			}

			if decision.Anonymous {
				writeJSONError(w, http.StatusUnauthorized, model.ErrorResponse{
					Error:    model.ErrCodeUnauthorised,
					Message:  model.ErrIdentityRequired.Message,
					Redirect: decision.Redirect,
				})
				return
			}
			logger.Warn().Str("path", r.URL.Path).Msg("access denied")
			writeJSONError(w, http.StatusForbidden, model.ErrorResponse{
				Error:    model.ErrCodeForbidden,
				Message:  "No tienes permisos para esta operación",
				Redirect: decision.Redirect,
			})
		})
	}
}

// RequireAnonymous admits only signed-out sessions; signed-in principals are redirected to
// their home view.
func RequireAnonymous(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := guard.EvaluateAnonymous(r.Context(), identity.FromContext(r.Context()))
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("session resolution abandoned")
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !decision.Allowed() {
				http.Redirect(w, r, decision.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, body model.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
