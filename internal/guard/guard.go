package guard

import (
	"context"
	"net/url"

	"restaurant-orders/internal/identity"
	"restaurant-orders/internal/model"
)

// View paths the guard redirects to.
const (
	LoginPath    = "/login"
	DeniedPath   = "/acceso-denegado"
	CustomerHome = "/cliente"
	AdminHome    = "/admin"

	// ReturnURLParam carries the originally requested path through a sign-in redirect.
	ReturnURLParam = "returnUrl"
)

// Decision is the outcome of a guard evaluation. Redirect is empty when access is allowed.
type Decision struct {
	Redirect string
	// Anonymous is set when the redirect happened because nobody is signed in.
	Anonymous bool
}

// Allowed reports whether navigation may proceed.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Evaluate decides whether the session may enter target. It waits for the session to
// resolve first, so a session that is still loading is never mistaken for an anonymous one.
// An empty roles list admits any signed-in principal.
func Evaluate(ctx context.Context, s *identity.Session, target string, roles ...model.Role) (Decision, error) {
	principal, err := resolve(ctx, s)
	if err != nil {
		return Decision{}, err
	}

	if principal == nil {
		return Decision{Redirect: LoginRedirect(target), Anonymous: true}, nil
	}
	if !identity.HasRole(principal, roles...) {
		return Decision{Redirect: DeniedPath}, nil
	}
	return Decision{}, nil
}

// EvaluateAnonymous admits only signed-out sessions. Signed-in principals are sent to
// their home view.
func EvaluateAnonymous(ctx context.Context, s *identity.Session) (Decision, error) {
	principal, err := resolve(ctx, s)
	if err != nil {
		return Decision{}, err
	}
	if principal == nil {
		return Decision{}, nil
	}
	return Decision{Redirect: HomePath(principal)}, nil
}

// HomePath returns the landing view for a principal.
func HomePath(p identity.Principal) string {
	return identity.Match(p,
		func(*identity.Customer) string { return CustomerHome },
		func(*identity.Admin) string { return AdminHome },
	)
}

// LoginRedirect builds the sign-in URL that resumes target afterwards.
func LoginRedirect(target string) string {
	if target == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{ReturnURLParam: []string{target}}.Encode()
}

func resolve(ctx context.Context, s *identity.Session) (identity.Principal, error) {
	if s == nil {
		return nil, nil
	}
	return s.WaitResolved(ctx)
}
