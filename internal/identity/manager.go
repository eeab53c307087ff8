package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-orders/internal/auth"
	"restaurant-orders/internal/model"
	"restaurant-orders/internal/repository"

	"github.com/rs/zerolog"
)

// Authenticator is the authentication backend the manager drives.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
	SignIn(ctx context.Context, email, password string) (*auth.Grant, error)
	CreateUser(ctx context.Context, email, password string) (*auth.Grant, error)
	SignInFederated(ctx context.Context, idToken string) (*auth.FederatedGrant, error)
	SignOut(ctx context.Context, token string) error
}

// Result is the outcome of a sign-in. Principal is nil when the account has no profile.
type Result struct {
	Principal Principal
	Token     string
	ExpiresAt time.Time
}

// Manager resolves sessions and is the only writer of their current principal.
type Manager struct {
	backend     Authenticator
	users       repository.UserRepository
	adminEmails map[string]struct{}
	logger      zerolog.Logger
}

// NewManager creates the identity manager. adminEmails is the allow-list promoted to
// admin on federated sign-in; entries are compared case-insensitively.
func NewManager(backend Authenticator, users repository.UserRepository, adminEmails []string, logger zerolog.Logger) *Manager {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Manager{
		backend:     backend,
		users:       users,
		adminEmails: admins,
		logger:      logger.With().Str("component", "identity").Logger(),
	}
}

// Open starts resolving token into a principal and returns immediately. The session
// settles once the token has been checked and the profile fetched; any failure on the
// way resolves it as anonymous. Resolution is bound to ctx, so a request that finishes
// without waiting cancels it quietly.
func (m *Manager) Open(ctx context.Context, token string) *Session {
	s := newSession(token)
	if token == "" {
		s.resolve()
		return s
	}

	go func() {
		defer s.resolve()

		uid, err := m.backend.Authenticate(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
			case ctx.Err() != nil:
				m.logger.Debug().Err(err).Msg("session resolution abandoned")
			default:
				m.logger.Error().Err(err).Msg("failed to authenticate session")
			}
			s.publishInitial(nil, "")
			return
		}

		principal, err := m.loadPrincipal(ctx, uid)
		if err != nil {
			if ctx.Err() != nil {
				m.logger.Debug().Err(err).Str("uid", uid).Msg("session resolution abandoned")
			} else {
				m.logger.Error().Err(err).Str("uid", uid).Msg("failed to load profile")
			}
			s.publishInitial(nil, token)
			return
		}
		s.publishInitial(principal, token)
	}()

	return s
}

// SignInWithPassword authenticates an email and password and publishes the profile.
func (m *Manager) SignInWithPassword(ctx context.Context, s *Session, email, password string) (*Result, error) {
	grant, err := m.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	principal, err := m.loadPrincipal(ctx, grant.UID)
	if err != nil {
		m.logger.Error().Err(err).Str("uid", grant.UID).Msg("failed to load profile after sign-in")
	}

	m.settle(s, principal, grant.Token)
	m.logger.Info().Str("uid", grant.UID).Msg("signed in with password")

	return &Result{Principal: principal, Token: grant.Token, ExpiresAt: grant.ExpiresAt}, nil
}

// Register creates an account and its profile document and publishes it.
func (m *Manager) Register(ctx context.Context, s *Session, email, password string, role model.Role, fields model.ProfileFields) (*Result, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	grant, err := m.backend.CreateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile := model.Identity{
		UID:     grant.UID,
		Email:   grant.Email,
		Role:    role,
		Name:    strings.TrimSpace(fields.Name),
		Surname: strings.TrimSpace(fields.Surname),
		Phone:   strings.TrimSpace(fields.Phone),
	}
	if err := m.users.Create(ctx, &profile); err != nil {
		m.logger.Error().Err(err).Str("uid", grant.UID).Msg("account created without profile")
		_ = m.backend.SignOut(ctx, grant.Token)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	principal, err := NewPrincipal(profile)
	if err != nil {
		return nil, err
	}

	m.settle(s, principal, grant.Token)
	m.logger.Info().Str("uid", grant.UID).Str("role", role.String()).Msg("account registered")

	return &Result{Principal: principal, Token: grant.Token, ExpiresAt: grant.ExpiresAt}, nil
}

// SignInFederated signs in through the identity provider. A first-time account gets a
// cliente profile; an email on the admin allow-list is then promoted to admin.
func (m *Manager) SignInFederated(ctx context.Context, s *Session, idToken string) (*Result, error) {
	grant, err := m.backend.SignInFederated(ctx, idToken)
	if err != nil {
		return nil, err
	}

	profile, err := m.users.GetByUID(ctx, grant.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if profile == nil {
		name, surname := splitDisplayName(grant.DisplayName)
		profile = &model.Identity{
			UID:     grant.UID,
			Email:   grant.Email,
			Role:    model.RoleCustomer,
			Name:    name,
			Surname: surname,
		}
		if err := m.users.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		m.logger.Info().Str("uid", grant.UID).Msg("profile created from federated sign-in")
	}

	principal, err := NewPrincipal(*profile)
	if err != nil {
		return nil, err
	}
	m.settle(s, principal, grant.Token)

	if m.IsAdminEmail(profile.Email) && profile.Role != model.RoleAdmin {
		promoted, err := m.GrantAdminRole(ctx, s, profile.UID)
		if err != nil {
			return nil, err
		}
		if promoted != nil {
			if principal, err = NewPrincipal(*promoted); err != nil {
				return nil, err
			}
		}
	}

	return &Result{Principal: principal, Token: grant.Token, ExpiresAt: grant.ExpiresAt}, nil
}

// SignOut revokes the session token and publishes anonymity.
func (m *Manager) SignOut(ctx context.Context, s *Session) error {
	if err := m.backend.SignOut(ctx, s.Token()); err != nil {
		m.logger.Error().Err(err).Msg("failed to sign out")
		return err
	}
	m.settle(s, nil, "")
	return nil
}

// GrantAdminRole promotes a profile to admin and returns it, or nil when no profile exists
// for uid. When s belongs to that same uid the promotion is published to it.
func (m *Manager) GrantAdminRole(ctx context.Context, s *Session, uid string) (*model.Identity, error) {
	updated, err := m.users.SetRole(ctx, uid, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to grant admin role: %w", err)
	}
	if updated == nil {
		return nil, nil
	}

	m.logger.Info().Str("uid", uid).Msg("admin role granted")

	if s != nil {
		if current := s.Current(); current != nil && current.UID() == uid {
			principal, err := NewPrincipal(*updated)
			if err != nil {
				return nil, err
			}
			m.settle(s, principal, s.Token())
		}
	}
	return updated, nil
}

// IsAdminEmail reports whether email is on the admin allow-list.
func (m *Manager) IsAdminEmail(email string) bool {
	_, ok := m.adminEmails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func (m *Manager) loadPrincipal(ctx context.Context, uid string) (Principal, error) {
	profile, err := m.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	return NewPrincipal(*profile)
}

// settle publishes to s and marks it resolved. A nil s is allowed for background callers.
func (m *Manager) settle(s *Session, p Principal, token string) {
	if s == nil {
		return
	}
	s.publish(p, token)
	s.resolve()
}

// splitDisplayName turns "Ana María Gómez" into ("Ana", "María Gómez").
func splitDisplayName(displayName string) (string, string) {
	parts := strings.Fields(displayName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
