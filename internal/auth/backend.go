package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-orders/internal/model"
	"restaurant-orders/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var validate = validator.New()

// Grant is the result of a successful sign-in.
type Grant struct {
	UID       string
	Email     string
	SessionID string
	Token     string
	ExpiresAt time.Time
}

// FederatedGrant is a Grant obtained through an identity provider, carrying the account
// details the provider vouched for.
type FederatedGrant struct {
	Grant
	DisplayName string
}

// Sessions is the session persistence used by the backend.
type Sessions interface {
	Create(ctx context.Context, uid string) (string, error)
	Lookup(ctx context.Context, sessionID string) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

// Limiter throttles repeated failed password sign-ins.
type Limiter interface {
	Allowed(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// Backend is the authentication backend: it owns credentials and sessions and knows
// nothing about profiles or roles.
type Backend struct {
	credentials repository.CredentialRepository
	sessions    Sessions
	limiter     Limiter
	federated   FederatedVerifier
	tokens      TokenConfig
	now         func() time.Time
	logger      zerolog.Logger
}

// NewBackend wires the authentication backend.
func NewBackend(
	credentials repository.CredentialRepository,
	sessions Sessions,
	limiter Limiter,
	federated FederatedVerifier,
	tokens TokenConfig,
	logger zerolog.Logger,
) *Backend {
	return &Backend{
		credentials: credentials,
		sessions:    sessions,
		limiter:     limiter,
		federated:   federated,
		tokens:      tokens,
		now:         time.Now,
		logger:      logger.With().Str("component", "auth").Logger(),
	}
}

// SignIn authenticates an email and password.
func (b *Backend) SignIn(ctx context.Context, email, password string) (*Grant, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return nil, err
	}

	allowed, err := b.limiter.Allowed(ctx, email)
	if err != nil {
		return nil, err
	}
	if !allowed {
		b.logger.Warn().Str("email", email).Msg("sign-in throttled")
		return nil, newError(CodeTooManyRequests)
	}

	credential, err := b.credentials.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, newError(CodeUserNotFound)
	}
	if credential.Disabled {
		return nil, newError(CodeUserDisabled)
	}
	if credential.PasswordHash == nil {
		return nil, newError(CodeInvalidCredential)
	}

	ok, err := CheckPassword(*credential.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		if err := b.limiter.Fail(ctx, email); err != nil {
			b.logger.Error().Err(err).Str("email", email).Msg("failed to record sign-in failure")
		}
		return nil, newError(CodeWrongPassword)
	}

	if err := b.limiter.Reset(ctx, email); err != nil {
		b.logger.Error().Err(err).Str("email", email).Msg("failed to reset sign-in failures")
	}

	return b.issue(ctx, credential.UID, credential.Email)
}

// CreateUser registers an email and password and signs the new account in.
func (b *Backend) CreateUser(ctx context.Context, email, password string) (*Grant, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, newError(CodeWeakPassword)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	credential := &model.Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
	}
	if err := b.credentials.Create(ctx, credential); err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return nil, newError(CodeEmailAlreadyInUse)
		}
		return nil, err
	}

	b.logger.Info().Str("uid", credential.UID).Msg("account created")

	return b.issue(ctx, credential.UID, credential.Email)
}

// SignInFederated exchanges a provider ID token for a session, creating or linking the
// account on first use.
func (b *Backend) SignInFederated(ctx context.Context, idToken string) (*FederatedGrant, error) {
	if b.federated == nil {
		return nil, newError(CodeOperationNotAllowed)
	}

	account, err := b.federated.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(account.Email))

	credential, err := b.credentials.GetByGoogleSubject(ctx, account.Subject)
	if err != nil {
		return nil, err
	}

	if credential == nil && email != "" {
		credential, err = b.credentials.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if credential != nil {
			if err := b.credentials.LinkGoogleSubject(ctx, credential.UID, account.Subject); err != nil {
				return nil, err
			}
			b.logger.Info().Str("uid", credential.UID).Msg("google account linked")
		}
	}

	if credential == nil {
		subject := account.Subject
		credential = &model.Credential{
			UID:           uuid.NewString(),
			Email:         email,
			GoogleSubject: &subject,
		}
		if err := b.credentials.Create(ctx, credential); err != nil {
			if errors.Is(err, model.ErrEmailTaken) {
				return nil, newError(CodeEmailAlreadyInUse)
			}
			return nil, err
		}
		b.logger.Info().Str("uid", credential.UID).Msg("account created from google sign-in")
	}

	if credential.Disabled {
		return nil, newError(CodeUserDisabled)
	}

	grant, err := b.issue(ctx, credential.UID, credential.Email)
	if err != nil {
		return nil, err
	}
	return &FederatedGrant{Grant: *grant, DisplayName: account.DisplayName}, nil
}

// Authenticate resolves an access token to the uid it was issued for. Expired, forged and
// revoked tokens yield ErrInvalidToken.
func (b *Backend) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := ParseToken(b.tokens, token)
	if err != nil {
		return "", ErrInvalidToken
	}

	uid, err := b.sessions.Lookup(ctx, claims.SessionID())
	if err != nil {
		return "", err
	}
	if uid == "" || uid != claims.UID {
		return "", ErrInvalidToken
	}
	return uid, nil
}

// SignOut revokes the session behind token. Invalid tokens are ignored.
func (b *Backend) SignOut(ctx context.Context, token string) error {
	claims, err := ParseToken(b.tokens, token)
	if err != nil {
		return nil
	}
	if err := b.sessions.Revoke(ctx, claims.SessionID()); err != nil {
		return err
	}
	b.logger.Debug().Str("uid", claims.UID).Msg("session revoked")
	return nil
}

func (b *Backend) issue(ctx context.Context, uid, email string) (*Grant, error) {
	sessionID, err := b.sessions.Create(ctx, uid)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := MintToken(b.tokens, b.now(), uid, sessionID)
	if err != nil {
		_ = b.sessions.Revoke(ctx, sessionID)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Grant{
		UID:       uid,
		Email:     email,
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func normaliseEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return "", newError(CodeInvalidEmail)
	}
	return email, nil
}
