package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"restaurant-orders/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	credentialColumns = `uid, email, password_hash, google_subject, disabled, created_at`

	uniqueViolation = "23505"
)

// credentialRepository implements the CredentialRepository interface using PostgreSQL.
type credentialRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCredentialRepository creates a new PostgreSQL-backed credential repository.
func NewCredentialRepository(pool *pgxpool.Pool, logger zerolog.Logger) CredentialRepository {
	return &credentialRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "credential").Logger(),
	}
}

func (r *credentialRepository) Create(ctx context.Context, credential *model.Credential) error {
	credential.Email = strings.ToLower(strings.TrimSpace(credential.Email))

	query := `
		INSERT INTO auth_credentials (uid, email, password_hash, google_subject, disabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		credential.UID,
		credential.Email,
		credential.PasswordHash,
		credential.GoogleSubject,
		credential.Disabled,
	).Scan(&credential.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrEmailTaken
		}
		r.logger.Error().Err(err).Str("uid", credential.UID).Msg("failed to create credential")
		return fmt.Errorf("failed to create credential: %w", err)
	}

	credential.CreatedAt = credential.CreatedAt.UTC()
	return nil
}

func (r *credentialRepository) GetByEmail(ctx context.Context, email string) (*model.Credential, error) {
	return r.getOne(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *credentialRepository) GetByUID(ctx context.Context, uid string) (*model.Credential, error) {
	return r.getOne(ctx, "uid", uid)
}

func (r *credentialRepository) GetByGoogleSubject(ctx context.Context, subject string) (*model.Credential, error) {
	return r.getOne(ctx, "google_subject", subject)
}

func (r *credentialRepository) LinkGoogleSubject(ctx context.Context, uid, subject string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE auth_credentials SET google_subject = $2 WHERE uid = $1`,
		uid, subject,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("uid", uid).Msg("failed to link google account")
		return fmt.Errorf("failed to link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// getOne looks a credential up by one of the unique columns. column is never user input.
func (r *credentialRepository) getOne(ctx context.Context, column, value string) (*model.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM auth_credentials WHERE ` + column + ` = $1`

	var c model.Credential
	err := r.pool.QueryRow(ctx, query, value).Scan(
		&c.UID,
		&c.Email,
		&c.PasswordHash,
		&c.GoogleSubject,
		&c.Disabled,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("lookup", column).Msg("failed to query credential")
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
