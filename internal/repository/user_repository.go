package repository

import (
	"context"
	"errors"
	"fmt"

	"restaurant-orders/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `uid, email, role, name, surname, phone, created_at, updated_at`

// userRepository implements the UserRepository interface using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed profile repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) GetByUID(ctx context.Context, uid string) (*model.Identity, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("uid", uid).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return identity, nil
}

func (r *userRepository) Create(ctx context.Context, identity *model.Identity) error {
	query := `
		INSERT INTO users (uid, email, role, name, surname, phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		identity.UID,
		identity.Email,
		identity.Role,
		identity.Name,
		identity.Surname,
		identity.Phone,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("uid", identity.UID).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	identity.CreatedAt = identity.CreatedAt.UTC()
	identity.UpdatedAt = identity.UpdatedAt.UTC()

	r.logger.Debug().Str("uid", identity.UID).Str("role", identity.Role.String()).Msg("user created")
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, uid string, role model.Role) (*model.Identity, error) {
	query := `
		UPDATE users SET role = $2, updated_at = NOW()
		WHERE uid = $1
		RETURNING ` + userColumns

	identity, err := scanIdentity(r.pool.QueryRow(ctx, query, uid, role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("uid", uid).Str("role", role.String()).Msg("failed to set user role")
		return nil, fmt.Errorf("failed to set user role: %w", err)
	}

	r.logger.Info().Str("uid", uid).Str("role", role.String()).Msg("user role changed")
	return identity, nil
}

func scanIdentity(row pgx.Row) (*model.Identity, error) {
	var i model.Identity
	err := row.Scan(
		&i.UID,
		&i.Email,
		&i.Role,
		&i.Name,
		&i.Surname,
		&i.Phone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	i.CreatedAt = i.CreatedAt.UTC()
	i.UpdatedAt = i.UpdatedAt.UTC()
	return &i, nil
}
