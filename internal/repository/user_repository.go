package repository

import (
	"context"
	"errors"
	"fmt"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, nombre, email, password_hash, rol, profile_picture_url, created_at`

// userRepository implements UserRepository using PostgreSQL.
type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func scanUser(row scanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Nombre, &u.Email, &u.PasswordHash, &u.Rol, &u.ProfilePictureURL, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, nombre, email, password_hash, rol, profile_picture_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Nombre, user.Email, user.PasswordHash, user.Rol, user.ProfilePictureURL, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserExists
		}
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query users")
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET nombre = $2, email = $3 WHERE id = $1`,
		user.ID, user.Nombre, user.Email,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUserExists
		}
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to update user")
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) SetRole(ctx context.Context, email string, role model.Role) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET rol = $2 WHERE lower(email) = lower($1)`, email, role)
	if err != nil {
		return false, fmt.Errorf("failed to set role: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *userRepository) SetProfilePicture(ctx context.Context, id uuid.UUID, url string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE users SET profile_picture_url = $2 WHERE id = $1`, id, url); err != nil {
		return fmt.Errorf("failed to set profile picture: %w", err)
	}
	return nil
}

func (r *userRepository) ClearProfilePicture(ctx context.Context, url string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET profile_picture_url = '' WHERE profile_picture_url = $1`, url)
	if err != nil {
		return 0, fmt.Errorf("failed to clear profile picture: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to delete user")
		return false, fmt.Errorf("failed to delete user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
