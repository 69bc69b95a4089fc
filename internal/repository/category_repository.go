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

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO categories (id, nombre, created_at) VALUES ($1, $2, $3)`,
		category.ID, category.Nombre, category.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrCategoryExists
		}
		r.logger.Error().Err(err).Str("nombre", category.Nombre).Msg("failed to create category")
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, nombre, created_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Nombre, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, nombre, created_at FROM categories ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Category, error) {
		var c model.Category
		err := row.Scan(&c.ID, &c.Nombre, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Rename(ctx context.Context, id uuid.UUID, nombre string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET nombre = $2 WHERE id = $1`, id, nombre)
	if err != nil {
		if isUniqueViolation(err) {
			return false, model.ErrCategoryExists
		}
		return false, fmt.Errorf("failed to rename category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete fails with a wrapped foreign-key error while products still use the category.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, model.ErrCategoryInUse
		}
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
