package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, usuario_id, categoria_id, titulo, precio, descripcion, stock, estado, image_url, fecha_publicacion`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.UsuarioID, &p.CategoriaID, &p.Titulo, &p.Precio,
		&p.Descripcion, &p.Stock, &p.Estado, &p.ImageURL, &p.FechaPublicacion,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.UsuarioID, p.CategoriaID, p.Titulo, p.Precio,
		p.Descripcion, p.Stock, p.Estado, p.ImageURL, p.FechaPublicacion,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created")
	return nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	products := make(map[uuid.UUID]model.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	list, err := r.query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		products[p.ID] = p
	}
	return products, nil
}

// List returns every product, newest first.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY fecha_publicacion DESC`)
}

// Search filters by free text over title and description, price range and category.
func (r *productRepository) Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var (
		conditions []string
		args       []any
	)

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		add(`(titulo ILIKE '%%' || $%[1]d || '%%' OR descripcion ILIKE '%%' || $%[1]d || '%%')`, q)
	}
	if filter.MinPrice != nil {
		add(`precio >= $%d`, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add(`precio <= $%d`, *filter.MaxPrice)
	}
	if filter.CategoriaID != nil {
		add(`categoria_id = $%d`, *filter.CategoriaID)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY fecha_publicacion DESC`

	return r.query(ctx, query, args...)
}

func (r *productRepository) query(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update persists every mutable column of p.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET categoria_id = $2, titulo = $3, precio = $4, descripcion = $5, stock = $6, estado = $7
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, p.ID, p.CategoriaID, p.Titulo, p.Precio, p.Descripcion, p.Stock, p.Estado)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

// Delete removes a product. Cart lines and reports referencing it cascade.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *productRepository) SetImage(ctx context.Context, id uuid.UUID, url string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE products SET image_url = $2 WHERE id = $1`, id, url); err != nil {
		return fmt.Errorf("failed to set product image: %w", err)
	}
	return nil
}

func (r *productRepository) ClearImage(ctx context.Context, url string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET image_url = '' WHERE image_url = $1`, url)
	if err != nil {
		return 0, fmt.Errorf("failed to clear product image: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DecrementStock subtracts quantity when the tracked stock covers it.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock IS NOT NULL AND stock >= $2`,
		id, quantity,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
