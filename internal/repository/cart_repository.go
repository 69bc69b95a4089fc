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

// cartRepository implements CartRepository using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *cartRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// ensureCart creates the user's cart if missing and returns it. When touch is
// set the cart's updated_at is bumped.
func (r *cartRepository) ensureCart(ctx context.Context, q querier, userID uuid.UUID, touch bool) (*model.Cart, error) {
	onConflict := `DO UPDATE SET usuario_id = EXCLUDED.usuario_id`
	if touch {
		onConflict = `DO UPDATE SET updated_at = now()`
	}

	query := `
		INSERT INTO carts (id, usuario_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (usuario_id) ` + onConflict + `
		RETURNING id, usuario_id, updated_at
	`

	var cart model.Cart
	if err := q.QueryRow(ctx, query, uuid.New(), userID).Scan(&cart.ID, &cart.UsuarioID, &cart.UpdatedAt); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to ensure cart")
		return nil, fmt.Errorf("failed to ensure cart: %w", err)
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart with resolved lines.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := r.ensureCart(ctx, r.pool, userID, false)
	if err != nil {
		return nil, err
	}

	items, err := r.items(ctx, r.pool, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// items loads a cart's lines joined to their products in insertion order.
// Lines whose product was deleted are removed by the foreign key cascade.
func (r *cartRepository) items(ctx context.Context, q querier, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT ci.producto_id, ci.cantidad, ` + prefixed("p", productColumns) + `
		FROM cart_items ci
		JOIN products p ON p.id = ci.producto_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at, ci.producto_id
	`

	rows, err := q.Query(ctx, query, cartID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cartID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var (
			item model.CartItem
			p    model.Product
		)
		err := rows.Scan(
			&item.ProductoID, &item.Cantidad,
			&p.ID, &p.UsuarioID, &p.CategoriaID, &p.Titulo, &p.Precio,
			&p.Descripcion, &p.Stock, &p.Estado, &p.ImageURL, &p.FechaPublicacion,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Producto = &p
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// AddItem merges quantity into an existing line in a single statement so
// concurrent adds for the same product accumulate.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	cart, err := r.ensureCart(ctx, r.pool, userID, true)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO cart_items (cart_id, producto_id, cantidad)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, producto_id)
		DO UPDATE SET cantidad = cart_items.cantidad + EXCLUDED.cantidad
	`

	if _, err := r.pool.Exec(ctx, query, cart.ID, productID, quantity); err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).
			Str("cart_id", cart.ID.String()).
			Str("product_id", productID.String()).
			Msg("failed to add cart item")
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	return nil
}

// RemoveItem deletes the matching line if present.
func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.usuario_id = $1 AND ci.producto_id = $2
	`

	if _, err := r.pool.Exec(ctx, query, userID, productID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

// LockForCheckout locks the cart row so concurrent checkouts of the same cart serialise.
func (r *cartRepository) LockForCheckout(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	var cart model.Cart
	err := tx.QueryRow(ctx,
		`SELECT id, usuario_id, updated_at FROM carts WHERE usuario_id = $1 FOR UPDATE`, userID,
	).Scan(&cart.ID, &cart.UsuarioID, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}

	items, err := r.items(ctx, tx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

// Clear empties the cart without deleting it.
func (r *cartRepository) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}
