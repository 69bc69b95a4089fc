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
	"github.com/shopspring/decimal"
)

const (
	orderColumns     = `id, usuario_id, total, estado, metodo_pago, punto_encuentro, fecha_compra`
	orderLineColumns = `id, orden_id, producto_id, titulo, cantidad, precio_unitario`
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(&o.ID, &o.UsuarioID, &o.Total, &o.Estado, &o.MetodoPago, &o.PuntoEncuentro, &o.FechaCompra); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderLine(row scanner) (*model.OrderLine, error) {
	var l model.OrderLine
	if err := row.Scan(&l.ID, &l.OrdenID, &l.ProductoID, &l.Titulo, &l.Cantidad, &l.PrecioUnitario); err != nil {
		return nil, err
	}
	return &l, nil
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UsuarioID, order.Total, order.Estado,
		order.MetodoPago, order.PuntoEncuentro, order.FechaCompra,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderLines inserts multiple order lines within the provided transaction.
func (r *orderRepository) CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_lines (` + orderLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.ID, l.OrdenID, l.ProductoID, l.Titulo, l.Cantidad, l.PrecioUnitario)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range lines {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", lines[i].OrdenID.String()).
				Str("product_id", lines[i].ProductoID.String()).
				Msg("failed to create order line")
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("order lines created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its lines.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderLine, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	lines, err := r.ListLines(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	return order, lines, nil
}

// GetForUpdate locks the order row for the remainder of tx.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE usuario_id = $1 ORDER BY fecha_compra DESC`, userID)
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY fecha_compra DESC`)
}

func (r *orderRepository) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// Update persists status, payment method and meeting point. The total is never rewritten.
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET estado = $2, metodo_pago = $3, punto_encuentro = $4 WHERE id = $1`,
		order.ID, order.Estado, order.MetodoPago, order.PuntoEncuentro,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	if _, err := tx.Exec(ctx, `UPDATE orders SET estado = $2 WHERE id = $1`, id, status); err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// Delete removes an order; its lines and payments cascade.
func (r *orderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *orderRepository) CreateLine(ctx context.Context, l *model.OrderLine) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO order_lines (`+orderLineColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.OrdenID, l.ProductoID, l.Titulo, l.Cantidad, l.PrecioUnitario,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrOrderNotFound
		}
		return fmt.Errorf("failed to create order line: %w", err)
	}
	return nil
}

func (r *orderRepository) GetLine(ctx context.Context, id uuid.UUID) (*model.OrderLine, error) {
	line, err := scanOrderLine(r.pool.QueryRow(ctx, `SELECT `+orderLineColumns+` FROM order_lines WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query order line: %w", err)
	}
	return line, nil
}

func (r *orderRepository) ListLines(ctx context.Context, orderID uuid.UUID) ([]model.OrderLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderLineColumns+` FROM order_lines WHERE orden_id = $1 ORDER BY titulo, id`, orderID,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Msg("failed to query order lines")
		return nil, fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	lines := []model.OrderLine{}
	for rows.Next() {
		l, err := scanOrderLine(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order line row")
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, *l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order line rows")
		return nil, fmt.Errorf("error iterating order lines: %w", err)
	}

	return lines, nil
}

func (r *orderRepository) UpdateLineQuantity(ctx context.Context, id uuid.UUID, quantity int) (*model.OrderLine, error) {
	line, err := scanOrderLine(r.pool.QueryRow(ctx,
		`UPDATE order_lines SET cantidad = $2 WHERE id = $1 RETURNING `+orderLineColumns, id, quantity,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update order line: %w", err)
	}
	return line, nil
}

func (r *orderRepository) DeleteLine(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_lines WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete order line: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SaleLines joins each line to its product and the product's owner. Lines
// whose product no longer exists come back with nil Product and Seller.
func (r *orderRepository) SaleLines(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.SaleLine, error) {
	query := `
		SELECT ` + prefixed("l", orderLineColumns) + `,
		       p.id, p.usuario_id, p.titulo, p.precio, p.stock,
		       u.id, u.nombre, u.email
		FROM order_lines l
		LEFT JOIN products p ON p.id = l.producto_id
		LEFT JOIN users u ON u.id = p.usuario_id
		WHERE l.orden_id = $1
		ORDER BY l.titulo, l.id
	`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query sale lines")
		return nil, fmt.Errorf("failed to query sale lines: %w", err)
	}
	defer rows.Close()

	var sales []model.SaleLine
	for rows.Next() {
		var (
			sale        model.SaleLine
			productID   *uuid.UUID
			ownerID     *uuid.UUID
			titulo      *string
			precio      decimal.NullDecimal
			stock       *int
			sellerID    *uuid.UUID
			sellerName  *string
			sellerEmail *string
		)
		err := rows.Scan(
			&sale.Line.ID, &sale.Line.OrdenID, &sale.Line.ProductoID, &sale.Line.Titulo,
			&sale.Line.Cantidad, &sale.Line.PrecioUnitario,
			&productID, &ownerID, &titulo, &precio, &stock,
			&sellerID, &sellerName, &sellerEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale line: %w", err)
		}

		if productID != nil {
			sale.Product = &model.Product{
				ID:        *productID,
				UsuarioID: *ownerID,
				Titulo:    *titulo,
				Precio:    precio.Decimal,
				Stock:     stock,
			}
		}
		if sellerID != nil {
			sale.Seller = &model.User{
				ID:     *sellerID,
				Nombre: *sellerName,
				Email:  *sellerEmail,
			}
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale lines: %w", err)
	}

	return sales, nil
}
