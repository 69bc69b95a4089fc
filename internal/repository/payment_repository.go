package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const paymentColumns = `id, orden_id, usuario_id, monto, metodo_pago, estado, provider_session_id, fecha_pago, created_at`

type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

func scanPayment(row scanner) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.OrdenID, &p.UsuarioID, &p.Monto, &p.MetodoPago, &p.Estado,
		&p.ProviderSessionID, &p.FechaPago, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *paymentRepository) Create(ctx context.Context, p *model.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OrdenID, p.UsuarioID, p.Monto, p.MetodoPago, p.Estado, p.ProviderSessionID, p.FechaPago, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrPaymentInProgress
		}
		r.logger.Error().Err(err).Str("payment_id", p.ID.String()).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) ActiveForOrder(ctx context.Context, orderID uuid.UUID) (*model.Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE orden_id = $1 AND estado <> 'fallido'
		 ORDER BY created_at DESC LIMIT 1`, orderID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query active payment")
		return nil, fmt.Errorf("failed to query active payment: %w", err)
	}
	return p, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Payment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE usuario_id = $1 ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) SetProviderSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE payments SET provider_session_id = $2 WHERE id = $1`, id, sessionID); err != nil {
		return fmt.Errorf("failed to store provider session: %w", err)
	}
	return nil
}

// MarkFailed never downgrades a completed payment.
func (r *paymentRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payments SET estado = 'fallido' WHERE id = $1 AND estado = 'pendiente'`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

// MarkCompleted is the confirmation guard: the conditional update lets exactly
// one caller observe the transition.
func (r *paymentRepository) MarkCompleted(ctx context.Context, tx pgx.Tx, id uuid.UUID, paidAt time.Time) (*model.Payment, bool, error) {
	query := `
		UPDATE payments
		SET estado = 'completado', fecha_pago = $2
		WHERE id = $1 AND estado <> 'completado'
		RETURNING ` + paymentColumns

	p, err := scanPayment(tx.QueryRow(ctx, query, id, paidAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		// A failed attempt cannot complete while another payment is active.
		if isUniqueViolation(err) {
			return nil, false, model.ErrPaymentInProgress
		}
		r.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to complete payment")
		return nil, false, fmt.Errorf("failed to complete payment: %w", err)
	}
	return p, true, nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
