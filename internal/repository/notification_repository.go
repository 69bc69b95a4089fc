package repository

import (
	"context"
	"fmt"
	"time"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const notificationColumns = `id, payment_id, channel, recipient, subject, body, event, payload, status, attempts, last_error, created_at, sent_at`

type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed outbox.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

func (r *notificationRepository) Enqueue(ctx context.Context, tx pgx.Tx, notifications []model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (id, payment_id, channel, recipient, subject, body, event, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
	`

	batch := &pgx.Batch{}
	for _, n := range notifications {
		var payload any
		if len(n.Payload) > 0 {
			payload = n.Payload
		}
		batch.Queue(query, n.ID, n.PaymentID, n.Channel, n.Recipient, n.Subject, n.Body, n.Event, payload, n.CreatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range notifications {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("payment_id", notifications[i].PaymentID.String()).
				Str("channel", string(notifications[i].Channel)).
				Msg("failed to enqueue notification")
			return fmt.Errorf("failed to enqueue notification: %w", err)
		}
	}

	return nil
}

// Claim uses SKIP LOCKED so several dispatchers can drain the outbox at once.
func (r *notificationRepository) Claim(ctx context.Context, limit int, staleBefore time.Time) ([]model.Notification, error) {
	query := `
		UPDATE notifications
		SET attempts = attempts + 1, claimed_at = now()
		WHERE id IN (
			SELECT id FROM notifications
			WHERE status = 'pending' AND (claimed_at IS NULL OR claimed_at < $2)
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + notificationColumns

	rows, err := r.pool.Query(ctx, query, limit, staleBefore)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to claim notifications")
		return nil, fmt.Errorf("failed to claim notifications: %w", err)
	}
	defer rows.Close()

	var claimed []model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(&n.ID, &n.PaymentID, &n.Channel, &n.Recipient, &n.Subject, &n.Body, &n.Event,
			&n.Payload, &n.Status, &n.Attempts, &n.LastError, &n.CreatedAt, &n.SentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		claimed = append(claimed, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return claimed, nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = 'sent', sent_at = $2, last_error = '', claimed_at = NULL WHERE id = $1`,
		id, sentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkAttemptFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error {
	status := model.NotificationPending
	if final {
		status = model.NotificationFailed
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = $2, last_error = $3, claimed_at = NULL WHERE id = $1`,
		id, status, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record notification failure: %w", err)
	}
	return nil
}

func (r *notificationRepository) RequeueFailed(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET status = 'pending', attempts = 0, claimed_at = NULL WHERE status = 'failed'`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepository) CountByStatus(ctx context.Context) (map[model.NotificationStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM notifications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	defer rows.Close()

	counts := map[model.NotificationStatus]int64{
		model.NotificationPending: 0,
		model.NotificationSent:    0,
		model.NotificationFailed:  0,
	}
	for rows.Next() {
		var (
			status model.NotificationStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan notification count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
