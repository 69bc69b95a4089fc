// Package outbox delivers the notifications enqueued by payment confirmation.
//
// Rows are claimed with a lease so several instances can share the table.
// A failed attempt releases the lease; after MaxAttempts the row is marked
// failed and only the reconcile command brings it back.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"campus-market/internal/config"
	"campus-market/internal/mailer"
	"campus-market/internal/metrics"
	"campus-market/internal/model"
	"campus-market/internal/realtime"
	"campus-market/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// SaleNotifier pushes a sale notice to a seller's real-time session.
type SaleNotifier interface {
	NotifySale(ctx context.Context, sellerID string, payload json.RawMessage) (realtime.Delivery, error)
}

// Result summarises one or more dispatch passes.
type Result struct {
	Claimed int
	Sent    int
	Retried int
	Failed  int
}

func (r *Result) add(other Result) {
	r.Claimed += other.Claimed
	r.Sent += other.Sent
	r.Retried += other.Retried
	r.Failed += other.Failed
}

// Dispatcher drains the notification outbox.
type Dispatcher struct {
	repo     repository.NotificationRepository
	mail     mailer.Sender
	notifier SaleNotifier
	cfg      config.OutboxConfig
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	kick     chan struct{}
	now      func() time.Time
}

func NewDispatcher(
	repo repository.NotificationRepository,
	mail mailer.Sender,
	notifier SaleNotifier,
	cfg config.OutboxConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		mail:     mail,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
		logger:   logger.With().Str("component", "outbox").Logger(),
		kick:     make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Kick asks the dispatcher to run a pass soon. It never blocks.
func (d *Dispatcher) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run processes the outbox on every poll interval and on every Kick until ctx
// is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.logger.Info().
		Dur("poll_interval", d.cfg.PollInterval).
		Int("workers", d.cfg.Workers).
		Msg("outbox dispatcher started")

	d.runPass(ctx)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("outbox dispatcher stopped")
			return nil
		case <-ticker.C:
			d.runPass(ctx)
		case <-d.kick:
			d.runPass(ctx)
		}
	}
}

func (d *Dispatcher) runPass(ctx context.Context) {
	res, err := d.Process(ctx)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Error().Err(err).Msg("outbox pass failed")
		}
		return
	}
	if res.Claimed > 0 {
		d.logger.Info().
			Int("sent", res.Sent).
			Int("retried", res.Retried).
			Int("failed", res.Failed).
			Msg("outbox pass completed")
	}
}

// Drain runs passes until no pending row is claimable.
func (d *Dispatcher) Drain(ctx context.Context) (Result, error) {
	var total Result
	for {
		res, err := d.Process(ctx)
		total.add(res)
		if err != nil {
			return total, err
		}
		if res.Claimed == 0 {
			return total, nil
		}
	}
}

// Process claims one batch and delivers it with up to Workers concurrent sends.
func (d *Dispatcher) Process(ctx context.Context) (Result, error) {
	staleBefore := d.now().Add(-d.cfg.ClaimTimeout)
	batch, err := d.repo.Claim(ctx, d.cfg.BatchSize, staleBefore)
	if err != nil {
		return Result{}, err
	}

	res := Result{Claimed: len(batch)}
	if len(batch) == 0 {
		return res, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)

	for _, n := range batch {
		g.Go(func() error {
			outcome, err := d.deliver(gctx, n)
			if err != nil {
				return err
			}
			mu.Lock()
			switch outcome {
			case outcomeSent:
				res.Sent++
			case outcomeRetry:
				res.Retried++
			case outcomeFailed:
				res.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	err = g.Wait()
	return res, err
}

type outcome int

const (
	outcomeSent outcome = iota
	outcomeRetry
	outcomeFailed
)

// deliver only returns an error when the outcome could not be recorded.
func (d *Dispatcher) deliver(ctx context.Context, n model.Notification) (outcome, error) {
	log := d.logger.With().
		Str("notification_id", n.ID.String()).
		Str("channel", string(n.Channel)).
		Int("attempt", n.Attempts).
		Logger()

	sendErr := d.send(ctx, n)
	if sendErr == nil {
		if err := d.repo.MarkSent(ctx, n.ID, d.now()); err != nil {
			return 0, err
		}
		d.metrics.ObserveNotification(string(n.Channel), "sent")
		log.Debug().Msg("notification delivered")
		return outcomeSent, nil
	}

	final := n.Attempts >= d.cfg.MaxAttempts
	if err := d.repo.MarkAttemptFailed(ctx, n.ID, sendErr.Error(), final); err != nil {
		return 0, err
	}

	if final {
		d.metrics.ObserveNotification(string(n.Channel), "failed")
		log.Error().Err(sendErr).Msg("notification delivery abandoned")
		return outcomeFailed, nil
	}

	d.metrics.ObserveNotification(string(n.Channel), "retry")
	log.Warn().Err(sendErr).Msg("notification delivery failed, will retry")
	return outcomeRetry, nil
}

func (d *Dispatcher) send(ctx context.Context, n model.Notification) error {
	switch n.Channel {
	case model.ChannelEmail:
		return d.mail.Send(ctx, mailer.Message{
			To:      n.Recipient,
			Subject: n.Subject,
			HTML:    n.Body,
		})
	case model.ChannelRealtime:
		delivery, err := d.notifier.NotifySale(ctx, n.Recipient, n.Payload)
		if err != nil {
			return err
		}
		d.metrics.ObserveRealtime(string(delivery))
		return nil
	default:
		return fmt.Errorf("unknown notification channel %q", n.Channel)
	}
}
