package service

import (
	"context"
	"fmt"
	"time"

	"campus-market/internal/metrics"
	"campus-market/internal/model"
	"campus-market/internal/payment"
	"campus-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OutboxKicker wakes the notification dispatcher after new rows commit.
type OutboxKicker interface {
	Kick()
}

// PaymentDeps groups the collaborators of the payment service.
type PaymentDeps struct {
	Payments      repository.PaymentRepository
	Orders        repository.OrderRepository
	Products      repository.ProductRepository
	Users         repository.UserRepository
	Notifications repository.NotificationRepository
	Provider      payment.Provider
	Outbox        OutboxKicker
	Metrics       *metrics.Metrics
}

type paymentService struct {
	PaymentDeps
	logger zerolog.Logger
	now    func() time.Time
}

// NewPaymentService creates a new payment service.
func NewPaymentService(deps PaymentDeps, logger zerolog.Logger) PaymentService {
	return &paymentService{
		PaymentDeps: deps,
		logger:      logger.With().Str("service", "payment").Logger(),
		now:         time.Now,
	}
}

func (s *paymentService) Checkout(ctx context.Context, caller model.Identity, req *model.PaymentCheckoutRequest) (*model.Payment, string, error) {
	order, lines, err := s.Orders.GetByID(ctx, req.OrdenID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || !caller.CanAccess(order.UsuarioID) {
		return nil, "", model.ErrOrderNotFound
	}
	if order.Estado != model.OrderPending {
		return nil, "", model.ErrOrderNotPending
	}

	// The lines are authoritative; the stored total only covers orders
	// whose lines were all removed.
	amount := order.Total
	if len(lines) > 0 {
		amount = model.OrderTotal(lines)
	}
	if req.Monto != nil && !req.Monto.Equal(amount) {
		s.logger.Warn().
			Str("order_id", order.ID.String()).
			Str("requested", req.Monto.String()).
			Str("total", amount.String()).
			Msg("payment amount does not match order total")
		return nil, "", model.ErrAmountMismatch
	}

	active, err := s.Payments.ActiveForOrder(ctx, order.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get active payment: %w", err)
	}
	if active != nil {
		if active.Estado == model.PaymentCompleted {
			return nil, "", model.ErrOrderAlreadyPaid
		}
		if active.Monto.Equal(amount) {
			s.logger.Debug().
				Str("payment_id", active.ID.String()).
				Str("order_id", order.ID.String()).
				Msg("reusing pending payment")
			return s.startSession(ctx, active)
		}
		// The lines changed since this attempt started.
		if err := s.Payments.MarkFailed(ctx, active.ID); err != nil {
			return nil, "", fmt.Errorf("failed to retire stale payment: %w", err)
		}
	}

	method := req.MetodoPago
	if method == "" {
		method = order.MetodoPago
	}

	p := &model.Payment{
		ID:         uuid.New(),
		OrdenID:    order.ID,
		UsuarioID:  order.UsuarioID,
		Monto:      amount,
		MetodoPago: method,
		Estado:     model.PaymentPending,
		CreatedAt:  s.now(),
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		return nil, "", fmt.Errorf("failed to create payment: %w", err)
	}
	return s.startSession(ctx, p)
}

// startSession requests a hosted checkout for p. A provider failure marks p
// fallido so the order can be paid again.
func (s *paymentService) startSession(ctx context.Context, p *model.Payment) (*model.Payment, string, error) {
	session, err := s.Provider.CreateCheckoutSession(ctx, payment.CheckoutInput{PaymentID: p.ID, Amount: p.Monto})
	if err != nil {
		s.logger.Error().Err(err).Str("payment_id", p.ID.String()).Msg("payment provider rejected checkout")
		if markErr := s.Payments.MarkFailed(ctx, p.ID); markErr != nil {
			s.logger.Error().Err(markErr).Str("payment_id", p.ID.String()).Msg("failed to mark payment failed")
		}
		s.Metrics.ObservePayment("provider_failed")
		return nil, "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.Payments.SetProviderSession(ctx, p.ID, session.ID); err != nil {
		return nil, "", fmt.Errorf("failed to store checkout session: %w", err)
	}
	p.ProviderSessionID = session.ID

	s.Metrics.ObservePayment("initiated")
	s.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("order_id", p.OrdenID.String()).
		Str("amount", p.Monto.String()).
		Msg("payment initiated")

	return p, session.URL, nil
}

func (s *paymentService) Confirm(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.PaymentConfirmation, error) {
	current, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.Payments.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := s.now()
	p, changed, err := s.Payments.MarkCompleted(ctx, tx, id, now)
	if err != nil {
		return nil, fmt.Errorf("failed to complete payment: %w", err)
	}
	if !changed {
		// Re-read in case a concurrent confirmation won the race after Get.
		if fresh, err := s.Payments.GetByID(ctx, id); err == nil && fresh != nil {
			current = fresh
		}
		s.Metrics.ObservePayment("already_confirmed")
		s.logger.Debug().Str("payment_id", id.String()).Msg("payment already confirmed")
		return &model.PaymentConfirmation{Pago: current, AlreadyConfirmed: true}, nil
	}

	order, err := s.Orders.GetForUpdate(ctx, tx, p.OrdenID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	// Only one payment may move an order to pagado. Rolling back leaves this
	// payment as it was.
	if order.Estado != model.OrderPending {
		s.Metrics.ObservePayment("order_not_pending")
		s.logger.Warn().
			Str("payment_id", id.String()).
			Str("order_id", order.ID.String()).
			Str("estado", string(order.Estado)).
			Msg("confirmation rejected, order is not pending")
		return nil, model.ErrOrderNotPending
	}

	lines, err := s.Orders.SaleLines(ctx, tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}

	for _, sl := range lines {
		if sl.Product == nil || !sl.Product.TracksStock() {
			continue
		}
		ok, err := s.Products.DecrementStock(ctx, tx, sl.Product.ID, sl.Line.Cantidad)
		if err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
		if !ok {
			s.Metrics.IncStockUnderflow()
			s.logger.Warn().
				Str("product_id", sl.Product.ID.String()).
				Int("stock", *sl.Product.Stock).
				Int("quantity", sl.Line.Cantidad).
				Msg("insufficient stock, decrement skipped")
		}
	}

	buyer, err := s.Users.GetByID(ctx, p.UsuarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	notifications, err := saleNotifications(p, order, buyer, lines, now)
	if err != nil {
		return nil, err
	}
	if err := s.Notifications.Enqueue(ctx, tx, notifications); err != nil {
		return nil, err
	}

	if err := s.Orders.UpdateStatus(ctx, tx, order.ID, model.OrderPaid); err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("payment_id", id.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	committed = true

	if s.Outbox != nil {
		s.Outbox.Kick()
	}
	s.Metrics.ObservePayment("confirmed")
	s.logger.Info().
		Str("payment_id", id.String()).
		Str("order_id", order.ID.String()).
		Int("notifications", len(notifications)).
		Msg("payment confirmed")

	return &model.PaymentConfirmation{Pago: p}, nil
}

func (s *paymentService) History(ctx context.Context, caller model.Identity) ([]model.Payment, error) {
	payments, err := s.Payments.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return payments, nil
}

func (s *paymentService) Get(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Payment, error) {
	p, err := s.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, model.ErrPaymentNotFound
	}
	if !caller.CanAccess(p.UsuarioID) {
		return nil, model.ErrForbidden
	}
	return p, nil
}

// Delete refuses completed payments: their outbox rows go with them.
func (s *paymentService) Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error {
	p, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if p.Estado == model.PaymentCompleted {
		return model.ErrPaymentCompleted
	}

	deleted, err := s.Payments.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if !deleted {
		return model.ErrPaymentNotFound
	}
	return nil
}
