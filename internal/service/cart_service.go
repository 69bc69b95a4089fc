package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-market/internal/metrics"
	"campus-market/internal/model"
	"campus-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type cartService struct {
	cartRepo  repository.CartRepository
	orderRepo repository.OrderRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewCartService creates a new cart service.
func NewCartService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		metrics:   m,
		logger:    logger.With().Str("service", "cart").Logger(),
		now:       time.Now,
	}
}

// cartTotal sums the lines whose product still resolves.
func cartTotal(items []model.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Producto == nil {
			continue
		}
		total = total.Add(model.LineTotal(item.Producto.Precio, item.Cantidad))
	}
	return total
}

func (s *cartService) View(ctx context.Context, caller model.Identity) (*model.CartView, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, caller.UserID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.UserID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items := cart.Items
	if items == nil {
		items = []model.CartItem{}
	}
	return &model.CartView{Productos: items, Total: cartTotal(items)}, nil
}

func (s *cartService) Add(ctx context.Context, caller model.Identity, req *model.AddToCartRequest) error {
	quantity := 1
	if req.Cantidad != nil {
		quantity = *req.Cantidad
	}
	if quantity < 1 {
		return model.ErrInvalidQuantity
	}

	if err := s.cartRepo.AddItem(ctx, caller.UserID, req.ProductoID, quantity); err != nil {
		return err
	}

	s.logger.Debug().
		Str("user_id", caller.UserID.String()).
		Str("product_id", req.ProductoID.String()).
		Int("quantity", quantity).
		Msg("product added to cart")
	return nil
}

func (s *cartService) Remove(ctx context.Context, caller model.Identity, productID uuid.UUID) error {
	if err := s.cartRepo.RemoveItem(ctx, caller.UserID, productID); err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *cartService) Checkout(ctx context.Context, caller model.Identity, req *model.CheckoutRequest) (order *model.Order, err error) {
	defer func() {
		switch {
		case err == nil:
			s.metrics.ObserveCheckout("success")
		case errors.Is(err, model.ErrEmptyCart):
			s.metrics.ObserveCheckout("empty")
		default:
			s.metrics.ObserveCheckout("error")
		}
	}()

	tx, err := s.cartRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	cart, err := s.cartRepo.LockForCheckout(ctx, tx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cart: %w", err)
	}
	if cart == nil {
		err = model.ErrEmptyCart
		return nil, err
	}

	order = &model.Order{
		ID:             uuid.New(),
		UsuarioID:      caller.UserID,
		Estado:         model.OrderPending,
		MetodoPago:     req.MetodoPago,
		PuntoEncuentro: req.PuntoEncuentro,
		FechaCompra:    s.now(),
	}

	lines := make([]model.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Producto == nil {
			continue
		}
		lines = append(lines, model.OrderLine{
			ID:             uuid.New(),
			OrdenID:        order.ID,
			ProductoID:     item.ProductoID,
			Titulo:         item.Producto.Titulo,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.Producto.Precio,
		})
	}
	if len(lines) == 0 {
		err = model.ErrEmptyCart
		return nil, err
	}
	order.Total = model.OrderTotal(lines)
	order.Lineas = lines

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderLines(ctx, tx, lines); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("line_count", len(lines)).
			Msg("failed to create order lines")
		return nil, fmt.Errorf("failed to create order lines: %w", err)
	}

	if err = s.cartRepo.Clear(ctx, tx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", caller.UserID.String()).
		Str("total", order.Total.String()).
		Msg("cart checked out")

	return order, nil
}

func (s *cartService) History(ctx context.Context, caller model.Identity) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase history: %w", err)
	}
	return orders, nil
}
