package service

import (
	"context"
	"fmt"
	"time"

	"campus-market/internal/model"
	"campus-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
	}
}

// Create places an order, snapshotting each product's current price.
func (s *orderService) Create(ctx context.Context, caller model.Identity, req *model.CreateOrderRequest) (order *model.Order, err error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, len(req.Productos))
	for i, item := range req.Productos {
		productIDs[i] = item.ProductoID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	order = &model.Order{
		ID:             uuid.New(),
		UsuarioID:      caller.UserID,
		Estado:         model.OrderPending,
		MetodoPago:     req.MetodoPago,
		PuntoEncuentro: req.PuntoEncuentro,
		FechaCompra:    s.now(),
	}

	lines := make([]model.OrderLine, len(req.Productos))
	for i, item := range req.Productos {
		product, ok := products[item.ProductoID]
		if !ok {
			s.logger.Warn().Str("product_id", item.ProductoID.String()).Msg("order references unknown product")
			return nil, model.ErrProductNotFound
		}
		lines[i] = model.OrderLine{
			ID:             uuid.New(),
			OrdenID:        order.ID,
			ProductoID:     product.ID,
			Titulo:         product.Titulo,
			Cantidad:       item.Cantidad,
			PrecioUnitario: product.Precio,
		}
	}
	order.Total = model.OrderTotal(lines)

	// Start transaction
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

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

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("line_count", len(lines)).
		Msg("order created successfully")

	order.Lineas = lines
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, caller model.Identity) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// Get retrieves an order by its ID with all of its lines.
func (s *orderService) Get(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Order, error) {
	order, lines, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}
	if !caller.CanAccess(order.UsuarioID) {
		return nil, model.ErrForbidden
	}

	order.Lineas = lines
	return order, nil
}

func (s *orderService) Update(ctx context.Context, caller model.Identity, id uuid.UUID, req *model.UpdateOrderRequest) (*model.Order, error) {
	order, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Estado != nil {
		if !req.Estado.Valid() {
			return nil, model.ErrInvalidStatus
		}
		order.Estado = *req.Estado
	}
	if req.MetodoPago != nil {
		order.MetodoPago = *req.MetodoPago
	}
	if req.PuntoEncuentro != nil {
		order.PuntoEncuentro = *req.PuntoEncuentro
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}

	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !deleted {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

func (s *orderService) CreateLine(ctx context.Context, req *model.CreateOrderLineRequest) (*model.OrderLine, error) {
	if req.Cantidad <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	line := &model.OrderLine{
		ID:             uuid.New(),
		OrdenID:        req.OrdenID,
		ProductoID:     product.ID,
		Titulo:         product.Titulo,
		Cantidad:       req.Cantidad,
		PrecioUnitario: product.Precio,
	}
	if err := s.orderRepo.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *orderService) ListLines(ctx context.Context, caller model.Identity, orderID uuid.UUID) ([]model.OrderLine, error) {
	order, err := s.Get(ctx, caller, orderID)
	if err != nil {
		return nil, err
	}
	if order.Lineas == nil {
		return []model.OrderLine{}, nil
	}
	return order.Lineas, nil
}

func (s *orderService) GetLine(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.OrderLine, error) {
	line, err := s.orderRepo.GetLine(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order line: %w", err)
	}
	if line == nil {
		return nil, model.ErrOrderLineNotFound
	}

	// Ownership follows the parent order.
	if _, err := s.Get(ctx, caller, line.OrdenID); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *orderService) UpdateLine(ctx context.Context, id uuid.UUID, req *model.UpdateOrderLineRequest) (*model.OrderLine, error) {
	if req.PrecioUnitario != nil {
		return nil, model.ErrUnitPriceImmutable
	}
	if req.Cantidad == nil || *req.Cantidad <= 0 {
		return nil, model.ErrInvalidQuantity
	}

	line, err := s.orderRepo.UpdateLineQuantity(ctx, id, *req.Cantidad)
	if err != nil {
		return nil, fmt.Errorf("failed to update order line: %w", err)
	}
	if line == nil {
		return nil, model.ErrOrderLineNotFound
	}
	return line, nil
}

func (s *orderService) DeleteLine(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.orderRepo.DeleteLine(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order line: %w", err)
	}
	if !deleted {
		return model.ErrOrderLineNotFound
	}
	return nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.CreateOrderRequest) error {
	if req == nil || len(req.Productos) == 0 {
		return model.ErrEmptyOrder
	}

	for i, item := range req.Productos {
		if item.Cantidad <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductoID.String()).
				Int("quantity", item.Cantidad).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
