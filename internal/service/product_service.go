package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campus-market/internal/model"
	"campus-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (s *productService) Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Query = strings.TrimSpace(filter.Query)

	products, err := s.productRepo.Search(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("query", filter.Query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	s.logger.Debug().
		Str("query", filter.Query).
		Int("count", len(products)).
		Msg("searched products")

	return products, nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	return s.Search(ctx, model.ProductFilter{CategoriaID: &categoryID})
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

func (s *productService) Create(ctx context.Context, caller model.Identity, req *model.CreateProductRequest) (*model.Product, error) {
	if req.Precio == nil || req.Precio.IsNegative() {
		return nil, model.ErrInvalidPrice
	}

	estado := req.Estado
	if estado == "" {
		estado = model.ProductActive
	}

	product := &model.Product{
		ID:               uuid.New(),
		UsuarioID:        caller.UserID,
		CategoriaID:      req.CategoriaID,
		Titulo:           strings.TrimSpace(req.Titulo),
		Precio:           *req.Precio,
		Descripcion:      req.Descripcion,
		Stock:            req.Stock,
		Estado:           estado,
		FechaPublicacion: time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("user_id", caller.UserID.String()).
		Msg("product published")

	return product, nil
}

// owned loads a product and checks the caller may modify it.
func (s *productService) owned(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(product.UsuarioID) {
		s.logger.Warn().
			Str("product_id", id.String()).
			Str("user_id", caller.UserID.String()).
			Msg("product modification denied")
		return nil, model.ErrForbidden
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, caller model.Identity, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	product, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Titulo != nil {
		product.Titulo = strings.TrimSpace(*req.Titulo)
	}
	if req.Precio != nil {
		if req.Precio.IsNegative() {
			return nil, model.ErrInvalidPrice
		}
		product.Precio = *req.Precio
	}
	if req.Descripcion != nil {
		product.Descripcion = *req.Descripcion
	}
	if req.Stock != nil {
		product.Stock = req.Stock
	}
	if req.CategoriaID != nil {
		product.CategoriaID = *req.CategoriaID
	}
	if req.Estado != nil {
		if !req.Estado.Valid() {
			return nil, model.ErrInvalidStatus
		}
		product.Estado = *req.Estado
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, caller model.Identity, id uuid.UUID) error {
	if _, err := s.owned(ctx, caller, id); err != nil {
		return err
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}
