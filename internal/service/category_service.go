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

type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	category := &model.Category{
		ID:        uuid.New(),
		Nombre:    strings.TrimSpace(req.Nombre),
		CreatedAt: time.Now(),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", category.ID.String()).Str("nombre", category.Nombre).Msg("category created")
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Rename(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	nombre := strings.TrimSpace(req.Nombre)
	found, err := s.categoryRepo.Rename(ctx, id, nombre)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.ErrCategoryNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return model.ErrCategoryNotFound
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}
