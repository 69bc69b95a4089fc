package service

import (
	"context"
	"fmt"

	"campus-market/internal/model"
	"campus-market/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type adminService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	reportRepo  repository.ReportRepository
	logger      zerolog.Logger
}

// NewAdminService creates a new moderation service.
func NewAdminService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	reportRepo repository.ReportRepository,
	logger zerolog.Logger,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		productRepo: productRepo,
		reportRepo:  reportRepo,
		logger:      logger.With().Str("service", "admin").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (s *adminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return model.ErrUserNotFound
	}

	s.logger.Info().Str("user_id", id.String()).Msg("user removed by admin")
	return nil
}

func (s *adminService) ReportedProducts(ctx context.Context) ([]model.Report, error) {
	reports, err := s.reportRepo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get reported products: %w", err)
	}
	return reports, nil
}

// DeleteProduct relies on the reports foreign key cascading.
func (s *adminService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product removed by admin")
	return nil
}
