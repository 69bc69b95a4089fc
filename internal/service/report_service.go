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

type reportService struct {
	reportRepo repository.ReportRepository
	logger     zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(reportRepo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		logger:     logger.With().Str("service", "report").Logger(),
	}
}

func (s *reportService) Create(ctx context.Context, caller model.Identity, req *model.CreateReportRequest) (*model.Report, error) {
	report := &model.Report{
		ID:                  uuid.New(),
		UsuarioID:           caller.UserID,
		ProductoReportadoID: req.ProductoReportadoID,
		Razon:               strings.TrimSpace(req.Razon),
		FechaReporte:        time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("report_id", report.ID.String()).
		Str("product_id", report.ProductoReportadoID.String()).
		Msg("product reported")
	return report, nil
}

func (s *reportService) List(ctx context.Context) ([]model.Report, error) {
	reports, err := s.reportRepo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	return reports, nil
}

func (s *reportService) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if report == nil {
		return nil, model.ErrReportNotFound
	}
	return report, nil
}

func (s *reportService) Resolve(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	report, err := s.reportRepo.Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report: %w", err)
	}
	if report == nil {
		return nil, model.ErrReportNotFound
	}
	return report, nil
}

func (s *reportService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.reportRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if !deleted {
		return model.ErrReportNotFound
	}
	return nil
}
