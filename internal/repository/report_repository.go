package repository

import (
	"context"
	"errors"
	"fmt"

	"campus-market/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type reportRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "report").Logger(),
	}
}

const reportSelect = `
	SELECT r.id, r.usuario_id, r.producto_reportado_id, r.razon, r.resuelto, r.fecha_reporte,
	       p.titulo, u.nombre
	FROM reports r
	JOIN products p ON p.id = r.producto_reportado_id
	JOIN users u ON u.id = r.usuario_id
`

func scanReport(row scanner) (*model.Report, error) {
	var rep model.Report
	err := row.Scan(&rep.ID, &rep.UsuarioID, &rep.ProductoReportadoID, &rep.Razon, &rep.Resuelto,
		&rep.FechaReporte, &rep.ProductoTitulo, &rep.UsuarioNombre)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepository) Create(ctx context.Context, rep *model.Report) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO reports (id, usuario_id, producto_reportado_id, razon, resuelto, fecha_reporte)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rep.ID, rep.UsuarioID, rep.ProductoReportadoID, rep.Razon, rep.Resuelto, rep.FechaReporte,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductNotFound
		}
		r.logger.Error().Err(err).Msg("failed to create report")
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, reportSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return rep, nil
}

func (r *reportRepository) List(ctx context.Context, unresolvedOnly bool) ([]model.Report, error) {
	query := reportSelect
	if unresolvedOnly {
		query += ` WHERE NOT r.resuelto`
	}
	query += ` ORDER BY r.fecha_reporte DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, *rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return reports, nil
}

func (r *reportRepository) Resolve(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET resuelto = TRUE WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
