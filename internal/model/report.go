package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is an abuse report filed against a product.
type Report struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	UsuarioID           uuid.UUID `json:"usuario_id" db:"usuario_id"`
	ProductoReportadoID uuid.UUID `json:"producto_reportado_id" db:"producto_reportado_id"`
	Razon               string    `json:"razon" db:"razon"`
	Resuelto            bool      `json:"resuelto" db:"resuelto"`
	FechaReporte        time.Time `json:"fecha_reporte" db:"fecha_reporte"`
	ProductoTitulo      string    `json:"producto_titulo,omitempty"`
	UsuarioNombre       string    `json:"usuario_nombre,omitempty"`
}

// CreateReportRequest is the payload of POST /reportes.
type CreateReportRequest struct {
	ProductoReportadoID uuid.UUID `json:"producto_reportado_id" validate:"required"`
	Razon               string    `json:"razon" validate:"required"`
}
