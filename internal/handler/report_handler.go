package handler

import (
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler handles abuse report HTTP requests.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

type reportResponse struct {
	Message string        `json:"message"`
	Reporte *model.Report `json:"reporte"`
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CreateReportRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	report, err := h.service.Create(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al enviar el reporte", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, reportResponse{Message: "Reporte enviado correctamente", Reporte: report})
}

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err, "Error al obtener reportes", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reports))
}

func (h *ReportHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	report, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener el reporte", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	report, err := h.service.Resolve(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al actualizar reporte", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Message: "Reporte marcado como resuelto", Reporte: report})
}

func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err, "Error al eliminar reporte", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Reporte eliminado correctamente")
}
