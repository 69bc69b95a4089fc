package handler

import (
	"net/http"

	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles moderation HTTP requests.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new moderation handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondError(w, err, "Error al obtener usuarios", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		respondError(w, err, "Error al eliminar usuario", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Usuario eliminado correctamente")
}

func (h *AdminHandler) ReportedProducts(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.ReportedProducts(r.Context())
	if err != nil {
		respondError(w, err, "Error al obtener reportes", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reports))
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		respondError(w, err, "Error al eliminar producto", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Producto eliminado correctamente por el admin")
}
