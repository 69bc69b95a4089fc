package handler

import (
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler handles category HTTP requests.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.Create(r.Context(), &req)
	if err != nil {
		respondError(w, err, "Error al crear la categoría", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err, "Error al obtener categorías", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	category, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener la categoría", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.CategoryRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	category, err := h.service.Rename(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al actualizar la categoría", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, err, "Error al eliminar la categoría", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Categoría eliminada correctamente")
}
