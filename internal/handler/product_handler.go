package handler

import (
	"net/http"
	"strings"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /productos requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err, "Error al obtener productos", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

// Search handles GET /productos/busqueda?q=&min=&max=&categoria= requests.
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}

	products, err := h.service.Search(r.Context(), filter)
	if err != nil {
		respondError(w, err, "Error al buscar productos", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

func (h *ProductHandler) parseFilter(w http.ResponseWriter, r *http.Request) (model.ProductFilter, bool) {
	q := r.URL.Query()
	filter := model.ProductFilter{Query: q.Get("q")}

	for param, dst := range map[string]**decimal.Decimal{"min": &filter.MinPrice, "max": &filter.MaxPrice} {
		raw := strings.TrimSpace(q.Get(param))
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Rango de precio inválido", h.logger)
			return filter, false
		}
		*dst = &v
	}

	if raw := strings.TrimSpace(q.Get("categoria")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "Categoría inválida", h.logger)
			return filter, false
		}
		filter.CategoriaID = &id
	}
	return filter, true
}

// ByCategory handles GET /productos/categoria/{categoria} requests.
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathUUID(w, r, "categoria", h.logger)
	if !ok {
		return
	}

	products, err := h.service.ListByCategory(r.Context(), categoryID)
	if err != nil {
		respondError(w, err, "Error al obtener productos por categoría", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(products))
}

// GetByID handles GET /productos/{id} requests.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	product, err := h.service.GetByID(r.Context(), productID)
	if err != nil {
		respondError(w, err, "Error al obtener producto", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /productos requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CreateProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.Create(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al crear producto", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PATCH /productos/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.UpdateProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	product, err := h.service.Update(r.Context(), id, productID, &req)
	if err != nil {
		respondError(w, err, "Error al actualizar producto", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /productos/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, productID); err != nil {
		respondError(w, err, "Error al eliminar producto", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Producto eliminado correctamente")
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
