package handler

import (
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order and order line HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

type orderResponse struct {
	Orden *model.Order `json:"orden"`
}

// Create handles POST /ordenes requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CreateOrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Create(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al crear la orden", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, orderResponse{Orden: order})
}

// ListMine handles GET /ordenes/usuario requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.ListMine(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener tus órdenes", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(orders))
}

// ListAll handles GET /ordenes/admin requests.
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		respondError(w, err, "Error al obtener órdenes", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(orders))
}

// GetByID handles GET /ordenes/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	order, err := h.service.Get(r.Context(), id, orderID)
	if err != nil {
		respondError(w, err, "Error al obtener orden", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Update handles PATCH /ordenes/{id} requests.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.UpdateOrderRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Update(r.Context(), id, orderID, &req)
	if err != nil {
		respondError(w, err, "Error al actualizar orden", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Delete handles DELETE /ordenes/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, orderID); err != nil {
		respondError(w, err, "Error al eliminar orden", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Orden eliminada correctamente")
}

// CreateLine handles POST /detalles-orden requests.
func (h *OrderHandler) CreateLine(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderLineRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	line, err := h.service.CreateLine(r.Context(), &req)
	if err != nil {
		respondError(w, err, "Error al crear detalle de orden", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

// ListLines handles GET /detalles-orden/orden/{orden_id} requests.
func (h *OrderHandler) ListLines(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	orderID, ok := pathUUID(w, r, "orden_id", h.logger)
	if !ok {
		return
	}

	lines, err := h.service.ListLines(r.Context(), id, orderID)
	if err != nil {
		respondError(w, err, "Error al obtener detalles", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(lines))
}

// GetLine handles GET /detalles-orden/{id} requests.
func (h *OrderHandler) GetLine(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	lineID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	line, err := h.service.GetLine(r.Context(), id, lineID)
	if err != nil {
		respondError(w, err, "Error al obtener detalle", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// UpdateLine handles PATCH /detalles-orden/{id} requests.
func (h *OrderHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}
	var req model.UpdateOrderLineRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	line, err := h.service.UpdateLine(r.Context(), lineID, &req)
	if err != nil {
		respondError(w, err, "Error al actualizar detalle", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// DeleteLine handles DELETE /detalles-orden/{id} requests.
func (h *OrderHandler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteLine(r.Context(), lineID); err != nil {
		respondError(w, err, "Error al eliminar detalle", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Detalle eliminado correctamente")
}
