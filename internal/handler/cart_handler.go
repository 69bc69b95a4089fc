package handler

import (
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

type addToCartResponse struct {
	Message string          `json:"message"`
	Carrito *model.CartView `json:"carrito"`
}

// View handles GET /carrito requests.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener carrito", h.logger)
		return
	}
	view.Productos = nonNil(view.Productos)
	writeJSON(w, http.StatusOK, view)
}

// Add handles POST /carrito/agregar requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.Add(r.Context(), id, &req); err != nil {
		respondError(w, err, "Error al agregar al carrito", h.logger)
		return
	}

	view, err := h.service.View(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener carrito", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, addToCartResponse{Message: "Producto agregado al carrito", Carrito: view})
}

// Remove handles DELETE /carrito/eliminar/{id} requests.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	productID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), id, productID); err != nil {
		respondError(w, err, "Error al eliminar del carrito", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Producto eliminado del carrito")
}

// Checkout handles POST /carrito/comprar requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.CheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Checkout(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al procesar la compra", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, model.CheckoutResponse{Message: "Compra realizada con éxito", Orden: order})
}

// History handles GET /carrito/historial requests.
func (h *CartHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.History(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener historial", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(orders))
}
