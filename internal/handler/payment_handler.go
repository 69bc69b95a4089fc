package handler

import (
	"net/http"

	"campus-market/internal/model"
	"campus-market/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles payment HTTP requests.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Checkout handles POST /pagos/checkout requests.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	var req model.PaymentCheckoutRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	p, url, err := h.service.Checkout(r.Context(), id, &req)
	if err != nil {
		respondError(w, err, "Error al iniciar el pago", h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, model.PaymentCheckoutResponse{
		Message:    "Pago iniciado",
		Pago:       p,
		SessionURL: url,
	})
}

// Confirm handles GET /pagos/confirmar/{id} requests. Repeated calls answer
// 200 without repeating any side effect.
func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	res, err := h.service.Confirm(r.Context(), id, paymentID)
	if err != nil {
		respondError(w, err, "Error al confirmar pago", h.logger)
		return
	}

	message := "Pago confirmado"
	if res.AlreadyConfirmed {
		message = "El pago ya estaba confirmado"
	}
	writeJSON(w, http.StatusOK, model.PaymentResponse{Message: message, Pago: res.Pago})
}

// History handles GET /pagos/historial requests.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}

	payments, err := h.service.History(r.Context(), id)
	if err != nil {
		respondError(w, err, "Error al obtener historial de pagos", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(payments))
}

// GetByID handles GET /pagos/{id} requests.
func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id, paymentID)
	if err != nil {
		respondError(w, err, "Error al obtener el pago", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /pagos/{id} requests.
func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r, h.logger)
	if !ok {
		return
	}
	paymentID, ok := pathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, paymentID); err != nil {
		respondError(w, err, "Error al eliminar el pago", h.logger)
		return
	}
	writeMessage(w, http.StatusOK, "Pago eliminado correctamente")
}
