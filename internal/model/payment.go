package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle status of a payment attempt.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pendiente"
	PaymentCompleted PaymentStatus = "completado"
	PaymentFailed    PaymentStatus = "fallido"
)

// Payment tracks a single payment attempt against one order.
type Payment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	OrdenID           uuid.UUID       `json:"orden_id" db:"orden_id"`
	UsuarioID         uuid.UUID       `json:"usuario_id" db:"usuario_id"`
	Monto             decimal.Decimal `json:"monto" db:"monto"`
	MetodoPago        string          `json:"metodo_pago" db:"metodo_pago"`
	Estado            PaymentStatus   `json:"estado" db:"estado"`
	ProviderSessionID string          `json:"session_id,omitempty" db:"provider_session_id"`
	FechaPago         *time.Time      `json:"fecha_pago,omitempty" db:"fecha_pago"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
}

// PaymentCheckoutRequest is the payload of POST /pagos/checkout. Monto is
// optional and, when present, must equal the order total.
type PaymentCheckoutRequest struct {
	OrdenID    uuid.UUID        `json:"orden_id" validate:"required"`
	Monto      *decimal.Decimal `json:"monto"`
	MetodoPago string           `json:"metodo_pago"`
}

// PaymentCheckoutResponse is returned after a provider session is created.
type PaymentCheckoutResponse struct {
	Message    string   `json:"message"`
	Pago       *Payment `json:"pago"`
	SessionURL string   `json:"sessionUrl"`
}

// PaymentConfirmation is the outcome of confirming a payment.
type PaymentConfirmation struct {
	Pago             *Payment
	AlreadyConfirmed bool
}

// PaymentResponse wraps a payment with a message.
type PaymentResponse struct {
	Message string   `json:"message"`
	Pago    *Payment `json:"pago"`
}
