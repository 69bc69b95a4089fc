package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pendiente"
	OrderPaid      OrderStatus = "pagado"
	OrderCancelled OrderStatus = "cancelado"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderCancelled:
		return true
	}
	return false
}

// Order represents a checkout intent.
type Order struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UsuarioID      uuid.UUID       `json:"usuario_id" db:"usuario_id"`
	Total          decimal.Decimal `json:"total" db:"total"`
	Estado         OrderStatus     `json:"estado" db:"estado"`
	MetodoPago     string          `json:"metodo_pago" db:"metodo_pago"`
	PuntoEncuentro string          `json:"punto_encuentro" db:"punto_encuentro"`
	FechaCompra    time.Time       `json:"fecha_compra" db:"fecha_compra"`
	Lineas         []OrderLine     `json:"detalles,omitempty"`
}

// OrderLine is a priced snapshot of one product within an order.
type OrderLine struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrdenID        uuid.UUID       `json:"orden_id" db:"orden_id"`
	ProductoID     uuid.UUID       `json:"producto_id" db:"producto_id"`
	Titulo         string          `json:"titulo" db:"titulo"`
	Cantidad       int             `json:"cantidad" db:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" db:"precio_unitario"`
}

// Subtotal returns the line's unit price times its quantity.
func (l OrderLine) Subtotal() decimal.Decimal {
	return LineTotal(l.PrecioUnitario, l.Cantidad)
}

// OrderTotal sums the subtotals of lines.
func OrderTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// CreateOrderRequest is the payload of POST /ordenes.
type CreateOrderRequest struct {
	Productos      []OrderItemRequest `json:"productos" validate:"dive"`
	MetodoPago     string             `json:"metodo_pago"`
	PuntoEncuentro string             `json:"punto_encuentro"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductoID uuid.UUID `json:"producto_id" validate:"required"`
	Cantidad   int       `json:"cantidad"`
}

// UpdateOrderRequest is the payload of PATCH /ordenes/{id}.
type UpdateOrderRequest struct {
	Estado         *OrderStatus `json:"estado"`
	MetodoPago     *string      `json:"metodo_pago"`
	PuntoEncuentro *string      `json:"punto_encuentro"`
}

// CreateOrderLineRequest is the payload of POST /detalles-orden.
type CreateOrderLineRequest struct {
	OrdenID    uuid.UUID `json:"orden_id" validate:"required"`
	ProductoID uuid.UUID `json:"producto_id" validate:"required"`
	Cantidad   int       `json:"cantidad"`
}

// UpdateOrderLineRequest is the payload of PATCH /detalles-orden/{id}. The unit
// price is only decoded so that attempts to change it can be rejected.
type UpdateOrderLineRequest struct {
	Cantidad       *int             `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

// SaleLine is an order line resolved to its product and seller for payment
// confirmation. Product and Seller are nil when the product has been deleted.
type SaleLine struct {
	Line    OrderLine
	Product *Product
	Seller  *User
}
