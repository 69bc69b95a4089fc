package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the per-user staging list of products awaiting purchase.
type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UsuarioID uuid.UUID  `json:"usuario_id" db:"usuario_id"`
	Items     []CartItem `json:"productos"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem is one (product, quantity) pair. Producto is nil when the product
// reference no longer resolves.
type CartItem struct {
	ProductoID uuid.UUID `json:"producto_id" db:"producto_id"`
	Cantidad   int       `json:"cantidad" db:"cantidad"`
	Producto   *Product  `json:"producto,omitempty"`
}

// CartView is the response of GET /carrito.
type CartView struct {
	Productos []CartItem      `json:"productos"`
	Total     decimal.Decimal `json:"total"`
}

// AddToCartRequest is the payload of POST /carrito/agregar. Cantidad defaults to 1.
type AddToCartRequest struct {
	ProductoID uuid.UUID `json:"producto_id" validate:"required"`
	Cantidad   *int      `json:"cantidad" validate:"omitempty,gte=1"`
}

// CheckoutRequest is the payload of POST /carrito/comprar.
type CheckoutRequest struct {
	MetodoPago     string `json:"metodo_pago"`
	PuntoEncuentro string `json:"punto_encuentro"`
}

// CheckoutResponse is returned after a successful cart checkout.
type CheckoutResponse struct {
	Message string `json:"message"`
	Orden   *Order `json:"orden"`
}

// LineTotal returns price × quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
