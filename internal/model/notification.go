package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel is the delivery channel of an outbox notification.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelRealtime Channel = "realtime"
)

// NotificationStatus is the delivery status of an outbox notification.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Real-time event names.
const (
	EventRegisterUser = "register-user"
	EventNewSale      = "nueva-venta"
	// EventSaleBroadcastPrefix is suffixed with the seller id when the seller
	// has no registered session.
	EventSaleBroadcastPrefix = "nueva-compra-"
)

// Notification is one outbox row produced by payment confirmation. For email
// rows Recipient is an address; for realtime rows it is the seller's user id.
type Notification struct {
	ID        uuid.UUID          `db:"id"`
	PaymentID uuid.UUID          `db:"payment_id"`
	Channel   Channel            `db:"channel"`
	Recipient string             `db:"recipient"`
	Subject   string             `db:"subject"`
	Body      string             `db:"body"`
	Event     string             `db:"event"`
	Payload   json.RawMessage    `db:"payload"`
	Status    NotificationStatus `db:"status"`
	Attempts  int                `db:"attempts"`
	LastError string             `db:"last_error"`
	CreatedAt time.Time          `db:"created_at"`
	SentAt    *time.Time         `db:"sent_at"`
}

// SaleNotice is the payload pushed to a seller when one of their products is bought.
type SaleNotice struct {
	Mensaje   string          `json:"mensaje"`
	Producto  SaleProduct     `json:"producto"`
	Comprador SaleCounterpart `json:"comprador"`
	Fecha     time.Time       `json:"fecha"`
}

// SaleProduct summarises the product sold.
type SaleProduct struct {
	ID       uuid.UUID       `json:"id"`
	Titulo   string          `json:"titulo"`
	Precio   decimal.Decimal `json:"precio"`
	Cantidad int             `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

// SaleCounterpart identifies the buyer in a sale notice.
type SaleCounterpart struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
}

// SaleBroadcast is what every connected client receives when the seller has
// no session. It leaves out the buyer's name and the quantities.
type SaleBroadcast struct {
	Mensaje     string            `json:"mensaje"`
	Producto    SaleBroadcastItem `json:"producto"`
	CompradorID uuid.UUID         `json:"compradorId"`
}

type SaleBroadcastItem struct {
	ID     uuid.UUID       `json:"id"`
	Titulo string          `json:"titulo"`
	Precio decimal.Decimal `json:"precio"`
}

// Broadcast reduces n to its public form.
func (n SaleNotice) Broadcast() SaleBroadcast {
	return SaleBroadcast{
		Mensaje: n.Mensaje,
		Producto: SaleBroadcastItem{
			ID:     n.Producto.ID,
			Titulo: n.Producto.Titulo,
			Precio: n.Producto.Precio,
		},
		CompradorID: n.Comprador.ID,
	}
}
