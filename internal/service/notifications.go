package service

import (
	"encoding/json"
	"fmt"
	"time"

	"campus-market/internal/mailer"
	"campus-market/internal/model"

	"github.com/google/uuid"
)

const (
	saleNoticeMessage = "¡Un usuario ha comprado tu producto!"
	defaultBuyerName  = "Usuario"
)

// saleNotifications builds the outbox rows for a confirmed payment: for every
// line whose product still exists, an email to the seller (when the address
// is known) and a real-time notice; then a single confirmation email to the
// buyer covering all lines.
func saleNotifications(
	payment *model.Payment,
	order *model.Order,
	buyer *model.User,
	lines []model.SaleLine,
	now time.Time,
) ([]model.Notification, error) {
	var out []model.Notification

	buyerEmail, buyerName := "", defaultBuyerName
	if buyer != nil {
		buyerEmail = buyer.Email
		if buyer.Nombre != "" {
			buyerName = buyer.Nombre
		}
	}

	newRow := func(channel model.Channel, recipient string) model.Notification {
		return model.Notification{
			ID:        uuid.New(),
			PaymentID: payment.ID,
			Channel:   channel,
			Recipient: recipient,
			CreatedAt: now,
		}
	}

	purchase := mailer.PurchaseEmail{
		TotalPaid:    payment.Monto,
		PaidAt:       now,
		MeetingPoint: order.PuntoEncuentro,
	}
	if buyer != nil {
		purchase.BuyerName = buyer.Nombre
	}

	for _, sl := range lines {
		line := sl.Line
		subtotal := line.Subtotal()

		title := line.Titulo
		if sl.Product != nil && title == "" {
			title = sl.Product.Titulo
		}
		purchase.Lines = append(purchase.Lines, mailer.PurchaseLine{
			Title:    title,
			Quantity: line.Cantidad,
			Subtotal: subtotal,
		})

		if sl.Product == nil {
			continue
		}

		if sl.Seller != nil && sl.Seller.Email != "" {
			body, err := mailer.RenderSale(mailer.SaleEmail{
				SellerName:   sl.Seller.Nombre,
				ProductTitle: sl.Product.Titulo,
				Quantity:     line.Cantidad,
				Total:        subtotal,
				BuyerEmail:   buyerEmail,
			})
			if err != nil {
				return nil, err
			}
			row := newRow(model.ChannelEmail, sl.Seller.Email)
			row.Subject = mailer.SaleSubject
			row.Body = body
			out = append(out, row)
		}

		payload, err := json.Marshal(model.SaleNotice{
			Mensaje: saleNoticeMessage,
			Producto: model.SaleProduct{
				ID:       sl.Product.ID,
				Titulo:   sl.Product.Titulo,
				Precio:   sl.Product.Precio,
				Cantidad: line.Cantidad,
				Total:    subtotal,
			},
			Comprador: model.SaleCounterpart{ID: payment.UsuarioID, Nombre: buyerName},
			Fecha:     now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode sale notice: %w", err)
		}
		row := newRow(model.ChannelRealtime, sl.Product.UsuarioID.String())
		row.Event = model.EventNewSale
		row.Payload = payload
		out = append(out, row)
	}

	if buyerEmail != "" && len(purchase.Lines) > 0 {
		body, err := mailer.RenderPurchase(purchase)
		if err != nil {
			return nil, err
		}
		row := newRow(model.ChannelEmail, buyerEmail)
		row.Subject = mailer.PurchaseSubject
		row.Body = body
		out = append(out, row)
	}

	return out, nil
}
