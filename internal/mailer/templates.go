package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleSubject     = "¡Has vendido un producto!"
	PurchaseSubject = "Confirmación de tu compra - Ecommerce ITESO"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Format("02/01/2006, 15:04:05") },
}

var saleTemplate = template.Must(template.New("sale").Funcs(funcs).Parse(`
<h2>Notificación de Venta - Ecommerce ITESO</h2>
<p>Estimado/a {{with .SellerName}}{{.}}{{else}}vendedor{{end}},</p>
<p>Te informamos que has vendido el producto <strong>{{.ProductTitle}}</strong>.</p>
<p><strong>Cantidad:</strong> {{.Quantity}}</p>
<p><strong>Total:</strong> {{money .Total}}</p>
<p><strong>Comprador:</strong> {{.BuyerEmail}}</p>
<p>Gracias por utilizar nuestra plataforma.</p>
<p><em>Ecommerce ITESO</em></p>
`))

var purchaseTemplate = template.Must(template.New("purchase").Funcs(funcs).Parse(`
<h2>Gracias por tu compra en Ecommerce ITESO</h2>
<p>Estimado/a {{with .BuyerName}}{{.}}{{else}}cliente{{end}},</p>
<p>Has realizado una compra con éxito. Aquí tienes los detalles:</p>
<ul>
{{- range .Lines}}
  <li>{{.Title}} x{{.Quantity}} - {{money .Subtotal}}</li>
{{- end}}
</ul>
<p><strong>Total pagado:</strong> {{money .TotalPaid}}</p>
<p><strong>Fecha y hora de pago:</strong> {{date .PaidAt}}</p>
{{- with .MeetingPoint}}
<p><strong>Punto de encuentro:</strong> {{.}}</p>
{{- end}}
<p>Gracias por confiar en nuestra plataforma.</p>
<p><em>Ecommerce ITESO</em></p>
`))

// SaleEmail is the data of the "you sold an item" email.
type SaleEmail struct {
	SellerName   string
	ProductTitle string
	Quantity     int
	Total        decimal.Decimal
	BuyerEmail   string
}

// PurchaseLine is one line of the buyer's confirmation email.
type PurchaseLine struct {
	Title    string
	Quantity int
	Subtotal decimal.Decimal
}

// PurchaseEmail is the data of the buyer's confirmation email.
type PurchaseEmail struct {
	BuyerName    string
	Lines        []PurchaseLine
	TotalPaid    decimal.Decimal
	PaidAt       time.Time
	MeetingPoint string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// RenderSale renders the seller notification body.
func RenderSale(data SaleEmail) (string, error) {
	return render(saleTemplate, data)
}

// RenderPurchase renders the buyer confirmation body.
func RenderPurchase(data PurchaseEmail) (string, error) {
	return render(purchaseTemplate, data)
}
