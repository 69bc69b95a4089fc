// Package payment requests hosted checkout sessions from the payment provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// ProductDescription is the single line item shown on the hosted page.
const ProductDescription = "Compra de productos"

// ErrNotConfigured is returned when no provider secret key is set.
var ErrNotConfigured = errors.New("payment provider is not configured")

// CheckoutInput describes a session request.
type CheckoutInput struct {
	PaymentID uuid.UUID
	Amount    decimal.Decimal
}

// CheckoutSession is the provider's answer.
type CheckoutSession struct {
	ID  string
	URL string
}

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error)
}

// sessionCreator is satisfied by *session.Client.
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider implements Provider with Stripe Checkout.
type StripeProvider struct {
	sessions    sessionCreator
	currency    string
	frontendURL string
	logger      zerolog.Logger
}

// NewStripeProvider creates a provider using secretKey.
func NewStripeProvider(secretKey, currency, frontendURL string, logger zerolog.Logger) *StripeProvider {
	var sessions sessionCreator
	if secretKey != "" {
		sessions = &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	}
	return &StripeProvider{
		sessions:    sessions,
		currency:    strings.ToLower(currency),
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.With().Str("component", "stripe").Logger(),
	}
}

// MinorUnits converts an amount to cents, rounding half away from zero.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// SuccessURL is where the provider returns the buyer after paying.
func (p *StripeProvider) SuccessURL(paymentID uuid.UUID) string {
	return fmt.Sprintf("%s/pago-exitoso/%s", p.frontendURL, paymentID)
}

// CancelURL is where the provider returns the buyer after abandoning.
func (p *StripeProvider) CancelURL(paymentID uuid.UUID) string {
	return fmt.Sprintf("%s/pago-cancelado/%s", p.frontendURL, paymentID)
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (*CheckoutSession, error) {
	if p.sessions == nil {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(ProductDescription),
					},
					UnitAmount: stripe.Int64(MinorUnits(in.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(in.PaymentID.String()),
		SuccessURL:        stripe.String(p.SuccessURL(in.PaymentID)),
		CancelURL:         stripe.String(p.CancelURL(in.PaymentID)),
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		p.logger.Error().Err(err).Str("payment_id", in.PaymentID.String()).Msg("failed to create checkout session")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	p.logger.Info().
		Str("payment_id", in.PaymentID.String()).
		Str("session_id", s.ID).
		Msg("checkout session created")

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}
