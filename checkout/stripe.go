package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kariqs/goutam-store/cart"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway opens a PaymentIntent per checkout and confirms it by reading
// the intent back from Stripe.
type StripeGateway struct {
	publishableKey string
	intents        paymentintent.Client
}

// NewStripeGateway talks to the live API when backend is nil.
func NewStripeGateway(secretKey, publishableKey string, backend stripe.Backend) *StripeGateway {
	if backend == nil {
		backend = stripe.GetBackend(stripe.APIBackend)
	}
	return &StripeGateway{
		publishableKey: publishableKey,
		intents:        paymentintent.Client{B: backend, Key: secretKey},
	}
}

func (g *StripeGateway) Name() string { return "Stripe" }

func (g *StripeGateway) Configured() bool { return g.intents.Key != "" && g.publishableKey != "" }

func (g *StripeGateway) PublicKey() string { return g.publishableKey }

func (g *StripeGateway) CreateOrder(_ context.Context, req OrderRequest) (ProviderOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("orderId", req.Receipt)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.intents.New(params)
	if err != nil {
		return ProviderOrder{}, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return ProviderOrder{
		ID:           pi.ID,
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Verify accepts the payment only when the intent succeeded for the amount
// that was quoted.
func (g *StripeGateway) Verify(_ context.Context, pending cart.PendingCheckout, c Confirmation) error {
	id := c.PaymentID
	if id == "" {
		id = pending.ProviderOrderID
	}
	if id != pending.ProviderOrderID {
		return fmt.Errorf("payment intent %s does not belong to this checkout", id)
	}
	pi, err := g.intents.Get(id, nil)
	if err != nil {
		return fmt.Errorf("stripe get payment intent: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment intent %s is %s", pi.ID, pi.Status)
	}
	if pi.Amount != pending.Amount {
		return fmt.Errorf("payment intent %s amount %d does not match %d", pi.ID, pi.Amount, pending.Amount)
	}
	return nil
}
