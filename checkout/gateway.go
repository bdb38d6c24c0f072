package checkout

import (
	"context"

	"github.com/Kariqs/goutam-store/cart"
)

// OrderRequest asks the provider to open a payment for Amount minor units.
type OrderRequest struct {
	Amount   int64
	Currency string
	// Receipt is the store's human-readable order id.
	Receipt string
	Notes   map[string]string
}

type ProviderOrder struct {
	ID       string
	Amount   int64
	Currency string
	// ClientSecret is only set by providers whose browser widget needs it.
	ClientSecret string
}

// Confirmation is what the browser widget hands back after a payment.
type Confirmation struct {
	ProviderOrderID string `json:"orderId"`
	PaymentID       string `json:"paymentId"`
	Signature       string `json:"signature"`
}

// Gateway is a hosted payment provider.
type Gateway interface {
	Name() string
	// Configured reports whether merchant credentials are present.
	Configured() bool
	// PublicKey is the merchant key handed to the browser widget.
	PublicKey() string
	CreateOrder(ctx context.Context, req OrderRequest) (ProviderOrder, error)
	// Verify checks that the confirmation really settles the pending payment.
	Verify(ctx context.Context, pending cart.PendingCheckout, c Confirmation) error
}
