package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/Kariqs/goutam-store/cart"
	"github.com/go-resty/resty/v2"
)

const DefaultRazorpayURL = "https://api.razorpay.com/v1"

type RazorpayGateway struct {
	keyID     string
	keySecret string
	client    *resty.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL string) *RazorpayGateway {
	if baseURL == "" {
		baseURL = DefaultRazorpayURL
	}
	client := resty.New().
		SetTimeout(30*time.Second).
		SetBaseURL(baseURL).
		SetBasicAuth(keyID, keySecret).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &RazorpayGateway{keyID: keyID, keySecret: keySecret, client: client}
}

func (g *RazorpayGateway) Name() string { return "Razorpay" }

func (g *RazorpayGateway) Configured() bool { return g.keyID != "" && g.keySecret != "" }

func (g *RazorpayGateway) PublicKey() string { return g.keyID }

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (ProviderOrder, error) {
	body := map[string]any{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}

	var created razorpayOrder
	var apiErr razorpayError
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&created).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		return ProviderOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return ProviderOrder{}, fmt.Errorf("razorpay create order failed with status %d: %s", resp.StatusCode(), apiErr.Error.Description)
	}
	if created.ID == "" {
		return ProviderOrder{}, fmt.Errorf("razorpay create order: no order id in response: %s", resp.Body())
	}
	return ProviderOrder{ID: created.ID, Amount: created.Amount, Currency: created.Currency}, nil
}

// Signature is the checksum Razorpay's widget returns for a successful payment.
func (g *RazorpayGateway) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *RazorpayGateway) Verify(_ context.Context, pending cart.PendingCheckout, c Confirmation) error {
	if c.PaymentID == "" || c.Signature == "" {
		return fmt.Errorf("missing payment id or signature")
	}
	expected := g.Signature(pending.ProviderOrderID, c.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(c.Signature)) {
		return fmt.Errorf("signature mismatch for payment %s", c.PaymentID)
	}
	return nil
}
