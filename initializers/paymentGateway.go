package initializers

import (
	"log"
	"strings"

	"github.com/Kariqs/goutam-store/checkout"
)

// NewPaymentGateway returns the gateway named by PAYMENT_PROVIDER. A gateway
// without keys is still returned; checkout reports it as not configured.
func NewPaymentGateway(cfg Config) checkout.Gateway {
	switch strings.ToLower(cfg.PaymentProvider) {
	case "stripe":
		return checkout.NewStripeGateway(cfg.StripeSecretKey, cfg.StripePublishableKey, nil)
	case "razorpay":
		return checkout.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	case "", "none":
		return nil
	default:
		log.Printf("Unknown PAYMENT_PROVIDER %q, online payments disabled", cfg.PaymentProvider)
		return nil
	}
}
