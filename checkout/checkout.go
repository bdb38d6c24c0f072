// Package checkout turns a session's cart into an order, either as a cash
// order or through a hosted payment gateway.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/Kariqs/goutam-store/utils"
	"github.com/shopspring/decimal"
)

var (
	ErrAuthRequired         = errors.New("please log in to place an order")
	ErrEmptyCart            = errors.New("your cart is empty")
	ErrGatewayNotConfigured = errors.New("online payments are not configured")
	ErrNothingToPay         = errors.New("cart total must be greater than zero")
	ErrPaymentCancelled     = errors.New("payment cancelled")
	ErrPaymentFailed        = errors.New("could not start the payment")
	ErrPaymentVerification  = errors.New("payment verification failed")
	ErrNoPendingCheckout    = errors.New("no payment in progress")
	ErrOrderFailed          = errors.New("failed to place order")
)

const (
	ProviderCash  = "Cash"
	CashPaymentID = "N/A"
)

// OrderObserver is told about every order after it is stored.
type OrderObserver interface {
	OrderPlaced(ctx context.Context, o models.Order)
}

type Options struct {
	Orders    store.OrderStore
	Gateway   Gateway
	Currency  string
	StoreName string
	Observers []OrderObserver
	Logger    *slog.Logger
}

type Service struct {
	orders     store.OrderStore
	gateway    Gateway
	currency   string
	storeName  string
	observers  []OrderObserver
	log        *slog.Logger
	newOrderID func() (string, error)
	now        func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = "INR"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		orders:     opts.Orders,
		gateway:    opts.Gateway,
		currency:   opts.Currency,
		storeName:  opts.StoreName,
		observers:  opts.Observers,
		log:        opts.Logger,
		newOrderID: utils.NewOrderID,
		now:        time.Now,
	}
}

// MinorUnits converts a currency amount to its smallest unit (paise for INR).
func MinorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *Service) preconditions(sess *cart.Session) error {
	if !sess.Authenticated || sess.UserID == "" {
		return ErrAuthRequired
	}
	if sess.Cart.IsEmpty() {
		return ErrEmptyCart
	}
	return nil
}

func (s *Service) buildOrder(userID, orderID string, items []models.OrderItem, total float64, status models.OrderStatus, payment models.PaymentDetails) models.Order {
	return models.Order{
		OrderID:        orderID,
		UserID:         userID,
		Status:         status,
		Total:          total,
		Items:          items,
		PaymentDetails: &payment,
	}
}

func (s *Service) persist(ctx context.Context, sess *cart.Session, order *models.Order) error {
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.log.Error("order write failed", "order_id", order.OrderID, "user_id", order.UserID, "error", err)
		return fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}
	sess.Cart.Clear()
	for _, o := range s.observers {
		o.OrderPlaced(ctx, *order)
	}
	s.log.Info("order placed", "order_id", order.OrderID, "user_id", order.UserID, "status", order.Status, "total", order.Total)
	return nil
}

// PlaceCashOrder records the cart as a cash order and empties the cart. The
// cart is left as it was when the order cannot be stored.
func (s *Service) PlaceCashOrder(ctx context.Context, sess *cart.Session) (models.Order, error) {
	if err := s.preconditions(sess); err != nil {
		return models.Order{}, err
	}
	orderID, err := s.newOrderID()
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrOrderFailed, err)
	}
	total, _ := sess.Cart.Total().Float64()
	order := s.buildOrder(sess.UserID, orderID, sess.Cart.OrderItems(), total, models.OrderStatusCash, models.PaymentDetails{
		Provider:  ProviderCash,
		PaymentID: CashPaymentID,
	})
	if err := s.persist(ctx, sess, &order); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WidgetConfig is everything the browser needs to open the provider's
// payment widget.
type WidgetConfig struct {
	Provider        string  `json:"provider"`
	Key             string  `json:"key"`
	Amount          int64   `json:"amount"`
	Currency        string  `json:"currency"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	OrderID         string  `json:"orderId"`
	ProviderOrderID string  `json:"providerOrderId"`
	ClientSecret    string  `json:"clientSecret,omitempty"`
	Prefill         Prefill `json:"prefill"`
}

// BeginGatewayCheckout opens a payment with the provider and remembers it on
// the session. Nothing is sent to the provider when it is not configured.
func (s *Service) BeginGatewayCheckout(ctx context.Context, sess *cart.Session, customer models.UserProfile) (WidgetConfig, error) {
	if err := s.preconditions(sess); err != nil {
		return WidgetConfig{}, err
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return WidgetConfig{}, ErrGatewayNotConfigured
	}
	total := sess.Cart.Total()
	amount := MinorUnits(total)
	if amount <= 0 {
		return WidgetConfig{}, ErrNothingToPay
	}
	orderID, err := s.newOrderID()
	if err != nil {
		return WidgetConfig{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	po, err := s.gateway.CreateOrder(ctx, OrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  orderID,
		Notes:    map[string]string{"userId": sess.UserID},
	})
	if err != nil {
		s.log.Error("payment provider rejected order", "provider", s.gateway.Name(), "order_id", orderID, "error", err)
		return WidgetConfig{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	sess.Pending = &cart.PendingCheckout{
		Provider:        s.gateway.Name(),
		OrderID:         orderID,
		ProviderOrderID: po.ID,
		Amount:          amount,
		Currency:        s.currency,
		Items:           sess.Cart.OrderItems(),
		Total:           total.Round(2).InexactFloat64(),
		CreatedAt:       s.now().UTC(),
	}
	return WidgetConfig{
		Provider:        s.gateway.Name(),
		Key:             s.gateway.PublicKey(),
		Amount:          amount,
		Currency:        s.currency,
		Name:            s.storeName,
		Description:     "Order " + orderID,
		OrderID:         orderID,
		ProviderOrderID: po.ID,
		ClientSecret:    po.ClientSecret,
		Prefill:         Prefill{Name: customer.Name, Email: customer.Email},
	}, nil
}

// ConfirmGatewayCheckout verifies the provider's confirmation for the pending
// payment, stores a paid order for exactly what was charged and empties the
// cart. Items added after the payment was started are not part of the order.
func (s *Service) ConfirmGatewayCheckout(ctx context.Context, sess *cart.Session, c Confirmation) (models.Order, error) {
	if !sess.Authenticated || sess.UserID == "" {
		return models.Order{}, ErrAuthRequired
	}
	pending := sess.Pending
	if pending == nil {
		return models.Order{}, ErrNoPendingCheckout
	}
	if s.gateway == nil || !s.gateway.Configured() {
		return models.Order{}, ErrGatewayNotConfigured
	}
	if c.ProviderOrderID != "" && c.ProviderOrderID != pending.ProviderOrderID {
		return models.Order{}, fmt.Errorf("%w: order %s is not the pending payment", ErrPaymentVerification, c.ProviderOrderID)
	}
	if err := s.gateway.Verify(ctx, *pending, c); err != nil {
		s.log.Warn("payment verification failed", "provider", pending.Provider, "order_id", pending.OrderID, "error", err)
		return models.Order{}, fmt.Errorf("%w: %v", ErrPaymentVerification, err)
	}
	if len(pending.Items) == 0 {
		return models.Order{}, ErrEmptyCart
	}
	if MinorUnits(decimal.NewFromFloat(pending.Total)) != pending.Amount {
		return models.Order{}, fmt.Errorf("%w: order total does not match the charged amount", ErrPaymentVerification)
	}

	order := s.buildOrder(sess.UserID, pending.OrderID, pending.Items, pending.Total, models.OrderStatusPaid, models.PaymentDetails{
		Provider:  pending.Provider,
		PaymentID: c.PaymentID,
		OrderID:   pending.ProviderOrderID,
		Signature: c.Signature,
	})
	if err := s.persist(ctx, sess, &order); err != nil {
		s.log.Error("payment captured but order not stored", "payment_id", c.PaymentID, "order_id", pending.OrderID)
		return models.Order{}, err
	}
	sess.Pending = nil
	return order, nil
}

// CancelGatewayCheckout forgets the pending payment. The cart is untouched.
func (s *Service) CancelGatewayCheckout(sess *cart.Session) error {
	sess.Pending = nil
	return ErrPaymentCancelled
}

// GatewayName is empty when no gateway is configured.
func (s *Service) GatewayName() string {
	if s.gateway == nil || !s.gateway.Configured() {
		return ""
	}
	return s.gateway.Name()
}
