package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"github.com/Kariqs/goutam-store/store/storetest"
	"github.com/shopspring/decimal"
)

func product(id string, price float64, unit models.Unit) models.Product {
	return models.Product{ID: id, Name: models.LocalizedText{En: id, Hi: id}, Price: price, Category: "Test", Unit: unit, Available: true}
}

// session140 is a signed-in session whose cart totals 140.
func session140(t *testing.T) *cart.Session {
	t.Helper()
	s := cart.NewSession("")
	s.Login("user-1", models.RoleUser)
	if err := s.Cart.Add(product("atta", 55, models.UnitKilogram), 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Cart.Add(product("soap", 30, models.UnitPiece), 1); err != nil {
		t.Fatal(err)
	}
	return s
}

type recordingObserver struct{ orders []models.Order }

func (r *recordingObserver) OrderPlaced(_ context.Context, o models.Order) { r.orders = append(r.orders, o) }

func TestPlaceCashOrder(t *testing.T) {
	ctx := context.Background()
	st := storetest.New(t)
	obs := &recordingObserver{}
	svc := NewService(Options{Orders: st, Observers: []OrderObserver{obs}})
	sess := session140(t)

	order, err := svc.PlaceCashOrder(ctx, sess)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if order.Status != models.OrderStatusCash || order.Total != 140 || len(order.Items) != 2 {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.PaymentDetails == nil || order.PaymentDetails.Provider != "Cash" || order.PaymentDetails.PaymentID != "N/A" {
		t.Fatalf("unexpected payment details %+v", order.PaymentDetails)
	}
	if len(order.OrderID) != 10 {
		t.Fatalf("order id %q should have 10 characters", order.OrderID)
	}
	if !sess.Cart.IsEmpty() {
		t.Fatal("cart should be empty after the order")
	}

	stored, err := st.ListOrdersByUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Date.IsZero() {
		t.Fatalf("expected one stored order with a date, got %+v", stored)
	}
	if len(obs.orders) != 1 {
		t.Fatalf("observer saw %d orders", len(obs.orders))
	}
}

func TestPreconditions(t *testing.T) {
	svc := NewService(Options{Orders: storetest.New(t)})

	anon := cart.NewSession("")
	_ = anon.Cart.Add(product("atta", 55, models.UnitKilogram), 1)
	if _, err := svc.PlaceCashOrder(context.Background(), anon); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}

	empty := cart.NewSession("")
	empty.Login("user-1", models.RoleUser)
	if _, err := svc.PlaceCashOrder(context.Background(), empty); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

type failingOrders struct{ store.OrderStore }

func (failingOrders) CreateOrder(context.Context, *models.Order) error {
	return errors.New("database unavailable")
}

func TestFailedWriteKeepsCart(t *testing.T) {
	svc := NewService(Options{Orders: failingOrders{}})
	sess := session140(t)

	if _, err := svc.PlaceCashOrder(context.Background(), sess); !errors.Is(err, ErrOrderFailed) {
		t.Fatalf("expected ErrOrderFailed, got %v", err)
	}
	if sess.Cart.Count() != 2 {
		t.Fatalf("cart changed after failed write: %+v", sess.Cart.Items)
	}
}

func TestMinorUnits(t *testing.T) {
	tests := map[string]int64{
		"140":     14000,
		"0.3":     30,
		"99.995":  10000,
		"12.344":  1234,
		"1234.56": 123456,
	}
	for in, want := range tests {
		if got := MinorUnits(decimal.RequireFromString(in)); got != want {
			t.Errorf("MinorUnits(%s) = %d, want %d", in, got, want)
		}
	}
}

func newRazorpayServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "rzp_secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
			return
		}
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body struct {
			Amount   int64  `json:"amount"`
			Currency string `json:"currency"`
			Receipt  string `json:"receipt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "order_TEST123", "amount": body.Amount, "currency": body.Currency, "receipt": body.Receipt, "status": "created",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGatewayNotConfiguredSendsNothing(t *testing.T) {
	var hits int32
	srv := newRazorpayServer(t, &hits)
	svc := NewService(Options{Orders: storetest.New(t), Gateway: NewRazorpayGateway("", "", srv.URL)})

	sess := session140(t)
	if _, err := svc.BeginGatewayCheckout(context.Background(), sess, models.UserProfile{}); !errors.Is(err, ErrGatewayNotConfigured) {
		t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatal("provider was contacted without credentials")
	}
	if sess.Cart.Count() != 2 {
		t.Fatal("cart should be untouched")
	}
}

func TestRazorpayCheckout(t *testing.T) {
	ctx := context.Background()
	var hits int32
	srv := newRazorpayServer(t, &hits)
	gw := NewRazorpayGateway("rzp_test_key", "rzp_secret", srv.URL)
	st := storetest.New(t)
	svc := NewService(Options{Orders: st, Gateway: gw, StoreName: "Goutam Store"})
	sess := session140(t)

	widget, err := svc.BeginGatewayCheckout(ctx, sess, models.UserProfile{Name: "Asha", Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if widget.Amount != 14000 || widget.Currency != "INR" || widget.Key != "rzp_test_key" || widget.ProviderOrderID != "order_TEST123" {
		t.Fatalf("unexpected widget config %+v", widget)
	}
	if widget.Prefill.Email != "asha@example.com" || sess.Pending == nil {
		t.Fatalf("pending checkout not recorded: %+v", sess.Pending)
	}

	bad := Confirmation{ProviderOrderID: "order_TEST123", PaymentID: "pay_1", Signature: "forged"}
	if _, err := svc.ConfirmGatewayCheckout(ctx, sess, bad); !errors.Is(err, ErrPaymentVerification) {
		t.Fatalf("expected ErrPaymentVerification, got %v", err)
	}
	if sess.Cart.Count() != 2 {
		t.Fatal("cart must survive a failed verification")
	}

	good := Confirmation{ProviderOrderID: "order_TEST123", PaymentID: "pay_1", Signature: gw.Signature("order_TEST123", "pay_1")}
	order, err := svc.ConfirmGatewayCheckout(ctx, sess, good)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if order.Status != models.OrderStatusPaid || order.OrderID != widget.OrderID || order.PaymentDetails.Provider != "Razorpay" {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.PaymentDetails.Signature != good.Signature || order.PaymentDetails.OrderID != "order_TEST123" {
		t.Fatalf("payment details not kept: %+v", order.PaymentDetails)
	}
	if !sess.Cart.IsEmpty() || sess.Pending != nil {
		t.Fatal("cart and pending checkout should be cleared")
	}
}

func TestCancelKeepsCart(t *testing.T) {
	ctx := context.Background()
	var hits int32
	srv := newRazorpayServer(t, &hits)
	svc := NewService(Options{Orders: storetest.New(t), Gateway: NewRazorpayGateway("rzp_test_key", "rzp_secret", srv.URL)})
	sess := session140(t)

	if _, err := svc.BeginGatewayCheckout(ctx, sess, models.UserProfile{}); err != nil {
		t.Fatal(err)
	}
	if err := svc.CancelGatewayCheckout(sess); !errors.Is(err, ErrPaymentCancelled) {
		t.Fatalf("expected ErrPaymentCancelled, got %v", err)
	}
	if sess.Pending != nil || sess.Cart.Count() != 2 {
		t.Fatalf("unexpected session after cancel: %+v", sess)
	}
	if _, err := svc.ConfirmGatewayCheckout(ctx, sess, Confirmation{PaymentID: "pay_1"}); !errors.Is(err, ErrNoPendingCheckout) {
		t.Fatalf("expected ErrNoPendingCheckout, got %v", err)
	}
}

func TestZeroTotalCannotBePaidOnline(t *testing.T) {
	var hits int32
	srv := newRazorpayServer(t, &hits)
	svc := NewService(Options{Orders: storetest.New(t), Gateway: NewRazorpayGateway("rzp_test_key", "rzp_secret", srv.URL)})

	sess := cart.NewSession("")
	sess.Login("user-1", models.RoleUser)
	_ = sess.Cart.Add(product("atta", 55, models.UnitKilogram), 0)
	if _, err := svc.BeginGatewayCheckout(context.Background(), sess, models.UserProfile{}); !errors.Is(err, ErrNothingToPay) {
		t.Fatalf("expected ErrNothingToPay, got %v", err)
	}
}

func TestConfirmRecordsWhatWasCharged(t *testing.T) {
	ctx := context.Background()
	var hits int32
	srv := newRazorpayServer(t, &hits)
	gw := NewRazorpayGateway("rzp_test_key", "rzp_secret", srv.URL)
	st := storetest.New(t)
	svc := NewService(Options{Orders: st, Gateway: gw})
	sess := session140(t)

	widget, err := svc.BeginGatewayCheckout(ctx, sess, models.UserProfile{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := sess.Cart.Add(product("ghee", 1000, models.UnitPiece), 5); err != nil {
		t.Fatal(err)
	}

	c := Confirmation{ProviderOrderID: "order_TEST123", PaymentID: "pay_1", Signature: gw.Signature("order_TEST123", "pay_1")}
	order, err := svc.ConfirmGatewayCheckout(ctx, sess, c)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if MinorUnits(decimal.NewFromFloat(order.Total)) != widget.Amount {
		t.Fatalf("order total %v does not match charged %d", order.Total, widget.Amount)
	}
	if order.Total != 140 || len(order.Items) != 2 {
		t.Fatalf("order should hold the charged cart, got total=%v items=%d", order.Total, len(order.Items))
	}
	stored, err := st.GetOrder(ctx, order.OrderID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Total != 140 {
		t.Fatalf("stored total = %v", stored.Total)
	}
}

func TestConfirmRejectsTamperedSnapshot(t *testing.T) {
	ctx := context.Background()
	var hits int32
	srv := newRazorpayServer(t, &hits)
	gw := NewRazorpayGateway("rzp_test_key", "rzp_secret", srv.URL)
	svc := NewService(Options{Orders: storetest.New(t), Gateway: gw})
	sess := session140(t)

	if _, err := svc.BeginGatewayCheckout(ctx, sess, models.UserProfile{}); err != nil {
		t.Fatal(err)
	}
	sess.Pending.Total = 5140

	c := Confirmation{ProviderOrderID: "order_TEST123", PaymentID: "pay_1", Signature: gw.Signature("order_TEST123", "pay_1")}
	if _, err := svc.ConfirmGatewayCheckout(ctx, sess, c); !errors.Is(err, ErrPaymentVerification) {
		t.Fatalf("expected ErrPaymentVerification, got %v", err)
	}
}
