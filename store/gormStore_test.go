package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/realtime"
	"github.com/Kariqs/goutam-store/store"
	"github.com/Kariqs/goutam-store/store/storetest"
)

func newProduct(name string, unit models.Unit) *models.Product {
	return &models.Product{
		Name:      models.LocalizedText{En: name, Hi: name + " (hi)"},
		Price:     10,
		Category:  "Test",
		Unit:      unit,
		Image:     models.PlaceholderImage,
		Available: true,
	}
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	p := newProduct("Rice", models.UnitKilogram)
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name.Hi != "Rice (hi)" || got.Unit != models.UnitKilogram {
		t.Fatalf("unexpected product %+v", got)
	}

	got.Price = 42
	if err := s.UpdateProduct(ctx, &got); err != nil {
		t.Fatalf("update: %v", err)
	}
	toggled, err := s.SetProductAvailability(ctx, p.ID, false)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if toggled.Available || toggled.Price != 42 {
		t.Fatalf("unexpected product after toggle %+v", toggled)
	}

	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetProduct(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteProduct(ctx, p.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestInvalidUnitIsIntegrityError(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	p := newProduct("Mystery", models.Unit("box"))
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.GetProduct(ctx, p.ID); !errors.Is(err, store.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
	if _, err := s.ListProducts(ctx); !errors.Is(err, store.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity from list, got %v", err)
	}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	profile := &models.UserProfile{Name: "Asha", Email: "asha@example.com", Role: models.RoleAdmin}
	cred := &models.Credential{Email: profile.Email, PasswordHash: "x"}
	if err := s.CreateUser(ctx, cred, profile); err != nil {
		t.Fatalf("create: %v", err)
	}
	if cred.UserID != profile.ID {
		t.Fatalf("credential not linked to profile: %q vs %q", cred.UserID, profile.ID)
	}

	dup := &models.UserProfile{Name: "Other", Email: "asha@example.com", Role: models.RoleUser}
	err := s.CreateUser(ctx, &models.Credential{Email: dup.Email, PasswordHash: "y"}, dup)
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
}

func TestUpdateProfileLeavesRoleAlone(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	profile := &models.UserProfile{Name: "Ravi", Email: "ravi@example.com", Role: models.RoleUser}
	if err := s.CreateUser(ctx, &models.Credential{Email: profile.Email}, profile); err != nil {
		t.Fatal(err)
	}
	name, addr := "Ravi Kumar", "12 Station Road"
	u, err := s.UpdateProfile(ctx, profile.ID, models.ProfileUpdate{Name: &name, Address: &addr})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != name || u.Address != addr || u.Role != models.RoleUser {
		t.Fatalf("unexpected profile %+v", u)
	}

	u, err = s.SetUserDisabled(ctx, profile.ID, true)
	if err != nil || !u.Disabled {
		t.Fatalf("disable: %+v %v", u, err)
	}
	if _, err := s.GetUser(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrdersNewestFirstAndLookup(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	item := models.OrderItem{
		Product:  models.OrderProduct{ID: "p1", Name: models.LocalizedText{En: "Salt", Hi: "नमक"}, Price: 25, Unit: models.UnitKilogram},
		Quantity: 1.5,
	}
	first := &models.Order{OrderID: "AAAAAAAAAA", UserID: "u1", Status: models.OrderStatusCash, Total: 37.5, Items: []models.OrderItem{item}}
	if err := s.CreateOrder(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second := &models.Order{
		OrderID: "BBBBBBBBBB", UserID: "u2", Status: models.OrderStatusPaid, Total: 25,
		Items:          []models.OrderItem{item},
		PaymentDetails: &models.PaymentDetails{Provider: "Razorpay", PaymentID: "pay_1", OrderID: "order_1", Signature: "sig"},
	}
	if err := s.CreateOrder(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].OrderID != "BBBBBBBBBB" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	byHuman, err := s.GetOrder(ctx, "AAAAAAAAAA")
	if err != nil {
		t.Fatalf("get by order id: %v", err)
	}
	if byHuman.ID != first.ID || len(byHuman.Items) != 1 || byHuman.Items[0].Quantity != 1.5 {
		t.Fatalf("unexpected order %+v", byHuman)
	}
	byDoc, err := s.GetOrder(ctx, second.ID)
	if err != nil {
		t.Fatal(err)
	}
	if byDoc.PaymentDetails == nil || byDoc.PaymentDetails.Signature != "sig" {
		t.Fatalf("payment details lost: %+v", byDoc.PaymentDetails)
	}

	mine, err := s.ListOrdersByUser(ctx, "u1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("by user: %v %v", mine, err)
	}

	updated, err := s.UpdateOrderStatus(ctx, first.ID, models.OrderStatusShipped)
	if err != nil || updated.Status != models.OrderStatusShipped {
		t.Fatalf("status: %+v %v", updated, err)
	}
	if _, err := s.UpdateOrderStatus(ctx, "nope", models.OrderStatusShipped); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWithEventsPublishesAfterWrites(t *testing.T) {
	ctx := context.Background()
	hub := realtime.NewHub(nil)
	sub := hub.Subscribe(realtime.TopicProducts)
	defer sub.Close()

	s := store.WithEvents(storetest.New(t), hub)
	p := newProduct("Sugar", models.UnitKilogram)
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteProduct(ctx, p.ID); err == nil {
		t.Fatal("expected error deleting twice")
	}

	want := []realtime.Kind{realtime.KindAdded, realtime.KindRemoved}
	for _, kind := range want {
		select {
		case evt := <-sub.Events():
			if evt.Kind != kind || evt.ID != p.ID {
				t.Fatalf("expected %s for %s, got %+v", kind, p.ID, evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", kind)
		}
	}
	select {
	case evt := <-sub.Events():
		t.Fatalf("unexpected event after failed write: %+v", evt)
	default:
	}
}
