package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// newMockMongoStore answers the three index creations and returns a store
// whose later commands are served from queued mock responses.
func newMockMongoStore(mt *mtest.T) *store.MongoStore {
	mt.Helper()
	mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
	s, err := store.NewMongoStore(context.Background(), mt.Client, mt.DB.Name())
	if err != nil {
		mt.Fatalf("new mongo store: %v", err)
	}
	mt.ClearEvents()
	return s
}

func orderDoc(id, orderID string, unit string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "orderId", Value: orderID},
		{Key: "userId", Value: "u1"},
		{Key: "status", Value: "Cash"},
		{Key: "total", Value: 140.0},
		{Key: "items", Value: bson.A{
			bson.D{
				{Key: "product", Value: bson.D{{Key: "id", Value: "p1"}, {Key: "name", Value: bson.D{{Key: "en", Value: "Atta"}, {Key: "hi", Value: "आटा"}}}, {Key: "price", Value: 70.0}, {Key: "unit", Value: unit}}},
				{Key: "quantity", Value: 2.0},
			},
		}},
	}
}

func TestMongoGetOrderMatchesEitherID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found by order id", func(mt *mtest.T) {
		s := newMockMongoStore(mt)
		ns := mt.DB.Name() + ".orders"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, orderDoc("o-1", "ABCDEFGHIJ", "kg")))

		o, err := s.GetOrder(context.Background(), "ABCDEFGHIJ")
		if err != nil {
			mt.Fatalf("get order: %v", err)
		}
		if o.ID != "o-1" || o.Total != 140 || len(o.Items) != 1 || o.Items[0].Product.Unit != models.UnitKilogram {
			mt.Fatalf("unexpected order %+v", o)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("expected a find command, got %+v", evt)
		}
		or, ok := evt.Command.Lookup("filter", "$or").ArrayOK()
		if !ok {
			mt.Fatalf("filter has no $or: %s", evt.Command)
		}
		values, _ := or.Values()
		if len(values) != 2 {
			mt.Fatalf("$or should match _id and orderId, got %s", or)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		s := newMockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".orders", mtest.FirstBatch))
		if _, err := s.GetOrder(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
			mt.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("bad unit", func(mt *mtest.T) {
		s := newMockMongoStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".orders", mtest.FirstBatch, orderDoc("o-2", "KLMNOPQRST", "box")))
		if _, err := s.GetOrder(context.Background(), "o-2"); !errors.Is(err, store.ErrIntegrity) {
			mt.Fatalf("expected ErrIntegrity, got %v", err)
		}
	})
}

func TestMongoUndecodableProductsAreIntegrityErrors(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		s := newMockMongoStore(mt)
		bad := bson.D{{Key: "_id", Value: "p1"}, {Key: "price", Value: "twelve"}, {Key: "unit", Value: "kg"}}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".products", mtest.FirstBatch, bad))
		if _, err := s.ListProducts(context.Background()); !errors.Is(err, store.ErrIntegrity) {
			mt.Fatalf("expected ErrIntegrity, got %v", err)
		}
	})

	mt.Run("unknown unit", func(mt *mtest.T) {
		s := newMockMongoStore(mt)
		doc := bson.D{{Key: "_id", Value: "p1"}, {Key: "price", Value: 12.0}, {Key: "unit", Value: "box"}}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".products", mtest.FirstBatch, doc))
		if _, err := s.GetProduct(context.Background(), "p1"); !errors.Is(err, store.ErrIntegrity) {
			mt.Fatalf("expected ErrIntegrity, got %v", err)
		}
	})
}

func TestMongoCreateUserRollsBackCredential(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate profile", func(mt *mtest.T) {
		s := newMockMongoStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		cred := &models.Credential{Email: "asha@example.com", PasswordHash: "hash"}
		profile := &models.UserProfile{Name: "Asha", Email: "asha@example.com", Role: models.RoleUser}
		err := s.CreateUser(context.Background(), cred, profile)
		if !errors.Is(err, store.ErrDuplicate) {
			mt.Fatalf("expected ErrDuplicate, got %v", err)
		}

		var commands []string
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			commands = append(commands, evt.CommandName+":"+evt.Command.Lookup(evt.CommandName).StringValue())
			if evt.CommandName == "delete" {
				deletes, _ := evt.Command.Lookup("deletes").Array().Values()
				if len(deletes) != 1 || deletes[0].Document().Lookup("q", "_id").StringValue() != profile.ID {
					mt.Fatalf("rollback should delete the credential for %s, got %s", profile.ID, evt.Command)
				}
			}
		}
		want := []string{"insert:credentials", "insert:users", "delete:credentials"}
		if len(commands) != len(want) {
			mt.Fatalf("commands = %v, want %v", commands, want)
		}
		for i := range want {
			if commands[i] != want[i] {
				mt.Fatalf("commands = %v, want %v", commands, want)
			}
		}
	})
}
