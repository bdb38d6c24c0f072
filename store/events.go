package store

import (
	"context"

	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/realtime"
)

// Publisher receives change events after successful writes.
type Publisher interface {
	Publish(evt realtime.Event)
}

// WithEvents wraps s so that every successful write is published to p,
// giving feeds an incremental change stream after their initial snapshot.
func WithEvents(s Store, p Publisher) Store {
	return &eventStore{Store: s, pub: p}
}

type eventStore struct {
	Store
	pub Publisher
}

func (s *eventStore) emit(topic string, kind realtime.Kind, id string, data any) {
	s.pub.Publish(realtime.Event{Topic: topic, Kind: kind, ID: id, Data: data})
}

func (s *eventStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.Store.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.emit(realtime.TopicProducts, realtime.KindAdded, p.ID, *p)
	return nil
}

func (s *eventStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.Store.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.emit(realtime.TopicProducts, realtime.KindModified, p.ID, *p)
	return nil
}

func (s *eventStore) SetProductAvailability(ctx context.Context, id string, available bool) (models.Product, error) {
	p, err := s.Store.SetProductAvailability(ctx, id, available)
	if err != nil {
		return p, err
	}
	s.emit(realtime.TopicProducts, realtime.KindModified, p.ID, p)
	return p, nil
}

func (s *eventStore) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.emit(realtime.TopicProducts, realtime.KindRemoved, id, nil)
	return nil
}

func (s *eventStore) CreateUser(ctx context.Context, cred *models.Credential, profile *models.UserProfile) error {
	if err := s.Store.CreateUser(ctx, cred, profile); err != nil {
		return err
	}
	s.emit(realtime.TopicUsers, realtime.KindAdded, profile.ID, *profile)
	return nil
}

func (s *eventStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.UserProfile, error) {
	u, err := s.Store.UpdateProfile(ctx, id, update)
	if err != nil {
		return u, err
	}
	s.emit(realtime.TopicUsers, realtime.KindModified, u.ID, u)
	return u, nil
}

func (s *eventStore) SetUserDisabled(ctx context.Context, id string, disabled bool) (models.UserProfile, error) {
	u, err := s.Store.SetUserDisabled(ctx, id, disabled)
	if err != nil {
		return u, err
	}
	s.emit(realtime.TopicUsers, realtime.KindModified, u.ID, u)
	return u, nil
}

func (s *eventStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := s.Store.CreateOrder(ctx, o); err != nil {
		return err
	}
	s.emit(realtime.TopicOrders, realtime.KindAdded, o.ID, *o)
	return nil
}

func (s *eventStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	o, err := s.Store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return o, err
	}
	s.emit(realtime.TopicOrders, realtime.KindModified, o.ID, o)
	return o, nil
}
