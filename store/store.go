// Package store persists products, users and orders. Two backends are
// provided: GORM (MySQL, Postgres, SQLite) and MongoDB.
package store

import (
	"context"
	"errors"

	"github.com/Kariqs/goutam-store/models"
)

// Sentinel errors for store operations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
	// ErrIntegrity is returned when a stored document cannot be decoded into
	// a valid record.
	ErrIntegrity = errors.New("data integrity error")
)

type ProductStore interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	SetProductAvailability(ctx context.Context, id string, available bool) (models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type UserStore interface {
	CountUsers(ctx context.Context) (int64, error)
	// CreateUser stores the identity record and the profile together.
	CreateUser(ctx context.Context, cred *models.Credential, profile *models.UserProfile) error
	GetUser(ctx context.Context, id string) (models.UserProfile, error)
	GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	ListUsers(ctx context.Context) ([]models.UserProfile, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.UserProfile, error)
	SetUserDisabled(ctx context.Context, id string, disabled bool) (models.UserProfile, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	// GetOrder looks an order up by document id or human-readable order id.
	GetOrder(ctx context.Context, id string) (models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error)
}

type Store interface {
	ProductStore
	UserStore
	OrderStore
	Close(ctx context.Context) error
}
