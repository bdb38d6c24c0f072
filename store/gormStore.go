package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore is the SQL backend. Open the *gorm.DB with TranslateError enabled
// so duplicate keys map to ErrDuplicate.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// Migrate creates or updates the products, users, credentials and orders
// tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{}, &models.UserProfile{}, &models.Credential{}, &models.Order{})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Products

func (s *GormStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("created_at asc").Order("id").Find(&products).Error; err != nil {
		return nil, translate(err)
	}
	for _, p := range products {
		if err := p.Check(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
	}
	return products, nil
}

func (s *GormStore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return p, translate(err)
	}
	if err := p.Check(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return p, nil
}

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	return translate(s.db.WithContext(ctx).Save(p).Error)
}

func (s *GormStore) SetProductAvailability(ctx context.Context, id string, available bool) (models.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return p, err
	}
	if err := s.db.WithContext(ctx).Model(&p).Update("available", available).Error; err != nil {
		return p, translate(err)
	}
	p.Available = available
	return p, nil
}

func (s *GormStore) DeleteProduct(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.UserProfile{}).Count(&count).Error
	return count, translate(err)
}

func (s *GormStore) CreateUser(ctx context.Context, cred *models.Credential, profile *models.UserProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	cred.UserID = profile.ID
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cred).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	}))
}

func (s *GormStore) GetUser(ctx context.Context, id string) (models.UserProfile, error) {
	var u models.UserProfile
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return u, translate(err)
	}
	if _, err := models.ParseRole(string(u.Role)); err != nil {
		return u, fmt.Errorf("%w: user %s: %v", ErrIntegrity, id, err)
	}
	return u, nil
}

func (s *GormStore) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	var c models.Credential
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	return c, translate(err)
}

func (s *GormStore) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	result := s.db.WithContext(ctx).Model(&models.Credential{}).Where("user_id = ?", userID).Update("password_hash", hash)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	var users []models.UserProfile
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *GormStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.UserProfile, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return u, err
	}
	changes := map[string]any{}
	if update.Name != nil {
		changes["name"] = *update.Name
	}
	if update.Address != nil {
		changes["address"] = *update.Address
	}
	if update.PhotoURL != nil {
		changes["photo_url"] = *update.PhotoURL
	}
	if len(changes) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(&u).Updates(changes).Error; err != nil {
		return u, translate(err)
	}
	return s.GetUser(ctx, id)
}

func (s *GormStore) SetUserDisabled(ctx context.Context, id string, disabled bool) (models.UserProfile, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return u, err
	}
	if err := s.db.WithContext(ctx).Model(&u).Update("disabled", disabled).Error; err != nil {
		return u, translate(err)
	}
	u.Disabled = disabled
	return u, nil
}

// Orders

func (s *GormStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Date = s.now().UTC()
	return translate(s.db.WithContext(ctx).Create(o).Error)
}

func (s *GormStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	if err := s.db.WithContext(ctx).Where("id = ? OR order_id = ?", id, id).First(&o).Error; err != nil {
		return o, translate(err)
	}
	if err := o.Check(); err != nil {
		return o, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return o, nil
}

func (s *GormStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(s.db.WithContext(ctx))
}

func (s *GormStore) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(s.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (s *GormStore) findOrders(query *gorm.DB) ([]models.Order, error) {
	var orders []models.Order
	if err := query.Order("date desc").Find(&orders).Error; err != nil {
		return nil, translate(err)
	}
	for _, o := range orders {
		if err := o.Check(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
	}
	return orders, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return o, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", o.ID).Update("status", status).Error; err != nil {
		return o, translate(err)
	}
	o.Status = status
	return o, nil
}
