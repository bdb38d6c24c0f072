package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kariqs/goutam-store/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection    = "products"
	usersCollection       = "users"
	credentialsCollection = "credentials"
	ordersCollection      = "orders"
)

// MongoStore keeps each record kind in its own collection with string _id values.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// NewMongoStore uses an already connected client and creates the unique indexes
// the other backends get from their schema.
func NewMongoStore(ctx context.Context, client *mongo.Client, database string) (*MongoStore, error) {
	s := &MongoStore{client: client, db: client.Database(database), now: time.Now}
	indexes := map[string]mongo.IndexModel{
		usersCollection:       {Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		credentialsCollection: {Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		ordersCollection:      {Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	for coll, model := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return nil, fmt.Errorf("creating index on %s: %w", coll, err)
		}
	}
	return s, nil
}

func translateMongo(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) col(name string) *mongo.Collection { return s.db.Collection(name) }

// Products

func (s *MongoStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col(productsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translateMongo(err)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	for _, p := range products {
		if err := p.Check(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
	}
	return products, nil
}

func (s *MongoStore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	if err := s.col(productsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return p, translateMongo(err)
	}
	if err := p.Check(); err != nil {
		return p, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return p, nil
}

func (s *MongoStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.col(productsCollection).InsertOne(ctx, p)
	return translateMongo(err)
}

func (s *MongoStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()
	_, err = s.col(productsCollection).ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	return translateMongo(err)
}

func (s *MongoStore) SetProductAvailability(ctx context.Context, id string, available bool) (models.Product, error) {
	var p models.Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"available": available, "updatedAt": s.now().UTC()}}
	if err := s.col(productsCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return p, translateMongo(err)
	}
	return p, nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.col(productsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongo(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Users

func (s *MongoStore) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.col(usersCollection).CountDocuments(ctx, bson.M{})
	return n, translateMongo(err)
}

// CreateUser inserts the credential first and removes it again if the profile
// cannot be written, since standalone servers have no multi-document transactions.
func (s *MongoStore) CreateUser(ctx context.Context, cred *models.Credential, profile *models.UserProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := s.now().UTC()
	cred.UserID = profile.ID
	cred.CreatedAt = now
	profile.CreatedAt, profile.UpdatedAt = now, now

	if _, err := s.col(credentialsCollection).InsertOne(ctx, cred); err != nil {
		return translateMongo(err)
	}
	if _, err := s.col(usersCollection).InsertOne(ctx, profile); err != nil {
		_, _ = s.col(credentialsCollection).DeleteOne(ctx, bson.M{"_id": cred.UserID})
		return translateMongo(err)
	}
	return nil
}

func (s *MongoStore) GetUser(ctx context.Context, id string) (models.UserProfile, error) {
	var u models.UserProfile
	if err := s.col(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return u, translateMongo(err)
	}
	if _, err := models.ParseRole(string(u.Role)); err != nil {
		return u, fmt.Errorf("%w: user %s: %v", ErrIntegrity, id, err)
	}
	return u, nil
}

func (s *MongoStore) GetCredentialByEmail(ctx context.Context, email string) (models.Credential, error) {
	var c models.Credential
	err := s.col(credentialsCollection).FindOne(ctx, bson.M{"email": email}).Decode(&c)
	return c, translateMongo(err)
}

func (s *MongoStore) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := s.col(credentialsCollection).UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"passwordHash": hash}})
	if err != nil {
		return translateMongo(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	cur, err := s.col(usersCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, translateMongo(err)
	}
	var users []models.UserProfile
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return users, nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.UserProfile, error) {
	set := bson.M{"updatedAt": s.now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Address != nil {
		set["address"] = *update.Address
	}
	if update.PhotoURL != nil {
		set["photoURL"] = *update.PhotoURL
	}
	return s.updateUser(ctx, id, set)
}

func (s *MongoStore) SetUserDisabled(ctx context.Context, id string, disabled bool) (models.UserProfile, error) {
	return s.updateUser(ctx, id, bson.M{"disabled": disabled, "updatedAt": s.now().UTC()})
}

func (s *MongoStore) updateUser(ctx context.Context, id string, set bson.M) (models.UserProfile, error) {
	var u models.UserProfile
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.col(usersCollection).FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	return u, translateMongo(err)
}

// Orders

func (s *MongoStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Date = s.now().UTC()
	_, err := s.col(ordersCollection).InsertOne(ctx, o)
	return translateMongo(err)
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var o models.Order
	filter := bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"orderId": id}}}
	if err := s.col(ordersCollection).FindOne(ctx, filter).Decode(&o); err != nil {
		return o, translateMongo(err)
	}
	if err := o.Check(); err != nil {
		return o, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return o, nil
}

func (s *MongoStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{})
}

func (s *MongoStore) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.findOrders(ctx, bson.M{"userId": userID})
}

func (s *MongoStore) findOrders(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := s.col(ordersCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, translateMongo(err)
	}
	var orders []models.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	for _, o := range orders {
		if err := o.Check(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
		}
	}
	return orders, nil
}

func (s *MongoStore) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	var o models.Order
	filter := bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"orderId": id}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.col(ordersCollection).FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"status": status}}, opts).Decode(&o)
	return o, translateMongo(err)
}
