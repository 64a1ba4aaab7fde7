package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collProducts = "products"
	collCarts    = "carts"
	collOrders   = "orders"
	collUsers    = "users"
)

// Store wraps the MongoDB connection and collection handles
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to MongoDB, verifies the connection and ensures indexes
func NewStore(uri, database string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(database),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

// ensureIndexes creates the indexes the services rely on. The unique index on
// carts.user_id backs the one-cart-per-user constraint.
func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(collCarts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(collOrders).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(collProducts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}},
	})
	return err
}

// Close disconnects from MongoDB
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) products() *mongo.Collection { return s.db.Collection(collProducts) }
func (s *Store) carts() *mongo.Collection    { return s.db.Collection(collCarts) }
func (s *Store) orders() *mongo.Collection   { return s.db.Collection(collOrders) }
func (s *Store) users() *mongo.Collection    { return s.db.Collection(collUsers) }
