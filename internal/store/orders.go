package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
)

// InsertOrder inserts a new order and fills in its generated ID
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	res, err := s.orders().InsertOne(ctx, order)
	if err != nil {
		return err
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetOrderByID retrieves an order by ID. Returns (nil, nil) when the order
// does not exist.
func (s *Store) GetOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.orders().FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUser retrieves all orders placed by a user, insertion order
func (s *Store) GetOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.orders().Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrders retrieves all orders across all users
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	cursor, err := s.orders().Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetOrderStatus overwrites an order's status. Returns (false, nil) when the
// order does not exist.
func (s *Store) SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	res, err := s.orders().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
