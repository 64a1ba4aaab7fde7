package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
)

// GetCartByUser retrieves a user's cart. Returns (nil, nil) when the user has
// no cart.
func (s *Store) GetCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.carts().FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart upserts the cart keyed by user_id. The write replaces the whole
// document in one operation; concurrent mutations are last-write-wins.
func (s *Store) SaveCart(ctx context.Context, cart *models.Cart) error {
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now().UTC()
	}

	res, err := s.carts().ReplaceOne(ctx,
		bson.M{"user_id": cart.UserID},
		cart,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if res.UpsertedID != nil {
		cart.ID = res.UpsertedID.(primitive.ObjectID)
	}
	return nil
}

// DeleteCartByUser deletes a user's cart. Deleting a nonexistent cart is not
// an error.
func (s *Store) DeleteCartByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts().DeleteOne(ctx, bson.M{"user_id": userID})
	return err
}
