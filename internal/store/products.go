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

// GetProductByID retrieves a product by ID. Returns (nil, nil) when the
// product does not exist.
func (s *Store) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.products().FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by ID
func (s *Store) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	cursor, err := s.products().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListProducts retrieves the whole catalog
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.products().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// InsertProduct inserts a new product and fills in its generated ID
func (s *Store) InsertProduct(ctx context.Context, product *models.Product) error {
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	res, err := s.products().InsertOne(ctx, product)
	if err != nil {
		return err
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ReplaceProduct overwrites an existing product document. Returns (false, nil)
// when the product does not exist.
func (s *Store) ReplaceProduct(ctx context.Context, product *models.Product) (bool, error) {
	res, err := s.products().ReplaceOne(ctx, bson.M{"_id": product.ID}, product)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// DeleteProduct removes a product. Returns (false, nil) when the product does
// not exist.
func (s *Store) DeleteProduct(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.products().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DecrementStock atomically decrements a product's stock by qty and returns
// the updated product. This is a plain $inc: the stock gate is checked by the
// service beforehand, not re-checked here.
func (s *Store) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (*models.Product, error) {
	var product models.Product
	err := s.products().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": -qty}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
