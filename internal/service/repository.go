package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
)

// Repositories are implemented by *store.Store. Lookups return (nil, nil) for
// missing documents; services translate that into ErrNotFound with context.

// ProductRepository provides access to the catalog
type ProductRepository interface {
	GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	ReplaceProduct(ctx context.Context, product *models.Product) (bool, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) (bool, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (*models.Product, error)
}

// CartRepository provides access to per-user carts
type CartRepository interface {
	GetCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCartByUser(ctx context.Context, userID primitive.ObjectID) error
}

// OrderRepository provides access to orders
type OrderRepository interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (bool, error)
}

// UserRepository resolves user references for the admin order listing
type UserRepository interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// EventPublisher publishes domain events. Implemented by broker.EventPublisher;
// publishing is best-effort and never fails a request.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishStockDepleted(ctx context.Context, event *models.StockDepletedEvent) error
}
