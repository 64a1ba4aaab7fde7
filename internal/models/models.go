package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog product
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// CartItem is a line item inside a cart. Price is snapshotted when the item
// is added and is not refreshed if the catalog price changes afterwards.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Cart holds a user's prospective purchase. One cart per user, enforced by a
// unique index on user_id.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	Total     float64            `bson:"total" json:"total"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// OrderItem is an immutable snapshot of a cart line item
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Order is created from a cart snapshot. Only Status may change after
// creation.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Total           float64            `bson:"total" json:"total"`
	Status          string             `bson:"status" json:"status"`
	ShippingAddress string             `bson:"shipping_address" json:"shipping_address"`
	PaymentMethod   string             `bson:"payment_method" json:"payment_method"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// User is owned by the auth service; read here only to resolve user
// references on the admin order listing.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Product categories
const (
	CategoryElectronics = "Electronics"
	CategoryClothing    = "Clothing"
	CategoryBooks       = "Books"
	CategoryHome        = "Home"
	CategorySports      = "Sports"
	CategoryOther       = "Other"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

var categories = map[string]bool{
	CategoryElectronics: true,
	CategoryClothing:    true,
	CategoryBooks:       true,
	CategoryHome:        true,
	CategorySports:      true,
	CategoryOther:       true,
}

// ValidOrderStatus reports whether status is one of the declared order
// statuses.
func ValidOrderStatus(status string) bool {
	return orderStatuses[status]
}

// ValidCategory reports whether category is one of the declared product
// categories.
func ValidCategory(category string) bool {
	return categories[category]
}

// ComputeTotal recomputes a cart total from its items. Services call this
// before every persist; the stored total is never trusted from caller input.
func ComputeTotal(items []CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// FindItem returns the index of the item with the given id, or -1
func FindItem(items []CartItem, itemID primitive.ObjectID) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// FindItemByProduct returns the index of the line item for the given product,
// or -1
func FindItemByProduct(items []CartItem, productID primitive.ObjectID) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
