package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
)

// testStore connects to MongoDB, skipping the test when MONGO_TEST_URI is not
// set. These tests need a running instance; run them with
// MONGO_TEST_URI=mongodb://localhost:27017 go test ./internal/store/...
func testStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set, skipping MongoDB integration test")
	}

	s, err := NewStore(uri, "ecommerce_test")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func TestProductCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	product := &models.Product{
		Name:        "Widget",
		Description: "A widget",
		Price:       9.99,
		Category:    models.CategoryElectronics,
		Stock:       5,
	}
	require.NoError(t, s.InsertProduct(ctx, product))
	assert.False(t, product.ID.IsZero())
	assert.False(t, product.CreatedAt.IsZero())

	loaded, err := s.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Widget", loaded.Name)

	loaded.Price = 12.5
	ok, err := s.ReplaceProduct(ctx, loaded)
	require.NoError(t, err)
	assert.True(t, ok)

	updated, err := s.DecrementStock(ctx, product.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 3, updated.Stock)

	ok, err = s.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	missing, err := s.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetProductMissingReturnsNil(t *testing.T) {
	s := testStore(t)

	product, err := s.GetProductByID(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestCartUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	missing, err := s.GetCartByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	cart := &models.Cart{
		UserID: userID,
		Items: []models.CartItem{
			{ID: primitive.NewObjectID(), ProductID: primitive.NewObjectID(), Quantity: 2, Price: 10},
		},
		Total: 20,
	}
	require.NoError(t, s.SaveCart(ctx, cart))
	assert.False(t, cart.ID.IsZero())

	// a second save for the same user replaces, not duplicates
	cart.Items[0].Quantity = 3
	cart.Total = 30
	require.NoError(t, s.SaveCart(ctx, cart))

	loaded, err := s.GetCartByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cart.ID, loaded.ID)
	assert.Equal(t, 3, loaded.Items[0].Quantity)
	assert.Equal(t, float64(30), loaded.Total)

	require.NoError(t, s.DeleteCartByUser(ctx, userID))
	require.NoError(t, s.DeleteCartByUser(ctx, userID))
}

func TestOrderLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	userID := primitive.NewObjectID()

	order := &models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: primitive.NewObjectID(), Quantity: 1, Price: 10},
		},
		Total:           10,
		Status:          models.OrderStatusPending,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	}
	require.NoError(t, s.InsertOrder(ctx, order))
	assert.False(t, order.ID.IsZero())

	orders, err := s.GetOrdersByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	ok, err := s.SetOrderStatus(ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := s.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.OrderStatusShipped, loaded.Status)

	ok, err = s.SetOrderStatus(ctx, primitive.NewObjectID(), models.OrderStatusShipped)
	require.NoError(t, err)
	assert.False(t, ok)
}
