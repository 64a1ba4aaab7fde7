package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGetCartEmpty(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, float64(0), cart.Total)
	assert.Empty(t, cart.ID)
}

func TestAddToCartCreatesCart(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	cart, err := svc.AddToCart(context.Background(), userID, productID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, 20.0, cart.Total)
	require.NotNil(t, cart.Items[0].Product)
	assert.Equal(t, "Widget", cart.Items[0].Product.Name)
}

func TestAddToCartAccumulatesSameProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, productID, 2)
	require.NoError(t, err)
	cart, err := svc.AddToCart(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
	assert.Equal(t, 40.0, cart.Total)
}

func TestAddToCartSnapshotsPrice(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, productID, 1)
	require.NoError(t, err)

	// price change after the item is in the cart must not affect it
	repo.mu.Lock()
	product := repo.products[productID]
	product.Price = 99.0
	repo.products[productID] = product
	repo.mu.Unlock()

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, cart.Items[0].Price)
	assert.Equal(t, 10.0, cart.Total)
}

func TestAddToCartInvalidQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, productID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddToCartProductNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)

	_, err := svc.AddToCart(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddToCartInsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 3)

	_, err := svc.AddToCart(context.Background(), userID, productID, 4)
	assert.ErrorIs(t, err, ErrInvalidState)

	// cart must be untouched after a failed add
	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestUpdateCartItem(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	added, err := svc.AddToCart(context.Background(), userID, productID, 1)
	require.NoError(t, err)
	itemID := added.Items[0].ID

	cart, err := svc.UpdateCartItem(context.Background(), userID, itemID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 30.0, cart.Total)
}

func TestUpdateCartItemInvalidQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	added, err := svc.AddToCart(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateCartItem(context.Background(), userID, added.Items[0].ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestUpdateCartItemInsufficientStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	added, err := svc.AddToCart(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	_, err = svc.UpdateCartItem(context.Background(), userID, added.Items[0].ID, 6)
	assert.ErrorIs(t, err, ErrInvalidState)

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, 20.0, cart.Total)
}

func TestUpdateCartItemNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, productID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateCartItem(context.Background(), userID, primitive.NewObjectID(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCartItemNoCart(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)

	_, err := svc.UpdateCartItem(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveFromCart(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	first := repo.addProduct("Widget", 10.0, 5)
	second := repo.addProduct("Gadget", 25.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, first, 1)
	require.NoError(t, err)
	added, err := svc.AddToCart(context.Background(), userID, second, 2)
	require.NoError(t, err)
	require.Len(t, added.Items, 2)

	cart, err := svc.RemoveFromCart(context.Background(), userID, added.Items[1].ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, first, cart.Items[0].Product.ID)
	assert.Equal(t, 10.0, cart.Total)
}

func TestRemoveFromCartItemNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, productID, 1)
	require.NoError(t, err)

	_, err = svc.RemoveFromCart(context.Background(), userID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClearCart(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)
	userID := primitive.NewObjectID()
	productID := repo.addProduct("Widget", 10.0, 5)

	_, err := svc.AddToCart(context.Background(), userID, productID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), userID))

	cart, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, float64(0), cart.Total)
}

func TestClearCartIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewCartService(repo, repo)

	assert.NoError(t, svc.ClearCart(context.Background(), primitive.NewObjectID()))
}
