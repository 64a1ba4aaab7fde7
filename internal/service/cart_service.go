package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
)

// CartService handles cart business logic
type CartService struct {
	products ProductRepository
	carts    CartRepository
	logger   *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(products ProductRepository, carts CartRepository) *CartService {
	return &CartService{
		products: products,
		carts:    carts,
		logger:   util.GetLogger(),
	}
}

// CartItemDetail is a cart line item with its product reference resolved.
// Product is nil when the product has since been removed from the catalog.
type CartItemDetail struct {
	ID       primitive.ObjectID `json:"id"`
	Product  *models.Product    `json:"product"`
	Quantity int                `json:"quantity"`
	Price    float64            `json:"price"`
}

// CartDetail is the API representation of a cart
type CartDetail struct {
	ID    string           `json:"id,omitempty"`
	Items []CartItemDetail `json:"items"`
	Total float64          `json:"total"`
}

// GetCart returns the user's cart with product details resolved. A user
// without a cart gets an empty representation, not an error.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*CartDetail, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	cart, err := s.carts.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return &CartDetail{Items: []CartItemDetail{}, Total: 0}, nil
	}

	return s.resolveCart(ctx, cart)
}

// AddToCart adds qty of a product to the user's cart, creating the cart if
// needed. An existing line item for the same product accumulates quantity;
// otherwise a new item snapshots the product's current price.
func (s *CartService) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, qty int) (*CartDetail, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart")
	defer span.End()

	if qty < 1 {
		util.CartMutationsFailedTotal.WithLabelValues("add", "invalid_quantity").Inc()
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}

	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		util.CartMutationsFailedTotal.WithLabelValues("add", "product_not_found").Inc()
		return nil, fmt.Errorf("product %s not found: %w", productID.Hex(), ErrNotFound)
	}
	if product.Stock < qty {
		util.CartMutationsFailedTotal.WithLabelValues("add", "insufficient_stock").Inc()
		return nil, fmt.Errorf("not enough stock available for %s: %w", product.Name, ErrInvalidState)
	}

	cart, err := s.carts.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}

	if idx := models.FindItemByProduct(cart.Items, productID); idx >= 0 {
		cart.Items[idx].Quantity += qty
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Quantity:  qty,
			Price:     product.Price,
		})
	}

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	s.logger.Info("Item added to cart",
		zap.String("user_id", userID.Hex()),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", qty))

	return s.resolveCart(ctx, cart)
}

// UpdateCartItem overwrites a line item's quantity. The item is matched by
// item identity, not product identity, and its snapshotted price is kept.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, itemID primitive.ObjectID, qty int) (*CartDetail, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateCartItem")
	defer span.End()

	if qty < 1 {
		util.CartMutationsFailedTotal.WithLabelValues("update", "invalid_quantity").Inc()
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}

	cart, err := s.carts.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, fmt.Errorf("cart not found: %w", ErrNotFound)
	}

	idx := models.FindItem(cart.Items, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("item not found in cart: %w", ErrNotFound)
	}

	product, err := s.products.GetProductByID(ctx, cart.Items[idx].ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("product not found: %w", ErrNotFound)
	}
	if product.Stock < qty {
		util.CartMutationsFailedTotal.WithLabelValues("update", "insufficient_stock").Inc()
		return nil, fmt.Errorf("not enough stock available for %s: %w", product.Name, ErrInvalidState)
	}

	cart.Items[idx].Quantity = qty

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return s.resolveCart(ctx, cart)
}

// RemoveFromCart removes a line item from the user's cart
func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID primitive.ObjectID) (*CartDetail, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveFromCart")
	defer span.End()

	cart, err := s.carts.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil {
		return nil, fmt.Errorf("cart not found: %w", ErrNotFound)
	}

	idx := models.FindItem(cart.Items, itemID)
	if idx < 0 {
		return nil, fmt.Errorf("item not found in cart: %w", ErrNotFound)
	}

	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

	if err := s.persist(ctx, cart); err != nil {
		return nil, err
	}

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return s.resolveCart(ctx, cart)
}

// ClearCart deletes the user's cart entirely. Clearing a nonexistent cart
// succeeds.
func (s *CartService) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := s.carts.DeleteCartByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	return nil
}

// persist recomputes the derived total and saves the cart. The total is
// always derived here, never carried over from caller input.
func (s *CartService) persist(ctx context.Context, cart *models.Cart) error {
	cart.Total = models.ComputeTotal(cart.Items)
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// resolveCart joins cart items to their product documents
func (s *CartService) resolveCart(ctx context.Context, cart *models.Cart) (*CartDetail, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}

	productMap := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	detail := &CartDetail{
		ID:    cart.ID.Hex(),
		Items: make([]CartItemDetail, 0, len(cart.Items)),
		Total: cart.Total,
	}
	for _, item := range cart.Items {
		detail.Items = append(detail.Items, CartItemDetail{
			ID:       item.ID,
			Product:  productMap[item.ProductID],
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return detail, nil
}
