package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
)

// OrderService handles order business logic
type OrderService struct {
	products       ProductRepository
	carts          CartRepository
	orders         OrderRepository
	users          UserRepository
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	products ProductRepository,
	carts CartRepository,
	orders OrderRepository,
	users UserRepository,
	eventPublisher EventPublisher,
) *OrderService {
	return &OrderService{
		products:       products,
		carts:          carts,
		orders:         orders,
		users:          users,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order from the
// caller's cart
type CreateOrderRequest struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
	PaymentMethod   string `json:"paymentMethod" binding:"required"`
}

// OrderItemDetail is an order line item with its product reference resolved
type OrderItemDetail struct {
	Product   *models.Product    `json:"product"`
	ProductID primitive.ObjectID `json:"product_id"`
	Quantity  int                `json:"quantity"`
	Price     float64            `json:"price"`
}

// OrderDetail is the API representation of an order
type OrderDetail struct {
	ID              primitive.ObjectID `json:"id"`
	UserID          primitive.ObjectID `json:"user_id"`
	User            *models.User       `json:"user,omitempty"`
	Items           []OrderItemDetail  `json:"items"`
	Total           float64            `json:"total"`
	Status          string             `json:"status"`
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	CreatedAt       time.Time          `json:"created_at"`
}

// CreateOrder converts the user's cart into an order. The three effects
// (order insert, stock decrements, cart delete) are intentionally not atomic:
// a mid-sequence failure leaves partial state, which is logged rather than
// compensated.
func (s *OrderService) CreateOrder(ctx context.Context, userID primitive.ObjectID, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(req.ShippingAddress) == "" {
		util.OrdersFailedTotal.WithLabelValues("missing_address").Inc()
		return nil, fmt.Errorf("shipping address is required: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		util.OrdersFailedTotal.WithLabelValues("missing_payment_method").Inc()
		return nil, fmt.Errorf("payment method is required: %w", ErrInvalidInput)
	}

	cart, err := s.carts.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, fmt.Errorf("no items in cart: %w", ErrInvalidState)
	}

	// Point-in-time stock gate: every line item is re-validated against the
	// current catalog before anything is written.
	products, err := s.loadCartProducts(ctx, cart)
	if err != nil {
		return nil, err
	}
	for _, item := range cart.Items {
		product := products[item.ProductID]
		if product == nil {
			util.OrdersFailedTotal.WithLabelValues("product_missing").Inc()
			return nil, fmt.Errorf("product %s is no longer available: %w", item.ProductID.Hex(), ErrInvalidState)
		}
		if product.Stock < item.Quantity {
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, fmt.Errorf("not enough stock for %s: %w", product.Name, ErrInvalidState)
		}
	}

	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	order := &models.Order{
		UserID:          userID,
		Items:           orderItems,
		Total:           cart.Total,
		Status:          models.OrderStatusPending,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID.Hex()),
		zap.Float64("total", order.Total))

	s.publishOrderCreated(ctx, order)

	// Decrement stock for every ordered item. No rollback on failure: the
	// order record persists and the gap is logged.
	for _, item := range order.Items {
		updated, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil || updated == nil {
			util.StockDecrementFailures.Inc()
			s.logger.Error("Failed to decrement stock after order insertion",
				zap.String("order_id", order.ID.Hex()),
				zap.String("product_id", item.ProductID.Hex()),
				zap.Error(err))
			continue
		}
		util.StockDecrementsTotal.Inc()
		if updated.Stock <= 0 {
			s.publishStockDepleted(ctx, updated)
		}
	}

	if err := s.carts.DeleteCartByUser(ctx, userID); err != nil {
		s.logger.Error("Failed to delete cart after order creation",
			zap.String("order_id", order.ID.Hex()),
			zap.String("user_id", userID.Hex()),
			zap.Error(err))
	}

	return order, nil
}

// GetOrders returns the user's orders with product references resolved
func (s *OrderService) GetOrders(ctx context.Context, userID primitive.ObjectID) ([]OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrders")
	defer span.End()

	orders, err := s.orders.GetOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	return s.resolveOrders(ctx, orders, false)
}

// GetAllOrders returns every order across all users with user and product
// references resolved. Admin only; the gate lives in the API layer.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetAllOrders")
	defer span.End()

	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	return s.resolveOrders(ctx, orders, true)
}

// UpdateOrderStatus overwrites an order's status. Values outside the declared
// enum are rejected; transitions between valid statuses are not constrained.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("invalid order status %q: %w", status, ErrInvalidInput)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s not found: %w", orderID.Hex(), ErrNotFound)
	}

	ok, err := s.orders.SetOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("order %s not found: %w", orderID.Hex(), ErrNotFound)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(status).Inc()
	s.publishStatusChanged(ctx, order, status)

	oldStatus := order.Status
	order.Status = status
	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.Hex()),
		zap.String("old_status", oldStatus),
		zap.String("new_status", status))

	return order, nil
}

func (s *OrderService) loadCartProducts(ctx context.Context, cart *models.Cart) (map[primitive.ObjectID]*models.Product, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	productMap := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}
	return productMap, nil
}

// resolveOrders joins order items to product documents and, for the admin
// listing, order owners to user documents
func (s *OrderService) resolveOrders(ctx context.Context, orders []models.Order, withUsers bool) ([]OrderDetail, error) {
	productIDs := make([]primitive.ObjectID, 0)
	userIDs := make([]primitive.ObjectID, 0)
	seenProducts := make(map[primitive.ObjectID]bool)
	seenUsers := make(map[primitive.ObjectID]bool)

	for _, order := range orders {
		for _, item := range order.Items {
			if !seenProducts[item.ProductID] {
				seenProducts[item.ProductID] = true
				productIDs = append(productIDs, item.ProductID)
			}
		}
		if withUsers && !seenUsers[order.UserID] {
			seenUsers[order.UserID] = true
			userIDs = append(userIDs, order.UserID)
		}
	}

	products, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	productMap := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	userMap := make(map[primitive.ObjectID]*models.User)
	if withUsers {
		users, err := s.users.GetUsersByIDs(ctx, userIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve users: %w", err)
		}
		for i := range users {
			userMap[users[i].ID] = &users[i]
		}
	}

	details := make([]OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail := OrderDetail{
			ID:              order.ID,
			UserID:          order.UserID,
			User:            userMap[order.UserID],
			Items:           make([]OrderItemDetail, 0, len(order.Items)),
			Total:           order.Total,
			Status:          order.Status,
			ShippingAddress: order.ShippingAddress,
			PaymentMethod:   order.PaymentMethod,
			CreatedAt:       order.CreatedAt,
		}
		for _, item := range order.Items {
			detail.Items = append(detail.Items, OrderItemDetail{
				Product:   productMap[item.ProductID],
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			})
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *OrderService) publishOrderCreated(ctx context.Context, order *models.Order) {
	if s.eventPublisher == nil {
		return
	}

	items := make([]models.OrderItemEvent, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItemEvent{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID: order.ID.Hex(),
		UserID:  order.UserID.Hex(),
		Total:   order.Total,
		Items:   items,
	}

	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
}

func (s *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, newStatus string) {
	if s.eventPublisher == nil {
		return
	}

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID.Hex(),
		OldStatus: order.Status,
		NewStatus: newStatus,
	}

	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}

func (s *OrderService) publishStockDepleted(ctx context.Context, product *models.Product) {
	if s.eventPublisher == nil {
		return
	}

	event := &models.StockDepletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStockDepleted,
			Timestamp: time.Now(),
		},
		ProductID:   product.ID.Hex(),
		ProductName: product.Name,
	}

	if err := s.eventPublisher.PublishStockDepleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish StockDepleted event", zap.Error(err))
	}
}
