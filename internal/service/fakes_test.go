package service

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vishnuvardhan105222/E-commerce/internal/models"
)

// fakeRepo is an in-memory implementation of all repository interfaces.
// Lookups return copies so that service-side mutations never reach the
// "database" without an explicit save.
type fakeRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
	carts    map[primitive.ObjectID]models.Cart // keyed by user id
	orders   map[primitive.ObjectID]models.Order
	users    map[primitive.ObjectID]models.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[primitive.ObjectID]models.Product),
		carts:    make(map[primitive.ObjectID]models.Cart),
		orders:   make(map[primitive.ObjectID]models.Order),
		users:    make(map[primitive.ObjectID]models.User),
	}
}

func (r *fakeRepo) addProduct(name string, price float64, stock int) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := primitive.NewObjectID()
	r.products[id] = models.Product{
		ID:          id,
		Name:        name,
		Description: name,
		Price:       price,
		Category:    models.CategoryOther,
		Stock:       stock,
	}
	return id
}

func (r *fakeRepo) GetProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func (r *fakeRepo) GetProductsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out = append(out, product)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		out = append(out, product)
	}
	return out, nil
}

func (r *fakeRepo) InsertProduct(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = primitive.NewObjectID()
	r.products[product.ID] = *product
	return nil
}

func (r *fakeRepo) ReplaceProduct(ctx context.Context, product *models.Product) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return false, nil
	}
	r.products[product.ID] = *product
	return true, nil
}

func (r *fakeRepo) DeleteProduct(ctx context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *fakeRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	product.Stock -= qty
	r.products[id] = product
	return &product, nil
}

func (r *fakeRepo) GetCartByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	cart.Items = append([]models.CartItem(nil), cart.Items...)
	return &cart, nil
}

func (r *fakeRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	saved := *cart
	saved.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = saved
	return nil
}

func (r *fakeRepo) DeleteCartByUser(ctx context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *fakeRepo) InsertOrder(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order.ID = primitive.NewObjectID()
	saved := *order
	saved.Items = append([]models.OrderItem(nil), order.Items...)
	r.orders[order.ID] = saved
	return nil
}

func (r *fakeRepo) GetOrderByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &order, nil
}

func (r *fakeRepo) GetOrdersByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Order{}
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Order{}
	for _, order := range r.orders {
		out = append(out, order)
	}
	return out, nil
}

func (r *fakeRepo) SetOrderStatus(ctx context.Context, id primitive.ObjectID, status string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return false, nil
	}
	order.Status = status
	r.orders[id] = order
	return true, nil
}

func (r *fakeRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

// fakePublisher records published events
type fakePublisher struct {
	mu            sync.Mutex
	created       []*models.OrderCreatedEvent
	statusChanged []*models.OrderStatusChangedEvent
	depleted      []*models.StockDepletedEvent
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return nil
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanged = append(p.statusChanged, event)
	return nil
}

func (p *fakePublisher) PublishStockDepleted(ctx context.Context, event *models.StockDepletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.depleted = append(p.depleted, event)
	return nil
}
