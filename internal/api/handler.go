package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/vishnuvardhan105222/E-commerce/internal/service"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	cartService    *service.CartService
	orderService   *service.OrderService
	catalogService *service.CatalogService
	auth           *AuthMiddleware
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cartService *service.CartService,
	orderService *service.OrderService,
	catalogService *service.CatalogService,
	auth *AuthMiddleware,
) *Handler {
	return &Handler{
		cartService:    cartService,
		orderService:   orderService,
		catalogService: catalogService,
		auth:           auth,
		logger:         util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)
	api.POST("/products", h.auth.RequireUser(), h.auth.RequireAdmin(), h.createProduct)
	api.PUT("/products/:id", h.auth.RequireUser(), h.auth.RequireAdmin(), h.updateProduct)
	api.DELETE("/products/:id", h.auth.RequireUser(), h.auth.RequireAdmin(), h.deleteProduct)

	cart := api.Group("/cart", h.auth.RequireUser())
	{
		cart.GET("", h.getCart)
		cart.POST("", h.addToCart)
		cart.DELETE("", h.clearCart)
		cart.PUT("/:itemId", h.updateCartItem)
		cart.DELETE("/:itemId", h.removeFromCart)
	}

	orders := api.Group("/orders", h.auth.RequireUser())
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.getOrders)
		orders.GET("/all", h.auth.RequireAdmin(), h.getAllOrders)
		orders.PUT("/:id", h.auth.RequireAdmin(), h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// getCart returns the caller's cart, or an empty representation
func (h *Handler) getCart(c *gin.Context) {
	userID, _ := UserID(c)

	cart, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, cart)
}

// addToCart adds a product to the caller's cart
func (h *Handler) addToCart(c *gin.Context) {
	userID, _ := UserID(c)

	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		h.badRequest(c, "invalid product id")
		return
	}

	cart, err := h.cartService.AddToCart(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, cart)
}

// updateCartItem overwrites a cart line item's quantity
func (h *Handler) updateCartItem(c *gin.Context) {
	userID, _ := UserID(c)

	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		h.badRequest(c, "invalid item id")
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	cart, err := h.cartService.UpdateCartItem(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, cart)
}

// removeFromCart removes a line item from the caller's cart
func (h *Handler) removeFromCart(c *gin.Context) {
	userID, _ := UserID(c)

	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		h.badRequest(c, "invalid item id")
		return
	}

	cart, err := h.cartService.RemoveFromCart(c.Request.Context(), userID, itemID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, cart)
}

// clearCart deletes the caller's cart
func (h *Handler) clearCart(c *gin.Context) {
	userID, _ := UserID(c)

	if err := h.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, gin.H{})
}

// createOrder converts the caller's cart into an order
func (h *Handler) createOrder(c *gin.Context) {
	userID, _ := UserID(c)

	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusCreated, order)
}

// getOrders returns the caller's orders
func (h *Handler) getOrders(c *gin.Context) {
	userID, _ := UserID(c)

	orders, err := h.orderService.GetOrders(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.okList(c, len(orders), orders)
}

// getAllOrders returns every order across all users (admin)
func (h *Handler) getAllOrders(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	h.okList(c, len(orders), orders)
}

// updateOrderStatus overwrites an order's status (admin)
func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid order id")
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, order)
}

// listProducts returns the catalog
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	h.okList(c, len(products), products)
}

// getProduct returns a single product
func (h *Handler) getProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, product)
}

// createProduct adds a product to the catalog (admin)
func (h *Handler) createProduct(c *gin.Context) {
	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusCreated, product)
}

// updateProduct overwrites a product (admin)
func (h *Handler) updateProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid product id")
		return
	}

	var req service.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body")
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, product)
}

// deleteProduct removes a product (admin)
func (h *Handler) deleteProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	h.ok(c, http.StatusOK, gin.H{})
}

func (h *Handler) ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func (h *Handler) okList(c *gin.Context, count int, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
	})
}

// fail maps service error kinds to HTTP statuses. Unexpected errors surface
// as 500 and are logged.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal server error"})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
