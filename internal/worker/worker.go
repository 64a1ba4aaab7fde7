package worker

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/vishnuvardhan105222/E-commerce/internal/broker"
	"github.com/vishnuvardhan105222/E-commerce/internal/models"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
)

// NotificationWorker consumes order events and dispatches customer
// notifications. Dispatch is a logged intent here; the mail/SMS gateway is an
// external collaborator.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	eventHandler.OnStockDepleted(w.handleStockDepleted)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	w.logger.Info("Sending order confirmation",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.Float64("total", event.Total),
		zap.Int("items", len(event.Items)))

	util.NotificationsSentTotal.WithLabelValues("order_confirmation").Inc()
	return nil
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Sending status update notification",
		zap.String("order_id", event.OrderID),
		zap.String("user_id", event.UserID),
		zap.String("old_status", event.OldStatus),
		zap.String("new_status", event.NewStatus))

	util.NotificationsSentTotal.WithLabelValues("status_update").Inc()
	return nil
}

func (w *NotificationWorker) handleStockDepleted(ctx context.Context, event *models.StockDepletedEvent) error {
	w.logger.Warn("Product out of stock",
		zap.String("product_id", event.ProductID),
		zap.String("product_name", event.ProductName))

	util.NotificationsSentTotal.WithLabelValues("stock_alert").Inc()
	return nil
}
