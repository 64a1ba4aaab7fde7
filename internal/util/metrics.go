package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"operation"})

	CartMutationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_failed_total",
		Help: "Total number of rejected cart mutations",
	}, []string{"operation", "reason"})

	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrderStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Total number of order status updates",
	}, []string{"status"})

	StockDecrementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrements_total",
		Help: "Total number of product stock decrements",
	})

	StockDecrementFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_decrement_failures_total",
		Help: "Total number of stock decrements that failed after order insertion",
	})

	ProductCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_hits_total",
		Help: "Total number of product reads served from the Redis cache",
	})

	ProductCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_cache_misses_total",
		Help: "Total number of product reads that fell through to the database",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_sent_total",
		Help: "Total number of notifications dispatched by the worker",
	}, []string{"type"})

	OrderCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_create_latency_seconds",
		Help:    "Latency of order creation",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
