package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vishnuvardhan105222/E-commerce/config"
	"github.com/vishnuvardhan105222/E-commerce/internal/api"
	"github.com/vishnuvardhan105222/E-commerce/internal/broker"
	"github.com/vishnuvardhan105222/E-commerce/internal/redisclient"
	"github.com/vishnuvardhan105222/E-commerce/internal/service"
	"github.com/vishnuvardhan105222/E-commerce/internal/store"
	"github.com/vishnuvardhan105222/E-commerce/internal/util"
	"github.com/vishnuvardhan105222/E-commerce/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting ecommerce backend")

	tp, err := util.InitTracer("ecommerce-backend", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()
	log.Println("MongoDB connected")

	// The product cache is optional: if Redis is down we serve reads straight
	// from MongoDB.
	var productRepo service.ProductRepository = db
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, product cache disabled: %v", err)
	} else {
		defer redisClient.Close()
		log.Println("Redis connected")

		cache := service.NewProductCache(db, redisClient, cfg.Redis.CacheTTL)
		if err := cache.WarmCache(context.Background()); err != nil {
			log.Printf("Failed to warm product cache: %v", err)
		}
		productRepo = cache
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cartService := service.NewCartService(productRepo, db)
	orderService := service.NewOrderService(productRepo, db, db, db, eventPublisher)
	catalogService := service.NewCatalogService(productRepo)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	orderConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(orderConsumer)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	auth := api.NewAuthMiddleware(cfg.Auth.JWTSecret)
	handler := api.NewHandler(cartService, orderService, catalogService, auth)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notificationWorker.Stop()

	log.Println("Server exited")
}
