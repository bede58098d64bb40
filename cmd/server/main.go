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

	"github.com/mukhma0c/cookies-manager/config"
	"github.com/mukhma0c/cookies-manager/internal/api"
	"github.com/mukhma0c/cookies-manager/internal/broker"
	"github.com/mukhma0c/cookies-manager/internal/cache"
	"github.com/mukhma0c/cookies-manager/internal/service"
	"github.com/mukhma0c/cookies-manager/internal/store/postgres"
	"github.com/mukhma0c/cookies-manager/internal/util"
	"github.com/mukhma0c/cookies-manager/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting cookies manager")

	tp, err := util.InitTracer("cookies-manager", cfg.Observ.JaegerEndpoint)
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

	db, err := postgres.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	var ledgerCache cache.Cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
		ledgerCache = cache.Noop{}
	} else {
		ledgerCache = redisCache
		defer redisCache.Close()
		log.Println("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicLedger)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	costingService := service.NewCostingService(db, ledgerCache)
	stockService := service.NewStockService(db, ledgerCache, eventPublisher)
	inventoryService := service.NewInventoryService(db, ledgerCache, costingService, eventPublisher)
	orderService := service.NewOrderService(db, ledgerCache, costingService, eventPublisher)
	reportService := service.NewReportService(db, cfg.Business.TopBreakdownLimit)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	lowStockWorker := worker.NewLowStockWorker(stockService,
		time.Duration(cfg.Business.LowStockCheckMinutes)*time.Minute)
	go func() {
		if err := lowStockWorker.Start(workerCtx); err != nil {
			log.Printf("Low-stock worker error: %v", err)
		}
	}()

	alertConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicLedger, cfg.Kafka.ConsumerGroup)
	alertWorker := worker.NewAlertWorker(alertConsumer)
	go func() {
		if err := alertWorker.Start(workerCtx); err != nil {
			log.Printf("Alert worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(inventoryService, stockService, costingService, orderService, reportService)
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
	alertWorker.Stop()

	log.Println("Server exited")
}
