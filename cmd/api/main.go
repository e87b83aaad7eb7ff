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

	"checkout-engine/internal/client"
	"checkout-engine/internal/config"
	"checkout-engine/internal/logging"
	"checkout-engine/internal/repository"
	"checkout-engine/internal/server"
	"checkout-engine/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db := client.InitMysqlClient(cfg.DatabaseURL)
	gateway := client.NewGatewayClient(&cfg.Gateway, cfg.BaseURL)

	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	shippingRepo := repository.NewShippingRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)

	if err := productRepo.Seed(context.Background()); err != nil {
		log.Fatal("seed products:", err)
	}

	cartService := service.NewCartService(db, cartRepo, productRepo)
	shippingService := service.NewShippingService(db, shippingRepo)
	reservationService := service.NewReservationService(db, cartRepo, productRepo, logger)
	orderService := service.NewOrderService(cartRepo, shippingRepo, orderRepo, productRepo)
	checkoutService := service.NewCheckoutService(
		db, gateway,
		cartRepo, shippingRepo, txnRepo, webhookRepo,
		reservationService, orderService,
		cfg.Gateway.SecretKey,
		logger,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(cfg, cartService, shippingService, checkoutService, logger)

	logger.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server shutdown error", zap.Error(err))
	}
}
