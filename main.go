// main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/routes"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	emailService := utils.NewEmailService()

	// Connect to MongoDB and Redis
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			logger.Error().Err(err).Msg("MongoDB disconnect failed")
		}
	}()
	rdb := utils.ConnectRedis()
	defer rdb.Close()

	// Initialize stores
	userStore := store.NewUserStore(client)
	productStore := store.NewProductStore(client)
	cartStore := store.NewCartStore(rdb)
	orderStore := store.NewOrderStore(client, logger)
	messageStore := store.NewMessageStore(client, logger)

	// Pump message change events to subscribers until shutdown
	pumpCtx, stopPump := context.WithCancel(context.Background())
	go messageStore.Run(pumpCtx)

	// Initialize controllers
	userController := controllers.NewUserController(userStore, emailService, logger)
	productController := controllers.NewProductController(productStore)
	cartController := controllers.NewCartController(cartStore, userStore)
	orderController := controllers.NewOrderController(orderStore, cartStore, productStore, userStore, emailService, logger)
	messageController := controllers.NewMessageController(messageStore, orderStore, userStore, logger)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggerMiddleware(&logger))

	routes.RegisterRoutes(router, userController, productController, cartController, orderController, messageController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop the change-stream pump first so open SSE streams drain
		stopPump()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	logger.Info().Str("port", port).Msg("Server is running")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}
