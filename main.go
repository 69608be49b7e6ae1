// File: shipflow/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipflow/config"
	"shipflow/handlers"
	"shipflow/middleware"
	"shipflow/routes"
	"shipflow/services/bookingapi"
	"shipflow/services/workflow"
	"shipflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitWizardCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// External collaborators.
	bookingClient := bookingapi.NewHTTPClient(config.AppConfig.BookingAPIBaseURL)
	walletProvider := workflow.NewStripeWalletProvider(logger)

	// The workflow engine.
	sessionStore := workflow.NewRedisSessionStore(utils.GetWizardCacheClient(), workflow.SessionTTL)
	rates := workflow.DefaultRates()
	rates.Currency = config.AppConfig.Currency
	wizardService := workflow.NewDefaultWizardService(bookingClient, sessionStore, walletProvider, rates, logger)

	wizardHandler := handlers.NewWizardHandler(wizardService, logger)

	// Register routes.
	routes.RegisterRoutes(router, wizardHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
