package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/payment"
	"bingen-booking/internal/payment/handler"
	"bingen-booking/internal/payment/storage"
	"bingen-booking/internal/utils"
)

// bookingServiceCompleter forwards payment outcomes to the booking
// service's payment-result endpoint.
type bookingServiceCompleter struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func (c *bookingServiceCompleter) Complete(ctx context.Context, sessionID string, result models.PaymentResult) (*payment.CompletionResponse, error) {
	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment result: %w", err)
	}

	url := fmt.Sprintf("%s/api/wizard/%s/payment-result", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("booking service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var envelope utils.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("GATEWAY", fmt.Sprintf("Completion rejected for session %s: %s", sessionID, envelope.Error))
		return nil, fmt.Errorf("completion rejected: %s", envelope.Message)
	}

	completion := &payment.CompletionResponse{}
	if envelope.Data != nil {
		raw, err := json.Marshal(envelope.Data)
		if err == nil {
			_ = json.Unmarshal(raw, completion)
		}
	}
	completion.Message = envelope.Message
	return completion, nil
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Payment Gateway initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	store, err := storage.NewPostgreSQLStore(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to initialize payment storage: %v", err))
	}
	defer store.Close()

	bookingServiceURL := os.Getenv("BOOKING_SERVICE_URL")
	if bookingServiceURL == "" {
		bookingServiceURL = "http://localhost:8086"
	}

	completer := &bookingServiceCompleter{
		baseURL: bookingServiceURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}

	paymentHandler := handler.NewPaymentHandler(completer, store, cfg.Stripe.WebhookSecret, log)

	r := gin.Default()
	paymentHandler.RegisterRoutes(r)

	port := os.Getenv("GATEWAY_PORT")
	if port == "" {
		port = ":8087"
	}

	server := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Payment Gateway running on %s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Gateway started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Payment Gateway shutdown complete")
	}
}
