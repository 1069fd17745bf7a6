package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/payment"
	"bingen-booking/internal/payment/storage"
	"bingen-booking/internal/utils"
)

// WebhookError classifies webhook failures so the handler can log the
// internal detail while exposing only the public message.
type WebhookError struct {
	Category      string
	StatusCode    int
	PublicError   string
	InternalError string
	OriginalErr   error
}

func (e *WebhookError) Error() string {
	return e.InternalError
}

// Completer resolves a payment outcome for a wizard session. The in-process
// orchestrator satisfies it; the standalone gateway uses an HTTP client
// against the booking service.
type Completer interface {
	Complete(ctx context.Context, sessionID string, result models.PaymentResult) (*payment.CompletionResponse, error)
}

// PaymentHandler serves the payment gateway surface: the Stripe webhook
// plus payment record lookups.
type PaymentHandler struct {
	completer     Completer
	store         storage.Store
	webhookSecret string
	log           *logger.Logger
}

func NewPaymentHandler(completer Completer, store storage.Store, webhookSecret string, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		completer:     completer,
		store:         store,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// RegisterRoutes mounts the gateway endpoints.
func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/webhook/stripe", h.StripeWebhook)
	r.GET("/payments/:id", h.GetPayment)
	r.GET("/sessions/:id/payments", h.ListSessionPayments)
	r.GET("/health", h.Health)
}

// StripeWebhook verifies the event signature and routes intent outcomes
// through the orchestrator's completion path.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	if err := h.processWebhook(c.Request); err != nil {
		var whErr *WebhookError
		if errors.As(err, &whErr) {
			h.log.Error("WEBHOOK", whErr.InternalError)
			c.JSON(whErr.StatusCode, utils.ErrorResponse("Webhook processing failed", whErr.PublicError))
			return
		}
		h.log.Error("WEBHOOK", err.Error())
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Webhook processing failed", "internal error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Webhook processed", nil))
}

func (h *PaymentHandler) processWebhook(r *http.Request) error {
	if h.webhookSecret == "" {
		return &WebhookError{
			Category:      "configuration",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Webhook processing error",
			InternalError: "Stripe webhook secret is not configured",
		}
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook payload",
			InternalError: fmt.Sprintf("Failed to read webhook payload: %v", err),
			OriginalErr:   err,
		}
	}

	opts := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret, opts)
	if err != nil {
		return &WebhookError{
			Category:      "validation",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid webhook signature",
			InternalError: fmt.Sprintf("Signature verification failed: %v", err),
			OriginalErr:   err,
		}
	}

	h.log.Info("WEBHOOK", fmt.Sprintf("Processing Stripe event: %s", event.Type))

	switch event.Type {
	case "payment_intent.succeeded":
		return h.handleIntentOutcome(r, event.Data.Raw, models.PaymentConfirmed, "")
	case "payment_intent.payment_failed":
		return h.handleIntentOutcome(r, event.Data.Raw, models.PaymentFailed, "provider reported payment failure")
	case "payment_intent.canceled":
		return h.handleIntentOutcome(r, event.Data.Raw, models.PaymentCancelled, "")
	default:
		h.log.Info("WEBHOOK", fmt.Sprintf("Unhandled event type: %s", event.Type))
		return nil
	}
}

func (h *PaymentHandler) handleIntentOutcome(r *http.Request, raw json.RawMessage, outcome models.PaymentOutcome, reason string) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid event data",
			InternalError: fmt.Sprintf("Failed to unmarshal payment intent: %v", err),
			OriginalErr:   err,
		}
	}

	sessionID, ok := intent.Metadata["session_id"]
	if !ok {
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid payment intent data",
			InternalError: "Payment intent has no session_id in metadata",
		}
	}

	idemKey, ok := intent.Metadata["idempotency_key"]
	if !ok {
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Invalid payment intent data",
			InternalError: "Payment intent has no idempotency_key in metadata",
		}
	}

	record, err := h.store.GetPaymentByIdempotencyKey(idemKey)
	if err != nil {
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusBadRequest,
			PublicError:   "Unknown payment",
			InternalError: fmt.Sprintf("No payment record for idempotency key %s: %v", idemKey, err),
			OriginalErr:   err,
		}
	}

	result := models.PaymentResult{
		Outcome:   outcome,
		PaymentID: record.PaymentID,
		Reason:    reason,
	}

	if _, err := h.completer.Complete(r.Context(), sessionID, result); err != nil {
		var supportErr *payment.SupportError
		if errors.As(err, &supportErr) {
			// The support path already recorded and published everything;
			// acknowledge so the provider does not retry forever.
			h.log.Error("WEBHOOK", fmt.Sprintf("Payment %s flagged for support", supportErr.PaymentID))
			return nil
		}
		return &WebhookError{
			Category:      "processing",
			StatusCode:    http.StatusInternalServerError,
			PublicError:   "Failed to process payment",
			InternalError: fmt.Sprintf("Completion failed for payment %s: %v", record.PaymentID, err),
			OriginalErr:   err,
		}
	}

	h.log.Info("WEBHOOK", fmt.Sprintf("Processed %s for payment %s", outcome, record.PaymentID))
	return nil
}

// GetPayment returns one payment record.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request", "payment id is required"))
		return
	}

	record, err := h.store.GetPayment(id)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Payment not found", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payment retrieved", record))
}

// ListSessionPayments returns every payment attempt recorded for a wizard
// session, newest first. Support uses this to untangle retried charges.
func (h *PaymentHandler) ListSessionPayments(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request", "session id is required"))
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	records, err := h.store.ListPaymentsBySession(sessionID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to list payments", err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.SuccessResponse("Payments retrieved", records))
}

// Health reports gateway liveness including the storage backend.
func (h *PaymentHandler) Health(c *gin.Context) {
	if err := h.store.HealthCheck(); err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Gateway unhealthy", err.Error()))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Gateway healthy", map[string]string{"status": "ok"}))
}
