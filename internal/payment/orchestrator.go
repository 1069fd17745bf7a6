package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/pricing"
	"bingen-booking/internal/ratelimit"
	"bingen-booking/internal/utils"
	"bingen-booking/internal/wizard"
)

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrPaymentNotConfirmed = errors.New("payment provider has not confirmed the charge")
)

// SupportMessage is shown when money was taken but the booking could not be
// written. This path must never read as a retryable failure to the visitor.
const SupportMessage = "Your payment was received but the booking could not be completed. Our team will contact you shortly."

// SupportError marks the charged-but-unbooked case.
type SupportError struct {
	PaymentID string
}

func (e *SupportError) Error() string {
	return fmt.Sprintf("payment %s succeeded but booking failed, support required", e.PaymentID)
}

// SessionSource gives the orchestrator access to live wizard sessions.
type SessionSource interface {
	Session(sessionID string) (*wizard.Session, error)
	Finish(sessionID string)
}

// BookingConfirmer performs the secure booking write after a confirmed
// charge.
type BookingConfirmer interface {
	SecureBooking(req models.BookingRequest) (*models.BookingResponse, error)
}

// IntentService is the payment provider surface the orchestrator needs.
type IntentService interface {
	CreateAdvanceIntent(ctx context.Context, req *models.PaymentIntentRequest) (*models.PaymentIntentResponse, error)
	GetIntentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error)
	CancelIntent(ctx context.Context, intentID string) error
}

// PaymentRecorder persists the gateway-side payment records.
type PaymentRecorder interface {
	SavePayment(payment *models.Payment) error
	GetPayment(id string) (*models.Payment, error)
	GetPaymentByIdempotencyKey(key string) (*models.Payment, error)
	UpdatePayment(payment *models.Payment) error
}

// EventPublisher emits payment lifecycle events.
type EventPublisher interface {
	PublishPaymentEvent(topic string, event models.PaymentEvent) error
}

// Orchestrator runs the confirmation flow: re-validate the draft, apply
// the booking rate limit, create the advance intent, and on completion
// route the three possible outcomes.
type Orchestrator struct {
	sessions SessionSource
	bookings BookingConfirmer
	intents  IntentService
	store    PaymentRecorder
	events   EventPublisher
	limiter  ratelimit.Limiter
	topics   config.TopicConfig
	currency string
	log      *logger.Logger
}

func NewOrchestrator(
	sessions SessionSource,
	bookings BookingConfirmer,
	intents IntentService,
	store PaymentRecorder,
	events EventPublisher,
	limiter ratelimit.Limiter,
	topics config.TopicConfig,
	currency string,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		bookings: bookings,
		intents:  intents,
		store:    store,
		events:   events,
		limiter:  limiter,
		topics:   topics,
		currency: currency,
		log:      log,
	}
}

// ConfirmResponse hands the client everything needed to render the payment
// widget.
type ConfirmResponse struct {
	PaymentID string                        `json:"payment_id"`
	Intent    *models.PaymentIntentResponse `json:"intent"`
	Quote     pricing.Quote                 `json:"quote"`
}

// CompletionResponse is the single completion path for all three outcomes.
type CompletionResponse struct {
	Outcome    models.PaymentOutcome   `json:"outcome"`
	Booking    *models.BookingResponse `json:"booking,omitempty"`
	Navigation string                  `json:"navigation,omitempty"`
	Message    string                  `json:"message"`
}

// Confirm starts a payment attempt for a wizard session. The whole draft is
// re-validated before any money moves, and attempts are rate limited per
// visitor.
func (o *Orchestrator) Confirm(ctx context.Context, sessionID string) (*ConfirmResponse, error) {
	sess, err := o.sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}

	if fieldErrs := sess.ValidateForConfirm(); len(fieldErrs) > 0 {
		o.log.LogPayment("CONFIRM_REJECTED", sessionID, fmt.Sprintf("%d validation failures", len(fieldErrs)))
		return nil, &wizard.StepError{Step: wizard.StepSummary, Fields: fieldErrs}
	}

	draft := sess.DraftCopy()
	key := draft.Email + "_booking"
	if !o.limiter.Allow(key) {
		retry := o.limiter.RemainingTime(key)
		o.log.LogPayment("CONFIRM_RATE_LIMITED", sessionID, fmt.Sprintf("blocked for %s", retry))
		return nil, &wizard.RateLimitError{RetryAfter: retry}
	}

	idemKey := sess.EnsureIdempotencyKey(utils.GenerateIdempotencyKey)
	quote := pricing.Compute(draft, sess.Venue)

	intentReq := &models.PaymentIntentRequest{
		SessionID:      sessionID,
		VenueID:        sess.Venue.VenueID,
		VenueName:      sess.Venue.Name,
		AmountMinor:    int64(quote.Advance) * 100,
		Currency:       o.currency,
		Description:    fmt.Sprintf("Advance for %s on %s", sess.Venue.Name, draft.SelectedDate),
		CustomerName:   draft.BookingName,
		CustomerEmail:  draft.Email,
		CustomerPhone:  draft.Phone,
		IdempotencyKey: idemKey,
	}

	intent, err := o.intents.CreateAdvanceIntent(ctx, intentReq)
	if err != nil {
		o.log.Error("PAYMENT", fmt.Sprintf("Intent creation failed for session %s: %v", sessionID, err))
		return nil, err
	}

	record, err := o.store.GetPaymentByIdempotencyKey(idemKey)
	if err != nil {
		record = &models.Payment{
			PaymentID:      utils.GeneratePaymentID(),
			SessionID:      sessionID,
			VenueID:        sess.Venue.VenueID,
			IdempotencyKey: idemKey,
			Status:         models.StatusPending,
			Amount:         quote.Advance,
			Currency:       o.currency,
			IntentID:       intent.IntentID,
			CreatedDate:    time.Now(),
			UpdatedDate:    time.Now(),
		}
		if err := o.store.SavePayment(record); err != nil {
			return nil, fmt.Errorf("failed to record payment: %w", err)
		}
	} else {
		record.IntentID = intent.IntentID
		record.Status = models.StatusPending
		record.UpdatedDate = time.Now()
		if err := o.store.UpdatePayment(record); err != nil {
			return nil, fmt.Errorf("failed to update payment record: %w", err)
		}
	}

	o.log.LogPayment("CONFIRM_STARTED", record.PaymentID, fmt.Sprintf("session %s advance %d", sessionID, quote.Advance))
	return &ConfirmResponse{
		PaymentID: record.PaymentID,
		Intent:    intent,
		Quote:     quote,
	}, nil
}

// Complete resolves a payment widget lifecycle. Confirmed payments trigger
// the secure booking write; a dismissal keeps the draft so the visitor can
// retry.
func (o *Orchestrator) Complete(ctx context.Context, sessionID string, result models.PaymentResult) (*CompletionResponse, error) {
	sess, err := o.sessions.Session(sessionID)
	if err != nil {
		return nil, err
	}

	record, err := o.store.GetPayment(result.PaymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}

	switch result.Outcome {
	case models.PaymentConfirmed:
		return o.completeConfirmed(ctx, sessionID, sess, record)

	case models.PaymentCancelled:
		record.Status = models.StatusCancelled
		record.UpdatedDate = time.Now()
		if err := o.store.UpdatePayment(record); err != nil {
			o.log.Warn("PAYMENT", fmt.Sprintf("Failed to mark payment %s cancelled: %v", record.PaymentID, err))
		}
		if record.IntentID != "" {
			if err := o.intents.CancelIntent(ctx, record.IntentID); err != nil {
				o.log.Warn("PAYMENT", fmt.Sprintf("Failed to void intent %s: %v", record.IntentID, err))
			}
		}
		// The voided intent is unusable, so the next confirmation attempt
		// must mint a fresh idempotency key or the provider replays it.
		sess.ResetIdempotencyKey()
		o.publishEvent(o.topics.BookingCancelled, "booking.cancelled", sessionID, record)
		o.log.LogPayment("CANCELLED", record.PaymentID, "visitor dismissed the payment widget")
		return &CompletionResponse{
			Outcome: models.PaymentCancelled,
			Message: "Payment was cancelled. Your booking details are saved, try again whenever you are ready.",
		}, nil

	case models.PaymentFailed:
		record.Status = models.StatusFailed
		record.UpdatedDate = time.Now()
		if err := o.store.UpdatePayment(record); err != nil {
			o.log.Warn("PAYMENT", fmt.Sprintf("Failed to mark payment %s failed: %v", record.PaymentID, err))
		}
		o.publishEvent(o.topics.PaymentFailed, "payment.failed", sessionID, record)
		o.log.LogPayment("FAILED", record.PaymentID, result.Reason)
		return &CompletionResponse{
			Outcome: models.PaymentFailed,
			Message: "Payment failed. Please check your payment details and try again.",
		}, nil

	default:
		return nil, fmt.Errorf("unknown payment outcome: %q", result.Outcome)
	}
}

func (o *Orchestrator) completeConfirmed(ctx context.Context, sessionID string, sess *wizard.Session, record *models.Payment) (*CompletionResponse, error) {
	// The confirmed outcome is client-asserted; the provider is the
	// authority on whether money actually moved.
	status, err := o.intents.GetIntentStatus(ctx, record.IntentID)
	if err != nil {
		o.log.Error("PAYMENT", fmt.Sprintf("Intent verification failed for %s: %v", record.PaymentID, err))
		return nil, fmt.Errorf("failed to verify payment %s: %w", record.PaymentID, err)
	}
	if status != models.StatusSuccess {
		o.log.Warn("PAYMENT", fmt.Sprintf("Rejecting confirmation for %s: provider reports %s", record.PaymentID, status))
		return nil, fmt.Errorf("payment %s: %w", record.PaymentID, ErrPaymentNotConfirmed)
	}

	record.Status = models.StatusSuccess
	record.UpdatedDate = time.Now()
	if err := o.store.UpdatePayment(record); err != nil {
		o.log.Warn("PAYMENT", fmt.Sprintf("Failed to mark payment %s succeeded: %v", record.PaymentID, err))
	}
	o.publishEvent(o.topics.PaymentSucceeded, "payment.succeeded", sessionID, record)

	draft := sess.DraftCopy()
	quote := pricing.Compute(draft, sess.Venue)

	req := models.BookingRequest{
		VenueID:        sess.Venue.VenueID,
		SlotID:         draft.SlotID,
		BookingDate:    draft.SelectedDate,
		BookingName:    draft.BookingName,
		Persons:        draft.Persons,
		Phone:          draft.Phone,
		Email:          draft.Email,
		Decoration:     draft.Decoration,
		AdvancePaid:    true,
		PaymentID:      record.PaymentID,
		IdempotencyKey: record.IdempotencyKey,
		EventType:      draft.EventType,
		CakeSelection:  cakeSummary(draft.SelectedCakes),
		SelectedAddOns: strings.Join(draft.SelectedAddOns, ", "),
		Subtotal:       quote.Subtotal,
		AdvanceAmount:  quote.Advance,
	}

	resp, err := o.bookings.SecureBooking(req)
	if err != nil {
		// Money moved but no booking exists. This must go to support,
		// never back into a retry loop that could double-book.
		record.Status = models.StatusNeedsSupport
		record.UpdatedDate = time.Now()
		if uerr := o.store.UpdatePayment(record); uerr != nil {
			o.log.Error("PAYMENT", fmt.Sprintf("Failed to flag payment %s for support: %v", record.PaymentID, uerr))
		}
		o.publishEvent(o.topics.BookingSupport, "booking.support", sessionID, record)
		o.log.Error("PAYMENT", fmt.Sprintf("Booking failed after successful charge %s: %v", record.PaymentID, err))
		return &CompletionResponse{
			Outcome: models.PaymentConfirmed,
			Message: SupportMessage,
		}, &SupportError{PaymentID: record.PaymentID}
	}

	o.sessions.Finish(sessionID)
	o.log.LogPayment("BOOKED", record.PaymentID, fmt.Sprintf("booking %s confirmed", resp.Reference))
	return &CompletionResponse{
		Outcome:    models.PaymentConfirmed,
		Booking:    resp,
		Navigation: "/booking-success",
		Message:    "Booking confirmed",
	}, nil
}

func (o *Orchestrator) publishEvent(topic, eventType, sessionID string, record *models.Payment) {
	if o.events == nil || topic == "" {
		return
	}
	event := models.PaymentEvent{
		Type:      eventType,
		PaymentID: record.PaymentID,
		SessionID: sessionID,
		Payment:   record,
		Timestamp: time.Now(),
	}
	if err := o.events.PublishPaymentEvent(topic, event); err != nil {
		o.log.Warn("KAFKA", fmt.Sprintf("Failed to publish %s for payment %s: %v", eventType, record.PaymentID, err))
	}
}

// cakeSummary renders the cake selection the way it appears on the booking
// record, e.g. "Red Velvet (eggless, oneKg) x1".
func cakeSummary(cakes []models.CakeSelection) string {
	parts := make([]string, 0, len(cakes))
	for _, cake := range cakes {
		parts = append(parts, fmt.Sprintf("%s (%s, %s) x%d", cake.Name, cake.Type, cake.Weight, cake.Quantity))
	}
	return strings.Join(parts, ", ")
}
