package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
)

var (
	ErrStripeAPIError         = errors.New("stripe API error")
	ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")
)

// StripeService creates and inspects advance payment intents. The advance
// is a fixed amount; the balance is collected at the venue, so only one
// intent per booking attempt ever exists.
type StripeService struct {
	client   *client.API
	currency string
	log      *logger.Logger
}

func NewStripeService(cfg config.StripeConfig, log *logger.Logger) (*StripeService, error) {
	if cfg.SecretKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY not configured")
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(cfg.SecretKey, nil)
	if sc == nil {
		log.Error("STRIPE", "Failed to initialize Stripe client")
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeService{
		client:   sc,
		currency: cfg.Currency,
		log:      log,
	}, nil
}

// CreateAdvanceIntent creates the payment intent for the advance amount.
// The idempotency key makes a retried confirmation reuse the same charge.
func (s *StripeService) CreateAdvanceIntent(ctx context.Context, req *models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	if req.AmountMinor <= 0 {
		s.log.Error("STRIPE", fmt.Sprintf("Invalid intent amount %d for session %s", req.AmountMinor, req.SessionID))
		return nil, fmt.Errorf("%w: invalid amount %d", ErrStripeAPIError, req.AmountMinor)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	metadata := map[string]string{
		"session_id":      req.SessionID,
		"venue_id":        req.VenueID,
		"idempotency_key": req.IdempotencyKey,
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(currency),
		Description: stripe.String(req.Description),
		Metadata:    metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		ReceiptEmail: stripe.String(req.CustomerEmail),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	s.log.Info("STRIPE", fmt.Sprintf("Creating advance intent for session %s, amount %d %s", req.SessionID, req.AmountMinor, currency))
	pi, err := s.client.PaymentIntents.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent: %v", err))
		return nil, fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	s.log.Info("STRIPE", fmt.Sprintf("Payment intent created: %s (session: %s)", pi.ID, req.SessionID))
	return &models.PaymentIntentResponse{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountMinor:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// GetIntentStatus maps the provider status onto the payment record status.
func (s *StripeService) GetIntentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.client.PaymentIntents.Get(intentID, params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to fetch intent %s: %v", intentID, err))
		return "", fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return models.StatusSuccess, nil
	case stripe.PaymentIntentStatusCanceled:
		return models.StatusCancelled, nil
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusRequiresPaymentMethod:
		return models.StatusPending, nil
	default:
		return models.StatusFailed, nil
	}
}

// CancelIntent voids a pending intent after the visitor dismisses the
// widget.
func (s *StripeService) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	_, err := s.client.PaymentIntents.Cancel(intentID, params)
	if err != nil {
		s.log.Warn("STRIPE", fmt.Sprintf("Failed to cancel intent %s: %v", intentID, err))
		return fmt.Errorf("%w: %v", ErrStripeAPIError, err)
	}
	s.log.Info("STRIPE", fmt.Sprintf("Payment intent cancelled: %s", intentID))
	return nil
}
