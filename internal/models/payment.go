package models

import (
	"time"
)

type PaymentStatus string

const (
	StatusPending      PaymentStatus = "pending"
	StatusSuccess      PaymentStatus = "success"
	StatusFailed       PaymentStatus = "failed"
	StatusCancelled    PaymentStatus = "cancelled"
	StatusNeedsSupport PaymentStatus = "needs_support"
)

// Payment is the gateway-side record of one advance charge attempt.
type Payment struct {
	PaymentID      string        `json:"payment_id"`
	SessionID      string        `json:"session_id"`
	VenueID        string        `json:"venue_id"`
	IdempotencyKey string        `json:"idempotency_key"`
	Status         PaymentStatus `json:"status"`
	Amount         int           `json:"amount"`
	Currency       string        `json:"currency"`
	IntentID       string        `json:"intent_id,omitempty"`
	CreatedDate    time.Time     `json:"created_date"`
	UpdatedDate    time.Time     `json:"updated_date,omitempty"`
}

// PaymentIntentRequest is the immutable request handed to the payment
// provider: fixed advance amount in minor currency units plus display
// metadata. It is built once per confirmation attempt.
type PaymentIntentRequest struct {
	SessionID      string            `json:"session_id"`
	VenueID        string            `json:"venue_id"`
	VenueName      string            `json:"venue_name"`
	AmountMinor    int64             `json:"amount_minor"`
	Currency       string            `json:"currency"`
	Description    string            `json:"description"`
	CustomerName   string            `json:"customer_name"`
	CustomerEmail  string            `json:"customer_email"`
	CustomerPhone  string            `json:"customer_phone"`
	IdempotencyKey string            `json:"idempotency_key"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type PaymentIntentResponse struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountMinor  int64  `json:"amount_minor"`
	Currency     string `json:"currency"`
}

// PaymentOutcome is the three-outcome completion of one payment widget
// lifecycle: confirmed with a token, cancelled by the user, or failed.
type PaymentOutcome string

const (
	PaymentConfirmed PaymentOutcome = "confirmed"
	PaymentCancelled PaymentOutcome = "cancelled"
	PaymentFailed    PaymentOutcome = "failed"
)

// PaymentResult is delivered to the orchestrator through a single
// completion path regardless of how the widget ended.
type PaymentResult struct {
	Outcome   PaymentOutcome `json:"outcome"`
	PaymentID string         `json:"payment_id,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

type PaymentEvent struct {
	Type      string    `json:"type"`
	PaymentID string    `json:"payment_id"`
	SessionID string    `json:"session_id"`
	Payment   *Payment  `json:"payment,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
