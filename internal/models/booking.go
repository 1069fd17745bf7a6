package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking is the persisted record. It is written exactly once, by the secure
// booking call after payment confirmation; drafts never touch this table.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	Reference      string    `bun:"reference,pk" json:"reference"`
	VenueID        string    `bun:"venue_id,notnull" json:"venue_id"`
	SlotID         string    `bun:"slot_id,notnull" json:"slot_id"`
	BookingDate    string    `bun:"booking_date,notnull" json:"booking_date"`
	BookingName    string    `bun:"booking_name,notnull" json:"booking_name"`
	Persons        int       `bun:"persons,notnull" json:"persons"`
	Phone          string    `bun:"phone,notnull" json:"phone"`
	Email          string    `bun:"email,notnull" json:"email"`
	Decoration     bool      `bun:"decoration" json:"decoration"`
	EventType      string    `bun:"event_type" json:"event_type"`
	CakeSelection  string    `bun:"cake_selection" json:"cake_selection"`
	SelectedAddOns string    `bun:"selected_addons" json:"selected_addons"`
	AdvancePaid    bool      `bun:"advance_paid" json:"advance_paid"`
	PaymentID      string    `bun:"payment_id,notnull" json:"payment_id"`
	IdempotencyKey string    `bun:"idempotency_key,notnull" json:"idempotency_key"`
	Subtotal       int       `bun:"subtotal" json:"subtotal"`
	AdvanceAmount  int       `bun:"advance_amount" json:"advance_amount"`
	Status         string    `bun:"status,notnull" json:"status"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"created_at"`
}

// BookingRequest is the secure booking payload: the fully sanitized draft
// plus the payment confirmation id and the idempotency key minted at
// confirmation time.
type BookingRequest struct {
	VenueID        string `json:"venue_id"`
	SlotID         string `json:"slot_id"`
	BookingDate    string `json:"booking_date"`
	BookingName    string `json:"booking_name"`
	Persons        int    `json:"persons"`
	Phone          string `json:"whatsapp"`
	Email          string `json:"email"`
	Decoration     bool   `json:"decoration"`
	AdvancePaid    bool   `json:"advance_paid"`
	PaymentID      string `json:"payment_id"`
	IdempotencyKey string `json:"idempotency_key"`
	EventType      string `json:"event_type"`
	CakeSelection  string `json:"cake_selection"`
	SelectedAddOns string `json:"selected_addons"`
	Subtotal       int    `json:"subtotal"`
	AdvanceAmount  int    `json:"advance_amount"`
}

type BookingResponse struct {
	Reference   string `json:"reference"`
	VenueID     string `json:"venue_id"`
	SlotID      string `json:"slot_id"`
	BookingDate string `json:"booking_date"`
	Status      string `json:"status"`
	QRCode      []byte `json:"qr_code,omitempty"`
}
