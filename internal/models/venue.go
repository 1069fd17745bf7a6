package models

import (
	"github.com/uptrace/bun"
)

// Venue is immutable reference data: fetched once when a wizard session
// starts and never written by this service.
type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	VenueID       string   `bun:"venue_id,pk" json:"venue_id"`
	Name          string   `bun:"name,notnull" json:"name"`
	Price         int      `bun:"price,notnull" json:"price"`
	Capacity      int      `bun:"capacity,notnull" json:"capacity"`
	ScreenSize    string   `bun:"screen_size" json:"screen_size"`
	DecorationFee int      `bun:"decoration_fee" json:"decoration_fee"`
	Image         string   `bun:"image" json:"image"`
	Features      []string `bun:"features,array" json:"features"`
	RefundPolicy  string   `bun:"refund_policy" json:"refund_policy"`
	CoupleVenue   bool     `bun:"couple_venue" json:"couple_venue"`
}

// Slot is a bookable time window belonging to a venue. Start and end are
// times of day ("19:30"); the calendar date comes from the availability query.
type Slot struct {
	bun.BaseModel `bun:"table:slots"`

	SlotID    string `bun:"slot_id,pk" json:"slot_id"`
	VenueID   string `bun:"venue_id,notnull" json:"venue_id"`
	StartTime string `bun:"start_time,notnull" json:"start_time"`
	EndTime   string `bun:"end_time,notnull" json:"end_time"`
	Active    bool   `bun:"active,notnull,default:true" json:"active"`
}

// AvailableSlot is one entry of an availability query result.
type AvailableSlot struct {
	SlotID    string `json:"slot_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
