// Package analytics aggregates confirmed bookings into venue-level
// rollups for the operations dashboard.
package analytics

import (
	"context"

	"github.com/uptrace/bun"

	"bingen-booking/internal/models"
)

// Service handles analytics queries. It reads the same tables the booking
// service writes; rollups are computed on demand, nothing is materialized.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// VenueAnalytics is the aggregated view of one venue over a date range.
type VenueAnalytics struct {
	VenueID          string                `json:"venue_id"`
	TotalBookings    int                   `json:"total_bookings"`
	TotalRevenue     int                   `json:"total_revenue"`
	AdvanceCollected int                   `json:"advance_collected"`
	DecorationCount  int                   `json:"decoration_count"`
	DailyBookings    []DailyBookingMetrics `json:"daily_bookings"`
	EventTypes       []EventTypeMetrics    `json:"event_types"`
}

// DailyBookingMetrics contains metrics for a single booking date.
type DailyBookingMetrics struct {
	Date     string `bun:"booking_date" json:"date"`
	Bookings int    `bun:"bookings" json:"bookings"`
	Revenue  int    `bun:"revenue" json:"revenue"`
}

// EventTypeMetrics counts confirmed bookings per event type.
type EventTypeMetrics struct {
	EventType string `bun:"event_type" json:"event_type"`
	Bookings  int    `bun:"bookings" json:"bookings"`
}

// SlotOccupancy reports how much of a venue's slot inventory a date used.
type SlotOccupancy struct {
	VenueID     string `json:"venue_id"`
	Date        string `json:"date"`
	TotalSlots  int    `json:"total_slots"`
	BookedSlots int    `json:"booked_slots"`
}

// GetVenueAnalytics aggregates confirmed bookings for a venue between two
// booking dates, both inclusive.
func (s *Service) GetVenueAnalytics(ctx context.Context, venueID, from, to string) (*VenueAnalytics, error) {
	result := &VenueAnalytics{VenueID: venueID}

	var totals struct {
		Bookings    int `bun:"bookings"`
		Revenue     int `bun:"revenue"`
		Advance     int `bun:"advance"`
		Decorations int `bun:"decorations"`
	}
	err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("COUNT(*) AS bookings").
		ColumnExpr("COALESCE(SUM(subtotal), 0) AS revenue").
		ColumnExpr("COALESCE(SUM(advance_amount), 0) AS advance").
		ColumnExpr("COALESCE(SUM(CASE WHEN decoration THEN 1 ELSE 0 END), 0) AS decorations").
		Where("venue_id = ?", venueID).
		Where("status = ?", "confirmed").
		Where("booking_date >= ?", from).
		Where("booking_date <= ?", to).
		Scan(ctx, &totals)
	if err != nil {
		return nil, err
	}
	result.TotalBookings = totals.Bookings
	result.TotalRevenue = totals.Revenue
	result.AdvanceCollected = totals.Advance
	result.DecorationCount = totals.Decorations

	err = s.db.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("booking_date").
		ColumnExpr("COUNT(*) AS bookings").
		ColumnExpr("COALESCE(SUM(subtotal), 0) AS revenue").
		Where("venue_id = ?", venueID).
		Where("status = ?", "confirmed").
		Where("booking_date >= ?", from).
		Where("booking_date <= ?", to).
		GroupExpr("booking_date").
		OrderExpr("booking_date ASC").
		Scan(ctx, &result.DailyBookings)
	if err != nil {
		return nil, err
	}

	err = s.db.NewSelect().
		Model((*models.Booking)(nil)).
		ColumnExpr("event_type").
		ColumnExpr("COUNT(*) AS bookings").
		Where("venue_id = ?", venueID).
		Where("status = ?", "confirmed").
		Where("booking_date >= ?", from).
		Where("booking_date <= ?", to).
		GroupExpr("event_type").
		OrderExpr("bookings DESC").
		Scan(ctx, &result.EventTypes)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetSlotOccupancy compares a date's confirmed bookings against the venue's
// active slot inventory.
func (s *Service) GetSlotOccupancy(ctx context.Context, venueID, date string) (*SlotOccupancy, error) {
	total, err := s.db.NewSelect().
		Model((*models.Slot)(nil)).
		Where("venue_id = ?", venueID).
		Where("active = ?", true).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	booked, err := s.db.NewSelect().
		Model((*models.Booking)(nil)).
		Where("venue_id = ?", venueID).
		Where("booking_date = ?", date).
		Where("status = ?", "confirmed").
		Count(ctx)
	if err != nil {
		return nil, err
	}

	return &SlotOccupancy{
		VenueID:     venueID,
		Date:        date,
		TotalSlots:  total,
		BookedSlots: booked,
	}, nil
}
