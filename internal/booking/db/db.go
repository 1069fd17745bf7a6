package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"bingen-booking/internal/models"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	Bun *bun.DB
}

// ---------------- VENUES ----------------

// GetVenueByID → fetch one venue by its ID
func (d *DB) GetVenueByID(id string) (*models.Venue, error) {
	var venue models.Venue
	err := d.Bun.NewSelect().
		Model(&venue).
		Where("venue_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

// ListVenues → all venues, catalog order
func (d *DB) ListVenues() ([]models.Venue, error) {
	var venues []models.Venue
	err := d.Bun.NewSelect().
		Model(&venues).
		Order("price ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return venues, nil
}

// ---------------- AVAILABILITY ----------------

// GetAvailableSlots → slots for a venue on a date, minus slots already taken
// by a confirmed booking. Ordered by start time; an empty result means no
// availability.
func (d *DB) GetAvailableSlots(venueID, date string) ([]models.AvailableSlot, error) {
	var slots []models.Slot
	err := d.Bun.NewSelect().
		Model(&slots).
		Where("venue_id = ?", venueID).
		Where("active = ?", true).
		Where("slot_id NOT IN (SELECT slot_id FROM bookings WHERE venue_id = ? AND booking_date = ? AND status = ?)",
			venueID, date, "confirmed").
		Order("start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	available := make([]models.AvailableSlot, 0, len(slots))
	for _, slot := range slots {
		available = append(available, models.AvailableSlot{
			SlotID:    slot.SlotID,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
		})
	}
	return available, nil
}

// GetSlotByID → fetch one slot scoped to a venue
func (d *DB) GetSlotByID(venueID, slotID string) (*models.Slot, error) {
	var slot models.Slot
	err := d.Bun.NewSelect().
		Model(&slot).
		Where("venue_id = ?", venueID).
		Where("slot_id = ?", slotID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// IsSlotBooked → reports whether a confirmed booking already holds the slot
// on the date.
func (d *DB) IsSlotBooked(venueID, slotID, date string) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("venue_id = ?", venueID).
		Where("slot_id = ?", slotID).
		Where("booking_date = ?", date).
		Where("status = ?", "confirmed").
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ---------------- BOOKINGS ----------------

// CreateBooking → insert new booking record
func (d *DB) CreateBooking(booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(context.Background())
	return err
}

// GetBookingByReference → fetch one booking by its reference
func (d *DB) GetBookingByReference(reference string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("reference = ?", reference).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingByIdempotencyKey → used by the secure booking call to detect a
// client retry of an already-persisted booking.
func (d *DB) GetBookingByIdempotencyKey(key string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("idempotency_key = ?", key).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingByPaymentID → retry detection when the idempotency key was lost
// but the charge id survived.
func (d *DB) GetBookingByPaymentID(paymentID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("payment_id = ?", paymentID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListBookingsByDate → confirmed bookings for a venue and date, used by the
// analytics rollups.
func (d *DB) ListBookingsByDate(venueID, date string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("venue_id = ?", venueID).
		Where("booking_date = ?", date).
		Where("status = ?", "confirmed").
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
