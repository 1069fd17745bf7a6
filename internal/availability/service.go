// Package availability answers the "which slots can still be booked"
// query. The answer is advisory: the secure booking call re-checks at
// persist time.
package availability

import (
	"fmt"

	"bingen-booking/internal/models"
	"bingen-booking/internal/validation"
)

type SlotSource interface {
	GetAvailableSlots(venueID, date string) ([]models.AvailableSlot, error)
}

// LockChecker reports whether a slot is currently held by an in-flight
// booking attempt.
type LockChecker interface {
	CheckSlotAvailability(venueID, date, slotID string) (bool, error)
}

type Service struct {
	DB    SlotSource
	Locks LockChecker
}

func NewService(db SlotSource, locks LockChecker) *Service {
	return &Service{DB: db, Locks: locks}
}

// AvailableSlots returns the bookable slots for a venue and date, ordered by
// start time. Slots held by an in-flight payment are filtered out so the
// wizard never offers a window that is seconds away from being taken. An
// empty slice means no availability.
func (s *Service) AvailableSlots(venueID, date string) ([]models.AvailableSlot, error) {
	if venueID == "" {
		return nil, fmt.Errorf("venue id is required")
	}
	if !validation.Date(date) {
		return nil, fmt.Errorf("invalid booking date: %s", date)
	}

	slots, err := s.DB.GetAvailableSlots(venueID, date)
	if err != nil {
		return nil, fmt.Errorf("availability query failed: %w", err)
	}

	if s.Locks != nil {
		open := slots[:0]
		for _, slot := range slots {
			free, err := s.Locks.CheckSlotAvailability(venueID, date, slot.SlotID)
			if err != nil {
				// A lock-store outage must not blank the calendar; the
				// booking write still holds the authoritative check.
				open = append(open, slot)
				continue
			}
			if free {
				open = append(open, slot)
			}
		}
		slots = open
	}

	if slots == nil {
		slots = []models.AvailableSlot{}
	}
	return slots, nil
}
