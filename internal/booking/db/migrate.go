package db

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"bingen-booking/internal/models"
)

// Migrate creates the schema with bun and seeds the venue/slot reference
// data. Intended for dev setups; production schemas go through the
// migrations runner.
func Migrate(db *bun.DB) {
	ctx := context.Background()

	for _, model := range []interface{}{
		(*models.Venue)(nil),
		(*models.Slot)(nil),
		(*models.Booking)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		if err != nil {
			log.Fatalf("create table failed: %v", err)
		}
	}

	log.Println("✅ venues, slots and bookings tables created")

	Seed(db)
}

// Seed inserts the four venues and their slot grids. Idempotent: an already
// seeded database is left untouched, so it is safe to call on every boot.
func Seed(db *bun.DB) {
	ctx := context.Background()

	count, err := db.NewSelect().Model((*models.Venue)(nil)).Count(ctx)
	if err != nil {
		log.Fatalf("venue count failed: %v", err)
	}
	if count > 0 {
		log.Println("venues already seeded, skipping")
		return
	}

	venues := SeedVenues()
	_, err = db.NewInsert().Model(&venues).Exec(ctx)
	if err != nil {
		log.Fatalf("venue seed failed: %v", err)
	}

	var slots []models.Slot
	for _, venue := range venues {
		slots = append(slots, SeedSlots(venue.VenueID)...)
	}
	_, err = db.NewInsert().Model(&slots).Exec(ctx)
	if err != nil {
		log.Fatalf("slot seed failed: %v", err)
	}

	log.Printf("✅ seeded %d venues and %d slots", len(venues), len(slots))
}

// SeedVenues returns the venue reference data.
func SeedVenues() []models.Venue {
	return []models.Venue{
		{
			VenueID:       "couple",
			Name:          "Couple",
			Price:         1099,
			Capacity:      2,
			ScreenSize:    "120-inch 4K screen",
			DecorationFee: 400,
			Image:         "/venues/couple.jpg",
			Features:      []string{"For 2 persons", "Decoration included", "Dolby sound"},
			RefundPolicy:  "Full refund up to 72 hours before the slot",
			CoupleVenue:   true,
		},
		{
			VenueID:       "lunar",
			Name:          "Lunar",
			Price:         1299,
			Capacity:      4,
			ScreenSize:    "133-inch 4K screen",
			DecorationFee: 400,
			Image:         "/venues/lunar.jpg",
			Features:      []string{"Up to 4 persons", "Dolby sound", "Cozy recliners"},
			RefundPolicy:  "Full refund up to 72 hours before the slot",
		},
		{
			VenueID:       "aura",
			Name:          "Aura",
			Price:         1499,
			Capacity:      6,
			ScreenSize:    "150-inch 4K screen",
			DecorationFee: 400,
			Image:         "/venues/aura.jpg",
			Features:      []string{"Up to 6 persons", "Dolby Atmos", "Party lighting"},
			RefundPolicy:  "Full refund up to 72 hours before the slot",
		},
		{
			VenueID:       "minimax",
			Name:          "Minimax",
			Price:         1999,
			Capacity:      10,
			ScreenSize:    "175-inch 4K screen",
			DecorationFee: 400,
			Image:         "/venues/minimax.jpg",
			Features:      []string{"Up to 10 persons", "Dolby Atmos", "Stage area"},
			RefundPolicy:  "Full refund up to 72 hours before the slot",
		},
	}
}

// SeedSlots returns the daily slot grid for a venue. Slot ids are
// backend-issued UUIDs.
func SeedSlots(venueID string) []models.Slot {
	windows := []struct {
		start string
		end   string
	}{
		{"09:00", "12:00"},
		{"12:30", "15:30"},
		{"16:00", "19:00"},
		{"19:30", "22:30"},
	}

	slots := make([]models.Slot, 0, len(windows))
	for _, w := range windows {
		slots = append(slots, models.Slot{
			SlotID:    uuid.NewString(),
			VenueID:   venueID,
			StartTime: w.start,
			EndTime:   w.end,
			Active:    true,
		})
	}
	return slots
}
