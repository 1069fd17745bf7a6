package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bingen-booking/internal/models"
	"bingen-booking/internal/pricing"
)

func venue(price int) models.Venue {
	return models.Venue{VenueID: "aura", Name: "Aura", Price: price, Capacity: 6}
}

func TestComputeBaseOnly(t *testing.T) {
	q := pricing.Compute(models.BookingDraft{}, venue(1499))

	assert.Equal(t, 1499, q.BasePrice)
	assert.Equal(t, 0, q.DecorationFee)
	assert.Equal(t, 1499, q.Subtotal)
	assert.Equal(t, pricing.AdvanceAmount, q.Advance)
	assert.Equal(t, 1499-pricing.AdvanceAmount, q.Balance)
}

func TestComputeWithDecoration(t *testing.T) {
	draft := models.BookingDraft{Decoration: true}
	q := pricing.Compute(draft, venue(1099))

	assert.Equal(t, pricing.DecorationFee, q.DecorationFee)
	assert.Equal(t, 1099+400, q.Subtotal)
	assert.Equal(t, 1099+400-700, q.Balance)
}

func TestComputeWithCakesAndAddOns(t *testing.T) {
	draft := models.BookingDraft{
		Decoration: true,
		SelectedCakes: []models.CakeSelection{
			{Name: "Choco Truffle", Type: models.CakeEgg, Weight: models.CakeHalfKg, Price: 600, Quantity: 2},
			{Name: "Blueberry", Type: models.CakeEggless, Weight: models.CakeOneKg, Price: 1200, Quantity: 1},
		},
		SelectedAddOns: []string{"Rose", "LED Numbers"},
	}
	q := pricing.Compute(draft, venue(1999))

	assert.Equal(t, 600*2+1200, q.CakesTotal)
	assert.Equal(t, 99+99, q.AddOnsTotal)
	assert.Equal(t, 1999+400+600*2+1200+99+99, q.Subtotal)
	assert.Equal(t, q.Subtotal-q.Advance, q.Balance)
}

func TestComputeIgnoresUnknownAddOns(t *testing.T) {
	draft := models.BookingDraft{
		SelectedAddOns: []string{"Not A Real Add-On"},
	}
	q := pricing.Compute(draft, venue(1299))

	assert.Equal(t, 0, q.AddOnsTotal)
	assert.Equal(t, 1299, q.Subtotal)
}

func TestAdvanceIsFixed(t *testing.T) {
	cheap := pricing.Compute(models.BookingDraft{}, venue(1099))
	rich := pricing.Compute(models.BookingDraft{
		Decoration:     true,
		SelectedAddOns: []string{"Rose"},
	}, venue(1999))

	assert.Equal(t, cheap.Advance, rich.Advance)
	assert.Equal(t, pricing.AdvanceAmount, rich.Advance)
}
