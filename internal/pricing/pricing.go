// Package pricing computes the booking quote. All amounts are integer
// rupees; the advance collected online is a fixed constant and the balance
// is settled at the venue.
package pricing

import (
	"bingen-booking/internal/catalog"
	"bingen-booking/internal/models"
)

const (
	// DecorationFee is charged when the decoration flag is set.
	DecorationFee = 400
	// AdvanceAmount is the fixed portion of the total collected online to
	// confirm a reservation (includes the convenience fee).
	AdvanceAmount = 700
)

type Quote struct {
	BasePrice     int `json:"base_price"`
	DecorationFee int `json:"decoration_fee"`
	CakesTotal    int `json:"cakes_total"`
	AddOnsTotal   int `json:"addons_total"`
	Subtotal      int `json:"subtotal"`
	Advance       int `json:"advance"`
	Balance       int `json:"balance"`
}

// Compute derives the quote from the current selections. Pure function:
// unknown add-on names contribute nothing, cake lines use the unit price
// fixed at selection time.
func Compute(draft models.BookingDraft, venue models.Venue) Quote {
	q := Quote{BasePrice: venue.Price}

	if draft.Decoration {
		q.DecorationFee = DecorationFee
	}

	for _, cake := range draft.SelectedCakes {
		q.CakesTotal += cake.Price * cake.Quantity
	}

	for _, name := range draft.SelectedAddOns {
		if addOn, ok := catalog.AddOnByName(name); ok {
			q.AddOnsTotal += addOn.Price
		}
	}

	q.Subtotal = q.BasePrice + q.DecorationFee + q.CakesTotal + q.AddOnsTotal
	q.Advance = AdvanceAmount
	q.Balance = q.Subtotal - q.Advance
	return q
}
