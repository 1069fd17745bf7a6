package models

// CakeType and CakeWeight index the catalog price matrix.
type CakeType string

const (
	CakeEgg     CakeType = "egg"
	CakeEggless CakeType = "eggless"
)

type CakeWeight string

const (
	CakeHalfKg CakeWeight = "halfKg"
	CakeOneKg  CakeWeight = "oneKg"
)

// CakeSelection is one chosen cake line: unit price is fixed at selection
// time from the catalog matrix.
type CakeSelection struct {
	Name     string     `json:"name"`
	Type     CakeType   `json:"type"`
	Weight   CakeWeight `json:"weight"`
	Price    int        `json:"price"`
	Quantity int        `json:"quantity"`
}

// BookingDraft is the mutable aggregate a wizard session accumulates. It
// lives in memory for the duration of one session and becomes a Booking only
// after successful payment confirmation.
type BookingDraft struct {
	BookingName    string          `json:"booking_name"`
	Persons        int             `json:"persons"`
	Phone          string          `json:"whatsapp"`
	Email          string          `json:"email"`
	Decoration     bool            `json:"decoration"`
	SelectedDate   string          `json:"selected_date"`
	SlotID         string          `json:"slot_id"`
	EventType      string          `json:"event_type"`
	SelectedCakes  []CakeSelection `json:"selected_cakes"`
	SelectedAddOns []string        `json:"selected_addons"`
}
