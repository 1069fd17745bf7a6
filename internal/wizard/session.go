package wizard

import (
	"strconv"
	"sync"
	"time"

	"bingen-booking/internal/catalog"
	"bingen-booking/internal/models"
	"bingen-booking/internal/validation"
)

// Step is one screen of the booking wizard. Transitions are linear: a single
// step forward gated by validation, a single step back never gated.
type Step string

const (
	StepBooking   Step = "booking"
	StepEventType Step = "event-type"
	StepCake      Step = "cake"
	StepAddOns    Step = "addons"
	StepSummary   Step = "summary"
)

var stepOrder = []Step{StepBooking, StepEventType, StepCake, StepAddOns, StepSummary}

func (s Step) index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return 0
}

func (s Step) next() (Step, bool) {
	i := s.index()
	if i >= len(stepOrder)-1 {
		return s, false
	}
	return stepOrder[i+1], true
}

func (s Step) back() Step {
	i := s.index()
	if i <= 0 {
		return StepBooking
	}
	return stepOrder[i-1]
}

// Session holds one visitor's wizard state: the draft, the candidate slot
// list for the selected date and the current step. It lives only in memory
// and is dropped when the session expires.
type Session struct {
	mu sync.Mutex

	SessionID string
	Venue     models.Venue
	Step      Step
	Draft     models.BookingDraft
	Slots     []models.AvailableSlot

	// fetchGen guards against a stale in-flight availability fetch
	// overwriting the slots of a more recently selected date.
	fetchGen uint64

	// idempotencyKey is minted on the first confirmation attempt and
	// reused on retries so the gateway never double-charges.
	idempotencyKey string

	CreatedAt  time.Time
	LastActive time.Time
}

// DetailsUpdate carries the booking-details fields a client may change.
type DetailsUpdate struct {
	BookingName string `json:"booking_name"`
	Persons     int    `json:"persons"`
	Phone       string `json:"whatsapp"`
	Email       string `json:"email"`
	Decoration  *bool  `json:"decoration,omitempty"`
	SlotID      string `json:"slot_id"`
}

// View is the JSON snapshot handed to clients.
type View struct {
	SessionID string                 `json:"session_id"`
	Venue     models.Venue           `json:"venue"`
	Step      Step                   `json:"step"`
	Draft     models.BookingDraft    `json:"draft"`
	Slots     []models.AvailableSlot `json:"slots"`
}

func newSession(id string, venue models.Venue) *Session {
	now := time.Now()
	s := &Session{
		SessionID:  id,
		Venue:      venue,
		Step:       StepBooking,
		CreatedAt:  now,
		LastActive: now,
	}
	s.Draft.Persons = 1
	// Decoration is mandatory for the couple venue.
	if venue.CoupleVenue {
		s.Draft.Decoration = true
	}
	return s
}

func (s *Session) touch() {
	s.LastActive = time.Now()
}

// UpdateDetails applies a details update to the draft. Fields are sanitized
// on the way in; entered data is never discarded on validation failure.
func (s *Session) UpdateDetails(update DetailsUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.Draft.BookingName = validation.Sanitize(update.BookingName)
	s.Draft.Phone = validation.Sanitize(update.Phone)
	s.Draft.Email = validation.Sanitize(update.Email)
	if update.Persons > 0 {
		s.Draft.Persons = update.Persons
	}
	if update.SlotID != "" {
		s.Draft.SlotID = update.SlotID
	}
	if update.Decoration != nil {
		s.Draft.Decoration = *update.Decoration
	}
	if s.Venue.CoupleVenue {
		s.Draft.Decoration = true
	}
}

// BeginSlotFetch records a new selected date and returns the fetch
// generation whose result is allowed to win.
func (s *Session) BeginSlotFetch(date string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.Draft.SelectedDate = date
	s.fetchGen++
	return s.fetchGen
}

// ApplySlotResult installs a fetch result. A result from a superseded fetch
// is discarded so a slow response for an old date cannot override the
// current selection. The previous slot selection is cleared if it is no
// longer present; otherwise the first available slot is auto-selected when
// nothing was chosen yet.
func (s *Session) ApplySlotResult(gen uint64, slots []models.AvailableSlot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.fetchGen {
		return false
	}
	s.touch()

	if slots == nil {
		slots = []models.AvailableSlot{}
	}
	s.Slots = slots

	if len(slots) == 0 {
		s.Draft.SlotID = ""
		return true
	}

	for _, slot := range slots {
		if slot.SlotID == s.Draft.SlotID {
			return true
		}
	}
	s.Draft.SlotID = slots[0].SlotID
	return true
}

// SetEventType records the event-type selection. Unknown names are
// rejected.
func (s *Session) SetEventType(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	clean := validation.Sanitize(name)
	if _, ok := catalog.EventTypeByName(clean); !ok {
		return false
	}
	s.Draft.EventType = clean
	return true
}

// SetCakes replaces the cake selection. Unit prices come from the catalog
// matrix, never from the client.
func (s *Session) SetCakes(selections []models.CakeSelection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	cakes := make([]models.CakeSelection, 0, len(selections))
	for _, sel := range selections {
		price, ok := catalog.CakePrice(sel.Name, sel.Type, sel.Weight)
		if !ok {
			return false
		}
		if sel.Quantity < 1 {
			return false
		}
		sel.Name = validation.Sanitize(sel.Name)
		sel.Price = price
		cakes = append(cakes, sel)
	}
	s.Draft.SelectedCakes = cakes
	return true
}

// SetAddOns replaces the add-on selection. Unknown names are rejected.
func (s *Session) SetAddOns(names []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	addOns := make([]string, 0, len(names))
	for _, name := range names {
		clean := validation.Sanitize(name)
		if _, ok := catalog.AddOnByName(clean); !ok {
			return false
		}
		addOns = append(addOns, clean)
	}
	s.Draft.SelectedAddOns = addOns
	return true
}

// Next attempts a forward transition. On validation failure the step stays
// put and the field-keyed error map is returned; entered data is kept.
func (s *Session) Next() (Step, map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if errs := s.validateStep(s.Step); len(errs) > 0 {
		return s.Step, errs
	}

	next, ok := s.Step.next()
	if ok {
		s.Step = next
	}
	return s.Step, nil
}

// Back always succeeds and never validates.
func (s *Session) Back() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	s.Step = s.Step.back()
	return s.Step
}

func (s *Session) validateStep(step Step) map[string]string {
	errs := map[string]string{}

	switch step {
	case StepBooking:
		if s.Draft.SelectedDate == "" {
			errs["selectedDate"] = "Please select a booking date"
		} else if !validation.Date(s.Draft.SelectedDate) {
			errs["selectedDate"] = "Please select a valid future date"
		}

		if s.Draft.SlotID == "" {
			errs["slotId"] = "Please select a time slot"
		} else if !s.slotStillListed(s.Draft.SlotID) {
			errs["slotId"] = "Please select a valid time slot"
		}

		if s.Draft.BookingName == "" {
			errs["bookingName"] = "Please enter a booking name"
		} else if !validation.BookingName(s.Draft.BookingName) {
			errs["bookingName"] = "Booking name must be between 2-50 characters"
		}

		if !validation.Persons(s.Draft.Persons, s.Venue.Capacity) {
			errs["persons"] = "Number of persons must be between 1 and " + strconv.Itoa(s.Venue.Capacity)
		}

		if s.Draft.Phone == "" {
			errs["whatsapp"] = "Please enter a WhatsApp number"
		} else if !validation.Phone(s.Draft.Phone) {
			errs["whatsapp"] = "Please enter a valid 10-digit WhatsApp number"
		}

		if s.Draft.Email == "" {
			errs["email"] = "Please enter an email address"
		} else if !validation.Email(s.Draft.Email) {
			errs["email"] = "Please enter a valid email address"
		}

	case StepEventType:
		if s.Draft.EventType == "" {
			errs["eventType"] = "Please select an event type"
		}

	case StepCake, StepAddOns, StepSummary:
		// Optional selections; nothing to gate on.
	}

	return errs
}

// A slot id is only valid if present in the most recent availability fetch.
func (s *Session) slotStillListed(slotID string) bool {
	if !validation.SlotID(slotID) {
		return false
	}
	for _, slot := range s.Slots {
		if slot.SlotID == slotID {
			return true
		}
	}
	return false
}

// Snapshot returns a consistent copy for serialization.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots := make([]models.AvailableSlot, len(s.Slots))
	copy(slots, s.Slots)

	return View{
		SessionID: s.SessionID,
		Venue:     s.Venue,
		Step:      s.Step,
		Draft:     s.Draft,
		Slots:     slots,
	}
}

// EnsureIdempotencyKey returns the session's confirmation key, minting one
// with gen on first use.
func (s *Session) EnsureIdempotencyKey(gen func() string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.idempotencyKey == "" {
		s.idempotencyKey = gen()
	}
	return s.idempotencyKey
}

// ResetIdempotencyKey discards the session's confirmation key so the next
// attempt mints a fresh one. Called after a payment intent is voided, since
// the provider would replay the dead intent for the old key.
func (s *Session) ResetIdempotencyKey() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idempotencyKey = ""
}

// ValidateForConfirm re-runs every gating step's validation against the
// final draft so a charge is never started on data that went stale.
func (s *Session) ValidateForConfirm() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := s.validateStep(StepBooking)
	for field, msg := range s.validateStep(StepEventType) {
		errs[field] = msg
	}
	return errs
}

// DraftCopy returns the draft under the session lock.
func (s *Session) DraftCopy() models.BookingDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Draft
}
