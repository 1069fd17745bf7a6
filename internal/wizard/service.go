package wizard

import (
	"errors"
	"fmt"
	"time"

	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/pricing"
	"bingen-booking/internal/ratelimit"
)

var (
	ErrSessionNotFound  = errors.New("wizard session not found or expired")
	ErrVenueNotFound    = errors.New("venue not found")
	ErrInvalidSelection = errors.New("invalid selection")
)

// SlotsUnavailableMessage is surfaced as a banner when availability cannot
// be loaded; the wizard degrades to an empty slot list instead of failing.
const SlotsUnavailableMessage = "Unable to load time slots right now. Please try again."

// StepError carries per-field validation failures for the current step.
type StepError struct {
	Step   Step
	Fields map[string]string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s has %d validation error(s)", e.Step, len(e.Fields))
}

// RateLimitError tells the client how long to wait before retrying.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many attempts, retry after %ds", int(e.RetryAfter.Seconds()))
}

// VenueSource resolves venues when a session starts.
type VenueSource interface {
	GetVenueByID(venueID string) (*models.Venue, error)
}

// SlotFetcher loads the open slots for a venue and date.
type SlotFetcher interface {
	AvailableSlots(venueID, date string) ([]models.AvailableSlot, error)
}

// Service drives wizard sessions: it owns the store, fetches availability
// and applies the form submission rate limit.
type Service struct {
	store       *Store
	venues      VenueSource
	slots       SlotFetcher
	formLimiter ratelimit.Limiter
	log         *logger.Logger
}

func NewService(store *Store, venues VenueSource, slots SlotFetcher, formLimiter ratelimit.Limiter, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		venues:      venues,
		slots:       slots,
		formLimiter: formLimiter,
		log:         log,
	}
}

// Start opens a new session for the venue. An unknown venue id is a client
// error, not a crash.
func (s *Service) Start(venueID string) (View, error) {
	if venueID == "" {
		return View{}, ErrVenueNotFound
	}
	venue, err := s.venues.GetVenueByID(venueID)
	if err != nil {
		return View{}, ErrVenueNotFound
	}

	sess := s.store.Create(*venue)
	s.log.LogBooking("SESSION_STARTED", sess.SessionID, "wizard started for venue "+venueID)
	return sess.Snapshot(), nil
}

// Get returns the current session state.
func (s *Service) Get(sessionID string) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	return sess.Snapshot(), nil
}

// UpdateDetails applies booking-details changes without validating; partial
// input stays in the draft until the visitor tries to advance.
func (s *Service) UpdateDetails(sessionID string, update DetailsUpdate) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	sess.UpdateDetails(update)
	return sess.Snapshot(), nil
}

// SelectDate records a new date and fetches its slots. A fetch that fails
// degrades to an empty slot list plus a banner message; a fetch superseded
// by a newer date selection is discarded.
func (s *Service) SelectDate(sessionID, date string) (View, string, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, "", ErrSessionNotFound
	}

	gen := sess.BeginSlotFetch(date)

	slots, err := s.slots.AvailableSlots(sess.Venue.VenueID, date)
	if err != nil {
		s.log.LogBooking("SLOT_FETCH_FAILED", sessionID, fmt.Sprintf("date %s: %v", date, err))
		sess.ApplySlotResult(gen, nil)
		return sess.Snapshot(), SlotsUnavailableMessage, nil
	}

	if !sess.ApplySlotResult(gen, slots) {
		s.log.LogBooking("SLOT_FETCH_STALE", sessionID, "discarded stale slot result for "+date)
	}
	return sess.Snapshot(), "", nil
}

// Next advances one step. Leaving the booking-details step counts as a form
// submission attempt against the rate limit.
func (s *Service) Next(sessionID string) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}

	if sess.Snapshot().Step == StepBooking {
		key := s.formKey(sess)
		if !s.formLimiter.Allow(key) {
			retry := s.formLimiter.RemainingTime(key)
			s.log.LogBooking("FORM_RATE_LIMITED", sessionID, fmt.Sprintf("blocked for %s", retry))
			return sess.Snapshot(), &RateLimitError{RetryAfter: retry}
		}
	}

	step, fieldErrs := sess.Next()
	if len(fieldErrs) > 0 {
		return sess.Snapshot(), &StepError{Step: step, Fields: fieldErrs}
	}
	return sess.Snapshot(), nil
}

// Back steps backwards unconditionally.
func (s *Service) Back(sessionID string) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	sess.Back()
	return sess.Snapshot(), nil
}

func (s *Service) SetEventType(sessionID, name string) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	if !sess.SetEventType(name) {
		return sess.Snapshot(), fmt.Errorf("%w: unknown event type %q", ErrInvalidSelection, name)
	}
	return sess.Snapshot(), nil
}

func (s *Service) SetCakes(sessionID string, cakes []models.CakeSelection) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	if !sess.SetCakes(cakes) {
		return sess.Snapshot(), fmt.Errorf("%w: unknown cake or invalid quantity", ErrInvalidSelection)
	}
	return sess.Snapshot(), nil
}

func (s *Service) SetAddOns(sessionID string, names []string) (View, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return View{}, ErrSessionNotFound
	}
	if !sess.SetAddOns(names) {
		return sess.Snapshot(), fmt.Errorf("%w: unknown add-on", ErrInvalidSelection)
	}
	return sess.Snapshot(), nil
}

// Quote prices the current draft against the session's venue.
func (s *Service) Quote(sessionID string) (pricing.Quote, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return pricing.Quote{}, ErrSessionNotFound
	}
	draft := sess.DraftCopy()
	return pricing.Compute(draft, sess.Venue), nil
}

// Session exposes the live session to the payment flow.
func (s *Service) Session(sessionID string) (*Session, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Finish drops a session once its booking has been confirmed.
func (s *Service) Finish(sessionID string) {
	s.store.Delete(sessionID)
}

// Rate limit submissions per visitor: by email once entered, by session id
// before that.
func (s *Service) formKey(sess *Session) string {
	draft := sess.DraftCopy()
	if draft.Email != "" {
		return draft.Email + "_form"
	}
	return sess.SessionID + "_form"
}
