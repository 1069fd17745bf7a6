package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/utils"
	"bingen-booking/internal/validation"
)

var (
	ErrSlotUnavailable = errors.New("slot is no longer available")
	ErrVenueNotFound   = errors.New("venue not found")
	ErrSlotNotFound    = errors.New("slot not found")
)

// ValidationError carries the joined list of field failures so the caller
// can surface all of them at once.
type ValidationError struct {
	Failures []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Failures, ", ")
}

type DBLayer interface {
	GetVenueByID(id string) (*models.Venue, error)
	GetSlotByID(venueID, slotID string) (*models.Slot, error)
	IsSlotBooked(venueID, slotID, date string) (bool, error)
	CreateBooking(booking models.Booking) error
	GetBookingByReference(reference string) (*models.Booking, error)
	GetBookingByIdempotencyKey(key string) (*models.Booking, error)
	GetBookingByPaymentID(paymentID string) (*models.Booking, error)
}

type SlotLock interface {
	LockSlot(venueID, date, slotID, owner string) (bool, error)
	UnlockSlot(venueID, date, slotID, owner string) error
}

type EventPublisher interface {
	PublishBookingCreated(topic string, booking models.Booking) error
	PublishBookingConfirmed(topic string, booking models.Booking) error
}

type QRGenerator interface {
	GenerateBookingQR(booking models.Booking) ([]byte, error)
}

// Service implements the secure booking call: the one operation allowed to
// persist a booking, invoked only after the payment provider confirms the
// advance charge.
type Service struct {
	DB     DBLayer
	Lock   SlotLock
	Events EventPublisher
	QR     QRGenerator
	Topics config.TopicConfig
	logger *logger.Logger
}

func NewService(db DBLayer, lock SlotLock, events EventPublisher, qrGen QRGenerator, topics config.TopicConfig, log *logger.Logger) *Service {
	return &Service{
		DB:     db,
		Lock:   lock,
		Events: events,
		QR:     qrGen,
		Topics: topics,
		logger: log,
	}
}

// SecureBooking persists a booking from a fully sanitized request. The
// operation is idempotent under client retry: a request whose idempotency
// key or payment id already produced a booking returns that booking instead
// of creating a second one.
func (s *Service) SecureBooking(req models.BookingRequest) (*models.BookingResponse, error) {
	s.logger.LogBooking("SECURE", req.IdempotencyKey, fmt.Sprintf("venue=%s slot=%s date=%s", req.VenueID, req.SlotID, req.BookingDate))

	if existing := s.findExisting(req); existing != nil {
		s.logger.LogBooking("RETRY", existing.Reference, "returning already-persisted booking")
		return s.buildResponse(existing)
	}

	venue, err := s.DB.GetVenueByID(req.VenueID)
	if err != nil {
		return nil, fmt.Errorf("venue %s: %w", req.VenueID, ErrVenueNotFound)
	}

	req = sanitizeRequest(req)
	if failures := validateRequest(req, venue); len(failures) > 0 {
		return nil, &ValidationError{Failures: failures}
	}

	// The couple venue always carries decoration, whatever the client sent.
	if venue.CoupleVenue {
		req.Decoration = true
	}

	if _, err := s.DB.GetSlotByID(req.VenueID, req.SlotID); err != nil {
		return nil, fmt.Errorf("slot %s: %w", req.SlotID, ErrSlotNotFound)
	}

	ok, err := s.Lock.LockSlot(req.VenueID, req.BookingDate, req.SlotID, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("slot lock error: %w", err)
	}
	if !ok {
		return nil, ErrSlotUnavailable
	}
	defer func() {
		if err := s.Lock.UnlockSlot(req.VenueID, req.BookingDate, req.SlotID, req.IdempotencyKey); err != nil {
			s.logger.Error("BOOKING", fmt.Sprintf("Failed to release slot lock for %s: %v", req.SlotID, err))
		}
	}()

	// Availability is authoritative here, not at fetch time.
	booked, err := s.DB.IsSlotBooked(req.VenueID, req.SlotID, req.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot %s: %w", req.SlotID, err)
	}
	if booked {
		return nil, ErrSlotUnavailable
	}

	booking := models.Booking{
		Reference:      utils.GenerateBookingReference(),
		VenueID:        req.VenueID,
		SlotID:         req.SlotID,
		BookingDate:    req.BookingDate,
		BookingName:    req.BookingName,
		Persons:        req.Persons,
		Phone:          req.Phone,
		Email:          req.Email,
		Decoration:     req.Decoration,
		EventType:      req.EventType,
		CakeSelection:  req.CakeSelection,
		SelectedAddOns: req.SelectedAddOns,
		AdvancePaid:    req.AdvancePaid,
		PaymentID:      req.PaymentID,
		IdempotencyKey: req.IdempotencyKey,
		Subtotal:       req.Subtotal,
		AdvanceAmount:  req.AdvanceAmount,
		Status:         "confirmed",
		CreatedAt:      time.Now(),
	}

	if err := s.DB.CreateBooking(booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	// created feeds the audit trail, confirmed drives notifications.
	if s.Events != nil {
		if err := s.Events.PublishBookingCreated(s.Topics.BookingCreated, booking); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("Publish error (booking created): %v", err))
		}
		if err := s.Events.PublishBookingConfirmed(s.Topics.BookingConfirmed, booking); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("Publish error (booking confirmed): %v", err))
		}
	}

	s.logger.LogBooking("CONFIRMED", booking.Reference, fmt.Sprintf("venue=%s slot=%s date=%s", booking.VenueID, booking.SlotID, booking.BookingDate))
	return s.buildResponse(&booking)
}

// GetBooking returns the persisted booking behind a success-page reference.
func (s *Service) GetBooking(reference string) (*models.Booking, error) {
	return s.DB.GetBookingByReference(reference)
}

func (s *Service) findExisting(req models.BookingRequest) *models.Booking {
	if req.IdempotencyKey != "" {
		if existing, err := s.DB.GetBookingByIdempotencyKey(req.IdempotencyKey); err == nil && existing != nil {
			return existing
		}
	}
	if req.PaymentID != "" {
		if existing, err := s.DB.GetBookingByPaymentID(req.PaymentID); err == nil && existing != nil {
			return existing
		}
	}
	return nil
}

func (s *Service) buildResponse(booking *models.Booking) (*models.BookingResponse, error) {
	resp := &models.BookingResponse{
		Reference:   booking.Reference,
		VenueID:     booking.VenueID,
		SlotID:      booking.SlotID,
		BookingDate: booking.BookingDate,
		Status:      booking.Status,
	}

	if s.QR != nil {
		qrBytes, err := s.QR.GenerateBookingQR(*booking)
		if err != nil {
			// The booking exists either way; the QR can be regenerated.
			s.logger.Warn("BOOKING", fmt.Sprintf("Failed to generate QR for %s: %v", booking.Reference, err))
		} else {
			resp.QRCode = qrBytes
		}
	}

	return resp, nil
}

func sanitizeRequest(req models.BookingRequest) models.BookingRequest {
	req.BookingName = validation.Sanitize(req.BookingName)
	req.Phone = validation.Sanitize(req.Phone)
	req.Email = validation.Sanitize(req.Email)
	req.EventType = validation.Sanitize(req.EventType)
	req.CakeSelection = validation.Sanitize(req.CakeSelection)
	req.SelectedAddOns = validation.Sanitize(req.SelectedAddOns)
	return req
}

func validateRequest(req models.BookingRequest, venue *models.Venue) []string {
	var failures []string

	if !validation.BookingName(req.BookingName) {
		failures = append(failures, "Invalid booking name")
	}
	if !validation.Email(req.Email) {
		failures = append(failures, "Invalid email address")
	}
	if !validation.Phone(req.Phone) {
		failures = append(failures, "Invalid phone number")
	}
	if !validation.Persons(req.Persons, venue.Capacity) {
		failures = append(failures, fmt.Sprintf("Number of persons must be between 1 and %d", venue.Capacity))
	}
	if !validation.Date(req.BookingDate) {
		failures = append(failures, "Invalid booking date")
	}
	if !validation.SlotID(req.SlotID) {
		failures = append(failures, "Invalid slot selection")
	}
	if req.PaymentID == "" {
		failures = append(failures, "Missing payment confirmation")
	}
	if req.EventType == "" {
		failures = append(failures, "Please select an event type")
	}

	return failures
}
