package booking_test

import (
	"errors"
	"testing"
	"time"

	"bingen-booking/internal/booking"
	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetVenueByID(id string) (*models.Venue, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Venue), args.Error(1)
}

func (m *MockDBLayer) GetSlotByID(venueID, slotID string) (*models.Slot, error) {
	args := m.Called(venueID, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Slot), args.Error(1)
}

func (m *MockDBLayer) IsSlotBooked(venueID, slotID, date string) (bool, error) {
	args := m.Called(venueID, slotID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockDBLayer) CreateBooking(booking models.Booking) error {
	args := m.Called(booking)
	return args.Error(0)
}

func (m *MockDBLayer) GetBookingByReference(reference string) (*models.Booking, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) GetBookingByIdempotencyKey(key string) (*models.Booking, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) GetBookingByPaymentID(paymentID string) (*models.Booking, error) {
	args := m.Called(paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockSlotLock struct {
	mock.Mock
}

func (m *MockSlotLock) LockSlot(venueID, date, slotID, owner string) (bool, error) {
	args := m.Called(venueID, date, slotID, owner)
	return args.Bool(0), args.Error(1)
}

func (m *MockSlotLock) UnlockSlot(venueID, date, slotID, owner string) error {
	args := m.Called(venueID, date, slotID, owner)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBookingCreated(topic string, booking models.Booking) error {
	args := m.Called(topic, booking)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBookingConfirmed(topic string, booking models.Booking) error {
	args := m.Called(topic, booking)
	return args.Error(0)
}

type MockQRGenerator struct {
	mock.Mock
}

func (m *MockQRGenerator) GenerateBookingQR(booking models.Booking) ([]byte, error) {
	args := m.Called(booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func testTopics() config.TopicConfig {
	return config.TopicConfig{
		BookingCreated:   "bingen.booking.created",
		BookingConfirmed: "bingen.booking.confirmed",
	}
}

func familyVenue() *models.Venue {
	return &models.Venue{VenueID: "venue-family", Name: "Family Theatre", Price: 1999, Capacity: 6}
}

func validRequest(slotID string) models.BookingRequest {
	return models.BookingRequest{
		VenueID:        "venue-family",
		SlotID:         slotID,
		BookingDate:    time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
		BookingName:    "Priya Sharma",
		Persons:        4,
		Phone:          "9876543210",
		Email:          "priya@example.com",
		EventType:      "Birthday",
		PaymentID:      "pi_test_123",
		IdempotencyKey: "idem_abc",
		AdvancePaid:    true,
		Subtotal:       3597,
		AdvanceAmount:  700,
	}
}

func newService(db *MockDBLayer, lock *MockSlotLock, events *MockEventPublisher, qrGen *MockQRGenerator) *booking.Service {
	var ev booking.EventPublisher
	if events != nil {
		ev = events
	}
	var qr booking.QRGenerator
	if qrGen != nil {
		qr = qrGen
	}
	return booking.NewService(db, lock, ev, qr, testTopics(), logger.NewLogger())
}

func TestSecureBookingHappyPath(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	events := new(MockEventPublisher)
	qrGen := new(MockQRGenerator)
	svc := newService(db, lock, events, qrGen)

	slotID := uuid.NewString()
	req := validRequest(slotID)

	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(nil, errors.New("not found"))
	db.On("GetBookingByPaymentID", req.PaymentID).Return(nil, errors.New("not found"))
	db.On("GetVenueByID", req.VenueID).Return(familyVenue(), nil)
	db.On("GetSlotByID", req.VenueID, slotID).Return(&models.Slot{SlotID: slotID}, nil)
	lock.On("LockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(true, nil)
	lock.On("UnlockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(nil)
	db.On("IsSlotBooked", req.VenueID, slotID, req.BookingDate).Return(false, nil)
	db.On("CreateBooking", mock.AnythingOfType("models.Booking")).Return(nil)
	events.On("PublishBookingCreated", "bingen.booking.created", mock.AnythingOfType("models.Booking")).Return(nil)
	events.On("PublishBookingConfirmed", "bingen.booking.confirmed", mock.AnythingOfType("models.Booking")).Return(nil)
	qrGen.On("GenerateBookingQR", mock.AnythingOfType("models.Booking")).Return([]byte("qr-bytes"), nil)

	resp, err := svc.SecureBooking(req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Reference)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, []byte("qr-bytes"), resp.QRCode)

	db.AssertExpectations(t)
	lock.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestSecureBookingIdempotentRetry(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	svc := newService(db, lock, nil, nil)

	slotID := uuid.NewString()
	req := validRequest(slotID)

	existing := &models.Booking{
		Reference:   "BNC-EXISTING",
		VenueID:     req.VenueID,
		SlotID:      slotID,
		BookingDate: req.BookingDate,
		Status:      "confirmed",
	}
	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(existing, nil)

	resp, err := svc.SecureBooking(req)
	require.NoError(t, err)
	assert.Equal(t, "BNC-EXISTING", resp.Reference)

	// No second booking is created and no lock is taken.
	db.AssertNotCalled(t, "CreateBooking", mock.Anything)
	lock.AssertNotCalled(t, "LockSlot", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSecureBookingLockDenied(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	svc := newService(db, lock, nil, nil)

	slotID := uuid.NewString()
	req := validRequest(slotID)

	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(nil, errors.New("not found"))
	db.On("GetBookingByPaymentID", req.PaymentID).Return(nil, errors.New("not found"))
	db.On("GetVenueByID", req.VenueID).Return(familyVenue(), nil)
	db.On("GetSlotByID", req.VenueID, slotID).Return(&models.Slot{SlotID: slotID}, nil)
	lock.On("LockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(false, nil)

	_, err := svc.SecureBooking(req)
	assert.ErrorIs(t, err, booking.ErrSlotUnavailable)
	db.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestSecureBookingSlotAlreadyBooked(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	svc := newService(db, lock, nil, nil)

	slotID := uuid.NewString()
	req := validRequest(slotID)

	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(nil, errors.New("not found"))
	db.On("GetBookingByPaymentID", req.PaymentID).Return(nil, errors.New("not found"))
	db.On("GetVenueByID", req.VenueID).Return(familyVenue(), nil)
	db.On("GetSlotByID", req.VenueID, slotID).Return(&models.Slot{SlotID: slotID}, nil)
	lock.On("LockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(true, nil)
	lock.On("UnlockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(nil)
	db.On("IsSlotBooked", req.VenueID, slotID, req.BookingDate).Return(true, nil)

	_, err := svc.SecureBooking(req)
	assert.ErrorIs(t, err, booking.ErrSlotUnavailable)
	db.AssertNotCalled(t, "CreateBooking", mock.Anything)
	// The lock is released even when the booking is refused.
	lock.AssertCalled(t, "UnlockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey)
}

func TestSecureBookingValidationFailures(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	svc := newService(db, lock, nil, nil)

	req := validRequest(uuid.NewString())
	req.Email = "not-an-email"
	req.Phone = "12345"
	req.PaymentID = ""
	req.EventType = ""

	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(nil, errors.New("not found"))
	db.On("GetVenueByID", req.VenueID).Return(familyVenue(), nil)

	_, err := svc.SecureBooking(req)
	var vErr *booking.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Failures, "Invalid email address")
	assert.Contains(t, vErr.Failures, "Invalid phone number")
	assert.Contains(t, vErr.Failures, "Missing payment confirmation")
	assert.Contains(t, vErr.Failures, "Please select an event type")
}

func TestSecureBookingCoupleVenueForcesDecoration(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	svc := newService(db, lock, nil, nil)

	slotID := uuid.NewString()
	req := validRequest(slotID)
	req.VenueID = "venue-couple"
	req.Persons = 2
	req.Decoration = false

	couple := &models.Venue{VenueID: "venue-couple", Name: "Couple Theatre", Price: 1499, Capacity: 2, CoupleVenue: true}

	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(nil, errors.New("not found"))
	db.On("GetBookingByPaymentID", req.PaymentID).Return(nil, errors.New("not found"))
	db.On("GetVenueByID", "venue-couple").Return(couple, nil)
	db.On("GetSlotByID", "venue-couple", slotID).Return(&models.Slot{SlotID: slotID}, nil)
	lock.On("LockSlot", "venue-couple", req.BookingDate, slotID, req.IdempotencyKey).Return(true, nil)
	lock.On("UnlockSlot", "venue-couple", req.BookingDate, slotID, req.IdempotencyKey).Return(nil)
	db.On("IsSlotBooked", "venue-couple", slotID, req.BookingDate).Return(false, nil)

	var saved models.Booking
	db.On("CreateBooking", mock.AnythingOfType("models.Booking")).
		Run(func(args mock.Arguments) {
			saved = args.Get(0).(models.Booking)
		}).
		Return(nil)

	_, err := svc.SecureBooking(req)
	require.NoError(t, err)
	assert.True(t, saved.Decoration)
}

func TestSecureBookingQRFailureDoesNotFailBooking(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockSlotLock)
	qrGen := new(MockQRGenerator)
	svc := newService(db, lock, nil, qrGen)

	slotID := uuid.NewString()
	req := validRequest(slotID)

	db.On("GetBookingByIdempotencyKey", req.IdempotencyKey).Return(nil, errors.New("not found"))
	db.On("GetBookingByPaymentID", req.PaymentID).Return(nil, errors.New("not found"))
	db.On("GetVenueByID", req.VenueID).Return(familyVenue(), nil)
	db.On("GetSlotByID", req.VenueID, slotID).Return(&models.Slot{SlotID: slotID}, nil)
	lock.On("LockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(true, nil)
	lock.On("UnlockSlot", req.VenueID, req.BookingDate, slotID, req.IdempotencyKey).Return(nil)
	db.On("IsSlotBooked", req.VenueID, slotID, req.BookingDate).Return(false, nil)
	db.On("CreateBooking", mock.AnythingOfType("models.Booking")).Return(nil)
	qrGen.On("GenerateBookingQR", mock.AnythingOfType("models.Booking")).Return(nil, errors.New("qr encoder broken"))

	resp, err := svc.SecureBooking(req)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Nil(t, resp.QRCode)
}

func TestGetBooking(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockSlotLock), nil, nil)

	db.On("GetBookingByReference", "BNC-123").Return(&models.Booking{Reference: "BNC-123"}, nil)

	got, err := svc.GetBooking("BNC-123")
	require.NoError(t, err)
	assert.Equal(t, "BNC-123", got.Reference)
}
