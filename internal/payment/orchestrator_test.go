package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/payment"
	"bingen-booking/internal/ratelimit"
	"bingen-booking/internal/wizard"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// storeSessions adapts a wizard store to the orchestrator without spinning
// up the full wizard service.
type storeSessions struct {
	store *wizard.Store
}

func (s *storeSessions) Session(sessionID string) (*wizard.Session, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, wizard.ErrSessionNotFound
	}
	return sess, nil
}

func (s *storeSessions) Finish(sessionID string) {
	s.store.Delete(sessionID)
}

type MockBookingConfirmer struct {
	mock.Mock
}

func (m *MockBookingConfirmer) SecureBooking(req models.BookingRequest) (*models.BookingResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingResponse), args.Error(1)
}

type MockIntentService struct {
	mock.Mock
}

func (m *MockIntentService) CreateAdvanceIntent(ctx context.Context, req *models.PaymentIntentRequest) (*models.PaymentIntentResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntentResponse), args.Error(1)
}

func (m *MockIntentService) GetIntentStatus(ctx context.Context, intentID string) (models.PaymentStatus, error) {
	args := m.Called(intentID)
	return args.Get(0).(models.PaymentStatus), args.Error(1)
}

func (m *MockIntentService) CancelIntent(ctx context.Context, intentID string) error {
	args := m.Called(intentID)
	return args.Error(0)
}

type MockPaymentRecorder struct {
	mock.Mock
}

func (m *MockPaymentRecorder) SavePayment(p *models.Payment) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockPaymentRecorder) GetPayment(id string) (*models.Payment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRecorder) GetPaymentByIdempotencyKey(key string) (*models.Payment, error) {
	args := m.Called(key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentRecorder) UpdatePayment(p *models.Payment) error {
	args := m.Called(p)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPaymentEvent(topic string, event models.PaymentEvent) error {
	args := m.Called(topic, event)
	return args.Error(0)
}

type orchestratorFixture struct {
	orch     *payment.Orchestrator
	store    *wizard.Store
	bookings *MockBookingConfirmer
	intents  *MockIntentService
	records  *MockPaymentRecorder
	events   *MockEventPublisher
}

func newFixture(t *testing.T, bookingLimit int) *orchestratorFixture {
	t.Helper()
	f := &orchestratorFixture{
		store:    wizard.NewStore(time.Hour),
		bookings: new(MockBookingConfirmer),
		intents:  new(MockIntentService),
		records:  new(MockPaymentRecorder),
		events:   new(MockEventPublisher),
	}
	topics := config.TopicConfig{
		BookingSupport:   "bingen.booking.support",
		BookingCancelled: "bingen.booking.cancelled",
		PaymentSucceeded: "bingen.payment.succeeded",
		PaymentFailed:    "bingen.payment.failed",
	}
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{MaxAttempts: bookingLimit, Window: 5 * time.Minute})
	f.orch = payment.NewOrchestrator(
		&storeSessions{store: f.store}, f.bookings, f.intents, f.records,
		f.events, limiter, topics, "inr", logger.NewLogger(),
	)
	return f
}

// readySession creates a session whose draft passes confirmation checks.
func (f *orchestratorFixture) readySession() *wizard.Session {
	sess := f.store.Create(models.Venue{VenueID: "venue-family", Name: "Family Theatre", Price: 1999, Capacity: 6})

	slotID := uuid.NewString()
	gen := sess.BeginSlotFetch(time.Now().AddDate(0, 0, 2).Format("2006-01-02"))
	sess.ApplySlotResult(gen, []models.AvailableSlot{{SlotID: slotID, StartTime: "18:00", EndTime: "21:00"}})
	sess.UpdateDetails(wizard.DetailsUpdate{
		BookingName: "Priya Sharma",
		Persons:     4,
		Phone:       "9876543210",
		Email:       "priya@example.com",
		SlotID:      slotID,
	})
	sess.SetEventType("Birthday")
	return sess
}

func TestConfirmRejectsIncompleteDraft(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.store.Create(models.Venue{VenueID: "venue-family", Name: "Family Theatre", Price: 1999, Capacity: 6})

	_, err := f.orch.Confirm(context.Background(), sess.SessionID)
	var stepErr *wizard.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.NotEmpty(t, stepErr.Fields)
	f.intents.AssertNotCalled(t, "CreateAdvanceIntent", mock.Anything)
}

func TestConfirmCreatesIntentAndRecord(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()

	f.intents.On("CreateAdvanceIntent", mock.AnythingOfType("*models.PaymentIntentRequest")).
		Return(&models.PaymentIntentResponse{IntentID: "pi_intent", ClientSecret: "cs_123", AmountMinor: 70000, Currency: "inr"}, nil)
	f.records.On("GetPaymentByIdempotencyKey", mock.AnythingOfType("string")).Return(nil, errors.New("not found"))
	f.records.On("SavePayment", mock.AnythingOfType("*models.Payment")).Return(nil)

	resp, err := f.orch.Confirm(context.Background(), sess.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.PaymentID)
	assert.Equal(t, "pi_intent", resp.Intent.IntentID)
	assert.Equal(t, 700, resp.Quote.Advance)

	intentReq := f.intents.Calls[0].Arguments.Get(0).(*models.PaymentIntentRequest)
	// The advance is fixed and charged in minor units.
	assert.Equal(t, int64(70000), intentReq.AmountMinor)
	assert.Equal(t, "priya@example.com", intentReq.CustomerEmail)
	assert.NotEmpty(t, intentReq.IdempotencyKey)
}

func TestConfirmRetryReusesIdempotencyKey(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()

	f.intents.On("CreateAdvanceIntent", mock.AnythingOfType("*models.PaymentIntentRequest")).
		Return(&models.PaymentIntentResponse{IntentID: "pi_intent"}, nil)

	existing := &models.Payment{PaymentID: "pay_1", IdempotencyKey: "idem_first", Status: models.StatusFailed}
	f.records.On("GetPaymentByIdempotencyKey", mock.AnythingOfType("string")).Return(nil, errors.New("not found")).Once()
	f.records.On("GetPaymentByIdempotencyKey", mock.AnythingOfType("string")).Return(existing, nil)
	f.records.On("SavePayment", mock.AnythingOfType("*models.Payment")).Return(nil)
	f.records.On("UpdatePayment", mock.AnythingOfType("*models.Payment")).Return(nil)

	_, err := f.orch.Confirm(context.Background(), sess.SessionID)
	require.NoError(t, err)
	firstKey := f.intents.Calls[0].Arguments.Get(0).(*models.PaymentIntentRequest).IdempotencyKey

	_, err = f.orch.Confirm(context.Background(), sess.SessionID)
	require.NoError(t, err)
	secondKey := f.intents.Calls[1].Arguments.Get(0).(*models.PaymentIntentRequest).IdempotencyKey

	assert.Equal(t, firstKey, secondKey)
	// The retry updates the existing record instead of inserting a second.
	f.records.AssertNumberOfCalls(t, "SavePayment", 1)
	f.records.AssertNumberOfCalls(t, "UpdatePayment", 1)
}

func TestConfirmRateLimited(t *testing.T) {
	f := newFixture(t, 1)
	sess := f.readySession()

	f.intents.On("CreateAdvanceIntent", mock.AnythingOfType("*models.PaymentIntentRequest")).
		Return(&models.PaymentIntentResponse{IntentID: "pi_intent"}, nil)
	f.records.On("GetPaymentByIdempotencyKey", mock.AnythingOfType("string")).Return(nil, errors.New("not found"))
	f.records.On("SavePayment", mock.AnythingOfType("*models.Payment")).Return(nil)

	_, err := f.orch.Confirm(context.Background(), sess.SessionID)
	require.NoError(t, err)

	_, err = f.orch.Confirm(context.Background(), sess.SessionID)
	var rlErr *wizard.RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))
}

func TestCompleteConfirmedBooksAndFinishes(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()
	sess.SetCakes([]models.CakeSelection{
		{Name: "Black Forest", Type: models.CakeEggless, Weight: models.CakeOneKg, Quantity: 2},
	})
	sess.SetAddOns([]string{"Rose", "Candles"})

	record := &models.Payment{
		PaymentID:      "pay_1",
		SessionID:      sess.SessionID,
		IdempotencyKey: "idem_first",
		Status:         models.StatusPending,
		IntentID:       "pi_intent",
	}
	f.records.On("GetPayment", "pay_1").Return(record, nil)
	f.records.On("UpdatePayment", mock.AnythingOfType("*models.Payment")).Return(nil)
	f.intents.On("GetIntentStatus", "pi_intent").Return(models.StatusSuccess, nil)
	f.events.On("PublishPaymentEvent", "bingen.payment.succeeded", mock.AnythingOfType("models.PaymentEvent")).Return(nil)

	var bookingReq models.BookingRequest
	f.bookings.On("SecureBooking", mock.AnythingOfType("models.BookingRequest")).
		Run(func(args mock.Arguments) {
			bookingReq = args.Get(0).(models.BookingRequest)
		}).
		Return(&models.BookingResponse{Reference: "BNC-OK", Status: "confirmed"}, nil)

	resp, err := f.orch.Complete(context.Background(), sess.SessionID, models.PaymentResult{
		Outcome:   models.PaymentConfirmed,
		PaymentID: "pay_1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentConfirmed, resp.Outcome)
	assert.Equal(t, "BNC-OK", resp.Booking.Reference)
	assert.Equal(t, "/booking-success", resp.Navigation)

	assert.Equal(t, "pay_1", bookingReq.PaymentID)
	assert.Equal(t, "idem_first", bookingReq.IdempotencyKey)
	assert.True(t, bookingReq.AdvancePaid)
	assert.Equal(t, "Black Forest (eggless, oneKg) x2", bookingReq.CakeSelection)
	assert.Equal(t, "Rose, Candles", bookingReq.SelectedAddOns)
	assert.Equal(t, models.StatusSuccess, record.Status)

	// The session is gone once the booking is written.
	_, ok := f.store.Get(sess.SessionID)
	assert.False(t, ok)
}

func TestCompleteConfirmedBookingFailureGoesToSupport(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()

	record := &models.Payment{
		PaymentID:      "pay_1",
		SessionID:      sess.SessionID,
		IdempotencyKey: "idem_first",
		Status:         models.StatusPending,
		IntentID:       "pi_intent",
	}
	f.records.On("GetPayment", "pay_1").Return(record, nil)
	f.records.On("UpdatePayment", mock.AnythingOfType("*models.Payment")).Return(nil)
	f.intents.On("GetIntentStatus", "pi_intent").Return(models.StatusSuccess, nil)
	f.events.On("PublishPaymentEvent", "bingen.payment.succeeded", mock.AnythingOfType("models.PaymentEvent")).Return(nil)
	f.events.On("PublishPaymentEvent", "bingen.booking.support", mock.AnythingOfType("models.PaymentEvent")).Return(nil)
	f.bookings.On("SecureBooking", mock.AnythingOfType("models.BookingRequest")).
		Return(nil, errors.New("slot write failed"))

	resp, err := f.orch.Complete(context.Background(), sess.SessionID, models.PaymentResult{
		Outcome:   models.PaymentConfirmed,
		PaymentID: "pay_1",
	})

	var supportErr *payment.SupportError
	require.ErrorAs(t, err, &supportErr)
	assert.Equal(t, "pay_1", supportErr.PaymentID)
	assert.Equal(t, payment.SupportMessage, resp.Message)
	assert.Equal(t, models.StatusNeedsSupport, record.Status)
	f.events.AssertCalled(t, "PublishPaymentEvent", "bingen.booking.support", mock.AnythingOfType("models.PaymentEvent"))

	// The session stays so support can inspect the draft.
	_, ok := f.store.Get(sess.SessionID)
	assert.True(t, ok)
}

func TestCompleteConfirmedRequiresProviderSuccess(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()

	record := &models.Payment{
		PaymentID: "pay_1",
		SessionID: sess.SessionID,
		Status:    models.StatusPending,
		IntentID:  "pi_intent",
	}
	f.records.On("GetPayment", "pay_1").Return(record, nil)
	// The client claims the charge went through but the provider disagrees.
	f.intents.On("GetIntentStatus", "pi_intent").Return(models.StatusPending, nil)

	_, err := f.orch.Complete(context.Background(), sess.SessionID, models.PaymentResult{
		Outcome:   models.PaymentConfirmed,
		PaymentID: "pay_1",
	})
	assert.ErrorIs(t, err, payment.ErrPaymentNotConfirmed)
	f.bookings.AssertNotCalled(t, "SecureBooking", mock.Anything)
	assert.Equal(t, models.StatusPending, record.Status)

	_, ok := f.store.Get(sess.SessionID)
	assert.True(t, ok)
}

func TestCompleteCancelledKeepsDraft(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()
	sess.EnsureIdempotencyKey(func() string { return "idem_first" })

	record := &models.Payment{PaymentID: "pay_1", SessionID: sess.SessionID, IntentID: "pi_intent", Status: models.StatusPending}
	f.records.On("GetPayment", "pay_1").Return(record, nil)
	f.records.On("UpdatePayment", mock.AnythingOfType("*models.Payment")).Return(nil)
	f.intents.On("CancelIntent", "pi_intent").Return(nil)
	f.events.On("PublishPaymentEvent", "bingen.booking.cancelled", mock.AnythingOfType("models.PaymentEvent")).Return(nil)

	resp, err := f.orch.Complete(context.Background(), sess.SessionID, models.PaymentResult{
		Outcome:   models.PaymentCancelled,
		PaymentID: "pay_1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancelled, resp.Outcome)
	assert.Nil(t, resp.Booking)
	assert.Equal(t, models.StatusCancelled, record.Status)
	f.bookings.AssertNotCalled(t, "SecureBooking", mock.Anything)
	f.events.AssertCalled(t, "PublishPaymentEvent", "bingen.booking.cancelled", mock.AnythingOfType("models.PaymentEvent"))

	// Draft survives a dismissal, but the voided intent's key does not:
	// the next confirmation attempt must start a fresh charge.
	_, ok := f.store.Get(sess.SessionID)
	assert.True(t, ok)
	assert.Equal(t, "idem_second", sess.EnsureIdempotencyKey(func() string { return "idem_second" }))
}

func TestCompleteFailedPublishesEvent(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()

	record := &models.Payment{PaymentID: "pay_1", SessionID: sess.SessionID, Status: models.StatusPending}
	f.records.On("GetPayment", "pay_1").Return(record, nil)
	f.records.On("UpdatePayment", mock.AnythingOfType("*models.Payment")).Return(nil)
	f.events.On("PublishPaymentEvent", "bingen.payment.failed", mock.AnythingOfType("models.PaymentEvent")).Return(nil)

	resp, err := f.orch.Complete(context.Background(), sess.SessionID, models.PaymentResult{
		Outcome:   models.PaymentFailed,
		PaymentID: "pay_1",
		Reason:    "card declined",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, resp.Outcome)
	assert.Equal(t, models.StatusFailed, record.Status)
	f.bookings.AssertNotCalled(t, "SecureBooking", mock.Anything)
}

func TestCompleteUnknownPayment(t *testing.T) {
	f := newFixture(t, 3)
	sess := f.readySession()

	f.records.On("GetPayment", "pay_missing").Return(nil, errors.New("no rows"))

	_, err := f.orch.Complete(context.Background(), sess.SessionID, models.PaymentResult{
		Outcome:   models.PaymentConfirmed,
		PaymentID: "pay_missing",
	})
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}
