package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bingen-booking/internal/analytics"
	"bingen-booking/internal/availability"
	"bingen-booking/internal/booking"
	"bingen-booking/internal/catalog"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"
	"bingen-booking/internal/payment"
	"bingen-booking/internal/utils"
	"bingen-booking/internal/wizard"
)

// VenueLister is the read-only venue surface the API needs.
type VenueLister interface {
	ListVenues() ([]models.Venue, error)
	GetVenueByID(id string) (*models.Venue, error)
}

type Handler struct {
	Venues       VenueLister
	Availability *availability.Service
	Wizard       *wizard.Service
	Bookings     *booking.Service
	Payments     *payment.Orchestrator
	Analytics    *analytics.Service
	Logger       *logger.Logger
}

func NewHandler(
	venues VenueLister,
	avail *availability.Service,
	wiz *wizard.Service,
	bookings *booking.Service,
	payments *payment.Orchestrator,
	stats *analytics.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		Venues:       venues,
		Availability: avail,
		Wizard:       wiz,
		Bookings:     bookings,
		Payments:     payments,
		Analytics:    stats,
		Logger:       log,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, resp utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Failed to encode response: %v", err))
	}
}

// writeWizardError maps wizard and payment flow errors onto the error
// taxonomy: 404 for gone sessions, 422 for field errors, 429 for rate
// limits, 400 for bad selections.
func (h *Handler) writeWizardError(w http.ResponseWriter, err error) {
	var stepErr *wizard.StepError
	var rateErr *wizard.RateLimitError

	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Session not found", "your booking session has expired, please start again"))
	case errors.Is(err, wizard.ErrVenueNotFound):
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Venue not found", "the requested venue does not exist"))
	case errors.As(err, &stepErr):
		resp := utils.ErrorResponse("Validation failed", "please fix the highlighted fields")
		resp.Data = map[string]interface{}{"fields": stepErr.Fields, "step": stepErr.Step}
		h.writeJSON(w, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &rateErr):
		resp := utils.ErrorResponse("Too many attempts", fmt.Sprintf("please wait %d seconds before trying again", int(rateErr.RetryAfter.Seconds())))
		resp.Data = map[string]interface{}{"retry_after_seconds": int(rateErr.RetryAfter.Seconds())}
		h.writeJSON(w, http.StatusTooManyRequests, resp)
	case errors.Is(err, wizard.ErrInvalidSelection):
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid selection", err.Error()))
	default:
		h.Logger.Error("API", fmt.Sprintf("Unexpected error: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", "something went wrong"))
	}
}

// ListVenues returns every venue with prices and features.
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.Venues.ListVenues()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListVenues: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load venues", "please try again"))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Venues retrieved", venues))
}

func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueId")
	venue, err := h.Venues.GetVenueByID(venueID)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("GetVenue: venue %s not found: %v", venueID, err))
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Venue not found", "the requested venue does not exist"))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Venue retrieved", venue))
}

// GetSlots answers slot availability for a venue and date. Failures degrade
// to an empty list with a banner message so the date picker stays usable.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueId")
	date := r.URL.Query().Get("date")

	slots, err := h.Availability.AvailableSlots(venueID, date)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("GetSlots: venue %s date %s: %v", venueID, date, err))
		resp := utils.SuccessResponse("No slots available", []models.AvailableSlot{})
		resp.Data = map[string]interface{}{
			"slots":  []models.AvailableSlot{},
			"banner": wizard.SlotsUnavailableMessage,
		}
		h.writeJSON(w, http.StatusOK, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Slots retrieved", map[string]interface{}{"slots": slots}))
}

func (h *Handler) ListAddOns(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Add-ons retrieved", catalog.AddOns()))
}

func (h *Handler) ListEventTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event types retrieved", catalog.EventTypes()))
}

func (h *Handler) ListCakes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Cakes retrieved", catalog.Cakes()))
}

// StartWizard opens a wizard session for ?venue=<id>. A missing or unknown
// venue id is a client error.
func (h *Handler) StartWizard(w http.ResponseWriter, r *http.Request) {
	venueID := r.URL.Query().Get("venue")
	if venueID == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Missing venue", "the venue query parameter is required"))
		return
	}

	view, err := h.Wizard.Start(venueID)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Booking session started", view))
}

func (h *Handler) GetWizard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Wizard.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Session retrieved", view))
}

func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var update wizard.DetailsUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	view, err := h.Wizard.UpdateDetails(chi.URLParam(r, "sessionId"), update)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Details updated", view))
}

func (h *Handler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	view, banner, err := h.Wizard.SelectDate(chi.URLParam(r, "sessionId"), req.Date)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}

	resp := utils.SuccessResponse("Date selected", view)
	if banner != "" {
		resp.Data = map[string]interface{}{"session": view, "banner": banner}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SetEventType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventType string `json:"event_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	view, err := h.Wizard.SetEventType(chi.URLParam(r, "sessionId"), req.EventType)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event type selected", view))
}

func (h *Handler) SetCakes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cakes []models.CakeSelection `json:"cakes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	view, err := h.Wizard.SetCakes(chi.URLParam(r, "sessionId"), req.Cakes)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Cakes selected", view))
}

func (h *Handler) SetAddOns(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AddOns []string `json:"add_ons"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	view, err := h.Wizard.SetAddOns(chi.URLParam(r, "sessionId"), req.AddOns)
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Add-ons selected", view))
}

func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	view, err := h.Wizard.Next(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Step advanced", view))
}

func (h *Handler) BackStep(w http.ResponseWriter, r *http.Request) {
	view, err := h.Wizard.Back(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Step reverted", view))
}

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.Wizard.Quote(chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Quote computed", quote))
}

// Confirm re-validates the full draft, applies the booking rate limit and
// starts the advance payment.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Payments.Confirm(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Payment started", resp))
}

// PaymentResult resolves the payment widget outcome for a session.
func (h *Handler) PaymentResult(w http.ResponseWriter, r *http.Request) {
	var result models.PaymentResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	completion, err := h.Payments.Complete(r.Context(), chi.URLParam(r, "sessionId"), result)
	if err != nil {
		var supportErr *payment.SupportError
		if errors.As(err, &supportErr) {
			// The charge stands but the booking write failed. Not retryable
			// from the client side.
			resp := utils.ErrorResponse("Booking requires assistance", payment.SupportMessage)
			if completion != nil {
				resp.Data = completion
			}
			h.writeJSON(w, http.StatusOK, resp)
			return
		}
		if errors.Is(err, payment.ErrPaymentNotFound) {
			h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Payment not found", "no payment exists for this session"))
			return
		}
		if errors.Is(err, payment.ErrPaymentNotConfirmed) {
			h.writeJSON(w, http.StatusConflict, utils.ErrorResponse("Payment not confirmed", "the payment provider has not confirmed this charge"))
			return
		}
		h.writeWizardError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Payment resolved", completion))
}

// GetBooking serves the success page data for a confirmed booking.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	record, err := h.Bookings.GetBooking(reference)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("GetBooking: %s not found: %v", reference, err))
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Booking not found", "no booking exists with this reference"))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking retrieved", record))
}

// GetVenueAnalytics returns confirmed-booking rollups for a venue between
// ?from= and ?to= booking dates.
func (h *Handler) GetVenueAnalytics(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueId")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Missing date range", "both from and to query parameters are required"))
		return
	}

	stats, err := h.Analytics.GetVenueAnalytics(r.Context(), venueID, from, to)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetVenueAnalytics: venue %s: %v", venueID, err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load analytics", "please try again"))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Analytics retrieved", stats))
}

// GetSlotOccupancy reports booked versus total slots for a venue and date.
func (h *Handler) GetSlotOccupancy(w http.ResponseWriter, r *http.Request) {
	venueID := chi.URLParam(r, "venueId")
	date := r.URL.Query().Get("date")
	if date == "" {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Missing date", "the date query parameter is required"))
		return
	}

	occupancy, err := h.Analytics.GetSlotOccupancy(r.Context(), venueID, date)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetSlotOccupancy: venue %s date %s: %v", venueID, date, err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load occupancy", "please try again"))
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Occupancy retrieved", occupancy))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Service healthy", map[string]string{"status": "ok"}))
}

// NotFound answers every unmatched route with a JSON payload instead of the
// default text body.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Logger.Warn("API", fmt.Sprintf("NotFound: %s %s", r.Method, r.URL.Path))
	h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Not found", "the requested resource does not exist"))
}
