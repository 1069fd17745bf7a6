package api

import (
	"github.com/go-chi/chi/v5"
)

// Routes builds the booking-service router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/venues", func(r chi.Router) {
			r.Get("/", h.ListVenues)
			r.Get("/{venueId}", h.GetVenue)
			r.Get("/{venueId}/slots", h.GetSlots)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/add-ons", h.ListAddOns)
			r.Get("/event-types", h.ListEventTypes)
			r.Get("/cakes", h.ListCakes)
		})

		r.Route("/wizard", func(r chi.Router) {
			r.Post("/", h.StartWizard)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", h.GetWizard)
				r.Put("/details", h.UpdateDetails)
				r.Put("/date", h.SelectDate)
				r.Put("/event-type", h.SetEventType)
				r.Put("/cakes", h.SetCakes)
				r.Put("/add-ons", h.SetAddOns)
				r.Post("/next", h.NextStep)
				r.Post("/back", h.BackStep)
				r.Get("/quote", h.GetQuote)
				r.Post("/confirm", h.Confirm)
				r.Post("/payment-result", h.PaymentResult)
			})
		})

		r.Get("/bookings/{reference}", h.GetBooking)

		r.Route("/analytics/venues/{venueId}", func(r chi.Router) {
			r.Get("/", h.GetVenueAnalytics)
			r.Get("/occupancy", h.GetSlotOccupancy)
		})
	})

	return r
}
