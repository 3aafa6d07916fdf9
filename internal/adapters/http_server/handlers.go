package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"huski_bookings/internal/app"
	"huski_bookings/internal/domain"
)

type Handlers struct {
	Q      *app.QueryService
	Users  *app.UserService
	Tokens *app.TokenService
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/booking", func(r chi.Router) {
		r.Get("/getBookingsByDateRange", h.getBookingsByDateRange)
		r.Get("/getAllBookings", h.getAllBookings)
	})

	h.mountUserRoutes(s.mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// write500 surfaces the storage error text, matching the established API
// contract for these endpoints.
func write500(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (h *Handlers) getBookingsByDateRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	if !validDate(start) || !validDate(end) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "startDate and endDate must be YYYY-MM-DD"})
		return
	}

	out, err := h.Q.BookingsByDateRange(r.Context(), start, end)
	if err != nil {
		write500(w, err)
		return
	}
	if out == nil {
		out = []domain.BookingView{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getAllBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.AllBookings(r.Context())
	if err != nil {
		write500(w, err)
		return
	}
	if out == nil {
		out = []domain.HeaderView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}
