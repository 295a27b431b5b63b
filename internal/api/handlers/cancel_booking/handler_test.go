package cancel_booking

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
)

func TestHandle(t *testing.T) {
	store := memstore.New()
	for id, status := range map[string]domain.BookingStatus{
		"pending":   domain.StatusPending,
		"confirmed": domain.StatusConfirmed,
	} {
		store.Bookings().Put(domain.Booking{
			ID:         id,
			TripID:     "X",
			Mode:       "van",
			TravelDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC),
			Seats:      1,
			PriceCents: 5000,
			Currency:   "USD",
			Status:     status,
		})
	}

	svc := bookings.NewService(store.Bookings(), store.Payments(), logger.NewNop())
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPost)

	tests := []struct {
		id     string
		status int
	}{
		{"pending", http.StatusOK},
		{"confirmed", http.StatusConflict},
		{"missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+tt.id+"/cancel", nil))
		assert.Equal(t, tt.status, w.Code, tt.id)
	}
}
