package list_trip_bookings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings"
	"github.com/m04kA/SMC-ReservationCore/internal/service/bookings/models"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
)

func newRouter(store *memstore.Store) *mux.Router {
	svc := bookings.NewService(store.Bookings(), store.Payments(), logger.NewNop())
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/admin/trips/{tripId}/bookings", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodGet)
	return router
}

func TestHandle(t *testing.T) {
	store := memstore.New()
	for i, day := range []int{2, 2, 3} {
		store.Bookings().Put(domain.Booking{
			ID:         []string{"b-1", "b-2", "b-3"}[i],
			TripID:     "lake-tour",
			Mode:       "shared",
			TravelDate: time.Date(2026, 11, day, 0, 0, 0, 0, time.UTC),
			Seats:      1,
			PriceCents: 1500,
			Currency:   "USD",
			Status:     domain.StatusPending,
		})
	}
	router := newRouter(store)

	tests := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{name: "all", query: "", status: http.StatusOK, count: 3},
		{name: "by date", query: "?date=2026-11-02", status: http.StatusOK, count: 2},
		{name: "by status", query: "?status=confirmed", status: http.StatusOK, count: 0},
		{name: "limit", query: "?limit=1", status: http.StatusOK, count: 1},
		{name: "bad date", query: "?date=02.11.2026", status: http.StatusBadRequest},
		{name: "bad status", query: "?status=refunded", status: http.StatusBadRequest},
		{name: "bad limit", query: "?limit=abc", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/trips/lake-tour/bookings"+tt.query, nil))

			require.Equal(t, tt.status, w.Code)
			if tt.status != http.StatusOK {
				return
			}
			var resp models.BookingListResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "lake-tour", resp.TripID)
			assert.Equal(t, tt.count, resp.Count)
			assert.Len(t, resp.Bookings, tt.count)
		})
	}
}
