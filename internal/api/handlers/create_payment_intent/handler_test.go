package create_payment_intent

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	"github.com/m04kA/SMC-ReservationCore/internal/infra/catalog"
	"github.com/m04kA/SMC-ReservationCore/internal/integrations/paymentprovider"
	"github.com/m04kA/SMC-ReservationCore/internal/service/pricing"
	"github.com/m04kA/SMC-ReservationCore/internal/testutil/memstore"
	createIntent "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_payment_intent"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
	"github.com/m04kA/SMC-ReservationCore/pkg/metrics"
)

func newHandler(t *testing.T) (*Handler, *paymentprovider.Simulator) {
	t.Helper()
	log := logger.NewNop()
	cat := &domain.Catalog{Trips: map[string]*domain.Trip{
		"X": {
			ID:          "X",
			Currency:    "USD",
			DefaultMode: "van",
			Modes:       []domain.TripMode{{Name: "van", Pricing: domain.PricingPerVehicle, PriceCents: 5000}},
		},
	}}
	store := memstore.New()
	sim := paymentprovider.NewSimulator()
	var m *metrics.Metrics
	uc := createIntent.NewUseCase(store.Bookings(), store.Payments(),
		pricing.NewService(catalog.NewStore(cat), 10, log), sim, m, store.TxManager(), 30*time.Second, log)
	return NewHandler(uc, log), sim
}

func post(h *Handler, key, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/payment-intents", strings.NewReader(body))
	if key != "" {
		r.Header.Set("Idempotency-Key", key)
	}
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

const intentBody = `{"amount_cents":5000,"currency":"USD","trip_context":{"trip_id":"X","mode":"van","seats":2}}`

func TestHandle_ReplayIsByteIdentical(t *testing.T) {
	h, sim := newHandler(t)

	first := post(h, "K", intentBody)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("Idempotent-Replayed"))
	assert.Contains(t, first.Body.String(), "clientSecret")

	second := post(h, "K", intentBody)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, 1, sim.Calls())
}

func TestHandle_Errors(t *testing.T) {
	h, _ := newHandler(t)

	require.Equal(t, http.StatusOK, post(h, "K", intentBody).Code)

	// тот же ключ, другое тело
	w := post(h, "K", `{"amount_cents":5001,"currency":"USD"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(h, "", intentBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(h, "K2", `{"amount_cents":4000,"currency":"USD","trip_context":{"trip_id":"X","mode":"van","seats":2}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid amount")

	w = post(h, "K3", `{"amount_cents":5000,"currency":"USD","booking_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = post(h, "K4", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
