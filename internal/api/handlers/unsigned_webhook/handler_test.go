package unsigned_webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ReservationCore/internal/domain"
	processWebhook "github.com/m04kA/SMC-ReservationCore/internal/usecase/process_webhook"
	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
)

type processorFunc func(ctx context.Context, payload []byte) (*processWebhook.Result, error)

func (f processorFunc) HandleUnsigned(ctx context.Context, payload []byte) (*processWebhook.Result, error) {
	return f(ctx, payload)
}

func TestHandle(t *testing.T) {
	var got string
	h := NewHandler(processorFunc(func(ctx context.Context, payload []byte) (*processWebhook.Result, error) {
		got = string(payload)
		return &processWebhook.Result{EventID: "evt_1", AppliedStatus: domain.AppliedCreated}, nil
	}), logger.NewNop())

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments/test", strings.NewReader(`{"id":"evt_1"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"id":"evt_1"}`, got)
	assert.Contains(t, w.Body.String(), `"applied":"created"`)
}

func TestHandle_InvalidPayload(t *testing.T) {
	h := NewHandler(processorFunc(func(ctx context.Context, payload []byte) (*processWebhook.Result, error) {
		return nil, processWebhook.ErrInvalidPayload
	}), logger.NewNop())

	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments/test", strings.NewReader(`x`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
