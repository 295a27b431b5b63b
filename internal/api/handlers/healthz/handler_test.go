package healthz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationCore/pkg/logger"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		status   int
		database string
	}{
		{name: "database up", status: http.StatusOK, database: "up"},
		{name: "database down", pingErr: errors.New("connection refused"), status: http.StatusServiceUnavailable, database: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(pingerFunc(func(ctx context.Context) error { return tt.pingErr }), logger.NewNop())

			w := httptest.NewRecorder()
			h.Handle(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.status, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.database, resp.Database)
		})
	}
}
