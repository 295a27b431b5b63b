package unsigned_webhook

import (
	"context"

	processWebhook "github.com/m04kA/SMC-ReservationCore/internal/usecase/process_webhook"
)

type UnsignedProcessor interface {
	HandleUnsigned(ctx context.Context, payload []byte) (*processWebhook.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
