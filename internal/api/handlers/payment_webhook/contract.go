package payment_webhook

import (
	"context"

	processWebhook "github.com/m04kA/SMC-ReservationCore/internal/usecase/process_webhook"
)

type SignedProcessor interface {
	HandleSigned(ctx context.Context, payload []byte, signatureHeader string) (*processWebhook.Result, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
