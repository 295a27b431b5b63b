package create_payment_intent

import (
	"context"

	createIntent "github.com/m04kA/SMC-ReservationCore/internal/usecase/create_payment_intent"
)

type CreatePaymentIntentUseCase interface {
	Execute(ctx context.Context, req *createIntent.Request) (*createIntent.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
