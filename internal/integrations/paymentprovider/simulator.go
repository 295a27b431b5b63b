package paymentprovider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Simulator локальный провайдер для разработки и тестов.
// Как и настоящий провайдер, по одному ключу идемпотентности всегда отдаёт одно намерение,
// а повтор ключа с другой суммой отклоняет.
type Simulator struct {
	mu      sync.Mutex
	intents map[string]*Intent
	calls   int
}

// NewSimulator создает локальный провайдер
func NewSimulator() *Simulator {
	return &Simulator{intents: make(map[string]*Intent)}
}

// CreatePaymentIntent создает или возвращает намерение по ключу идемпотентности
func (s *Simulator) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	currency := strings.ToLower(req.Currency)

	if existing, ok := s.intents[req.IdempotencyKey]; ok {
		if existing.Amount != req.AmountCents || existing.Currency != currency {
			return nil, fmt.Errorf("%w: idempotency key reused with different parameters", ErrRejected)
		}
		copied := *existing
		return &copied, nil
	}

	id := "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	intent := &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Status:       "requires_payment_method",
		Amount:       req.AmountCents,
		Currency:     currency,
	}
	s.intents[req.IdempotencyKey] = intent

	copied := *intent
	return &copied, nil
}

// Calls количество обращений к провайдеру
func (s *Simulator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
