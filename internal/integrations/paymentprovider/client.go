package paymentprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client HTTP клиент платёжного провайдера (form API: POST /v1/payment_intents)
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента провайдера
func NewClient(baseURL, apiKey string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CreatePaymentIntent создает платёжное намерение.
// Idempotency-Key передаётся провайдеру как есть: повтор после сбоя между
// вызовом провайдера и сохранением ответа вернёт то же намерение.
func (c *Client) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	if req.BookingID != nil {
		form.Set("metadata[booking_id]", *req.BookingID)
	}
	if req.TripContext != nil {
		form.Set("metadata[trip_id]", req.TripContext.TripID)
		form.Set("metadata[mode]", req.TripContext.Mode)
		form.Set("metadata[seats]", strconv.Itoa(req.TripContext.Seats))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("CreatePaymentIntent: request failed: %v", err)
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Продолжаем обработку
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn("CreatePaymentIntent: provider status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("%w: status code %d", ErrUnavailable, resp.StatusCode)
	default:
		var errResp ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&errResp)
		c.log.Warn("CreatePaymentIntent: provider rejected with %d: %s", resp.StatusCode, errResp.Error.Message)
		return nil, fmt.Errorf("%w: status code %d: %s", ErrRejected, resp.StatusCode, errResp.Error.Message)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing id or client_secret", ErrInvalidResponse)
	}

	c.log.Info("CreatePaymentIntent: created intent=%s amount=%d", intent.ID, intent.Amount)
	return &intent, nil
}
