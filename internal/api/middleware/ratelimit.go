package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
)

const msgTooManyRequests = "слишком много запросов"

// Decision результат проверки лимита
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter проверяет и списывает токен для ключа
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// tokenBucketScript атомарно пополняет и списывает токены одного ключа
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + (intervals * refill_tokens))
		last_refill = last_refill + (intervals * interval_ms)
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RedisTokenBucket распределённый token bucket поверх Redis.
// Состояние общее для всех реплик сервиса.
type RedisTokenBucket struct {
	client         redis.Scripter
	capacity       int
	refillTokens   int
	refillInterval time.Duration
}

// NewRedisTokenBucket создает лимитер
func NewRedisTokenBucket(client redis.Scripter, capacity, refillTokens int, refillInterval time.Duration) *RedisTokenBucket {
	return &RedisTokenBucket{
		client:         client,
		capacity:       capacity,
		refillTokens:   refillTokens,
		refillInterval: refillInterval,
	}
}

// Allow списывает токен
func (b *RedisTokenBucket) Allow(ctx context.Context, key string) (Decision, error) {
	ttl := b.ttl()
	vals, err := tokenBucketScript.Run(ctx, b.client, []string{key},
		time.Now().UnixMilli(),
		b.capacity,
		b.refillTokens,
		b.refillInterval.Milliseconds(),
		int64(ttl/time.Second),
	).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: run script: %w", err)
	}
	return parseDecision(vals)
}

// ttl время, за которое пустое ведро наполняется целиком (не меньше секунды)
func (b *RedisTokenBucket) ttl() time.Duration {
	if b.refillTokens <= 0 {
		return time.Hour
	}
	intervals := int64(math.Ceil(float64(b.capacity) / float64(b.refillTokens)))
	ttl := time.Duration(intervals) * b.refillInterval
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

func parseDecision(vals interface{}) (Decision, error) {
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
	}

	allowed, ok1 := arr[0].(int64)
	remaining, ok2 := arr[1].(int64)
	retryMs, ok3 := arr[2].(int64)
	if !ok1 || !ok2 || !ok3 {
		return Decision{}, fmt.Errorf("ratelimit: unexpected script result %#v", vals)
	}

	return Decision{
		Allowed:    allowed == 1,
		Remaining:  remaining,
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

// RateLimit ограничивает запросы по ключу prefix:ip:route.
// Ошибка Redis не блокирует запрос: лимит вторичен по отношению к доступности.
func RateLimit(limiter Limiter, prefix string, capacity int, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := rateKey(prefix, r)

			decision, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("RateLimit: limiter unavailable for key=%s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

			if !decision.Allowed {
				secs := int(math.Ceil(decision.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				logger.Warn("RateLimit: blocked key=%s retry_after=%ds", key, secs)
				handlers.RespondRetryLater(w, http.StatusTooManyRequests, secs, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(prefix string, r *http.Request) string {
	ip := clientIP(r)

	route := r.URL.Path
	if current := mux.CurrentRoute(r); current != nil {
		if tpl, err := current.GetPathTemplate(); err == nil {
			route = tpl
		}
	}

	return strings.Join([]string{prefix, "ip", ip, "route", r.Method + " " + route}, ":")
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return "unknown"
	}
	return host
}
