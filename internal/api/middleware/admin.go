package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationCore/internal/api/handlers"
)

// HeaderAdminToken заголовок с токеном оператора
const HeaderAdminToken = "X-Admin-Token"

const (
	msgAdminDisabled = "административный API выключен"
	msgAdminDenied   = "неверный токен администратора"
)

// AdminToken пропускает только запросы с верным X-Admin-Token.
// Пустой токен в конфигурации выключает административные маршруты целиком.
func AdminToken(token string, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				handlers.RespondForbidden(w, msgAdminDisabled)
				return
			}

			got := r.Header.Get(HeaderAdminToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.Warn("%s %s - Admin token rejected from %s", r.Method, r.URL.Path, r.RemoteAddr)
				handlers.RespondUnauthorized(w, msgAdminDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
