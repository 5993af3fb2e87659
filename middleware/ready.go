package middleware

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Ready rejects every request with 503 while the store connection is not in a
// ready state. Applied ahead of all routes.
func Ready(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := db.Ping(); err != nil {
				logger.Error("Store connection not ready", zap.Error(err))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"error": "Service unavailable"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
