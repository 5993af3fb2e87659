package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/errs"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// Identity is the resolved caller attached to the request context by the
// access gate. The gate is artifact validation only: it answers "are you
// someone", never whether the caller may touch a particular resource.
type Identity struct {
	ID   int
	Name string
}

type contextKey string

const identityKey contextKey = "identity"

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Auth resolves the Authorization header to a user by exact token match and
// attaches the identity to the request context. Absent or unknown tokens
// short-circuit with 401.
func Auth(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			// Tolerate clients that send the token with a Bearer prefix
			token = strings.TrimPrefix(token, "Bearer ")
			if token == "" {
				respond(w, http.StatusUnauthorized, errs.NewAuthenticationError("Missing access token"))
				return
			}

			var ident Identity
			err := db.QueryRow("SELECT id, name FROM users WHERE access_token = ?", token).
				Scan(&ident.ID, &ident.Name)
			if err == sql.ErrNoRows {
				respond(w, http.StatusUnauthorized, errs.NewAuthenticationError("Invalid access token"))
				return
			}
			if err != nil {
				logger.Error("Failed to resolve access token", zap.Error(err))
				respond(w, http.StatusInternalServerError, errs.NewInternalServerError("Database error"))
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, &ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthUser returns the identity attached by Auth, or nil on public routes.
func AuthUser(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}
