package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/nordural/order-service/pkg/httpmiddleware"
)

// APIKeyHeader is the request header carrying the shared secret.
const APIKeyHeader = "X-API-Key"

// RequireAPIKey returns a middleware gating every request behind the shared
// secret: a missing header is 401, a mismatch is 403. The comparison is
// constant-time to avoid leaking the secret through timing.
func RequireAPIKey(secret string) httpmiddleware.Middleware {
	secretBytes := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				respondDetail(w, r, http.StatusUnauthorized, "API key is missing")
				return
			}

			if subtle.ConstantTimeCompare([]byte(key), secretBytes) != 1 {
				respondDetail(w, r, http.StatusForbidden, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
