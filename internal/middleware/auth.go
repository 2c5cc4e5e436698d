package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TriggerSecretHeader carries the shared secret for the tick trigger
const TriggerSecretHeader = "X-Cron-Secret"

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing credentials"}}`))
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// RequireTriggerSecret rejects requests whose shared-secret header does not
// match. The check runs before any engine work.
func RequireTriggerSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" || !equal(r.Header.Get(TriggerSecretHeader), secret) {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireBearerToken guards the admin API with a static bearer token
func RequireBearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			got, found := strings.CutPrefix(auth, "Bearer ")
			if token == "" || !found || !equal(got, token) {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
