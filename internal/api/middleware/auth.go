package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/edvin/provisioner/internal/api/response"
)

// SecretHeader carries the shared provisioning secret.
const SecretHeader = "X-Provisioning-Secret"

// SharedSecret rejects requests whose SecretHeader does not match secret.
// Nothing downstream runs for a rejected request.
func SharedSecret(secret string) func(http.Handler) http.Handler {
	want := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(SecretHeader))
			if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
				response.WriteError(w, http.StatusUnauthorized, "Invalid provisioning secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
