package middleware

import (
	"context"
	"net/http"

	"github.com/seipay/custody/internal/logger"
	"github.com/seipay/custody/internal/validation"
)

type contextKey string

const ownerKey contextKey = "owner_address"

// OwnerAuth requires a valid X-Owner-Address header on each request and
// stores the normalized address in the request context. Upstream auth
// (session verification, signature checks) is expected to have happened
// at the gateway; this layer only scopes data access to the caller.
func OwnerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get("X-Owner-Address")
		if err := validation.ValidateOwnerID(owner); err != nil {
			logger.Warn(r.Context(), "rejected request with invalid owner header", "path", r.URL.Path)
			http.Error(w, "missing or invalid owner address", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerFromContext returns the authenticated owner address, or "" when
// the request did not pass through OwnerAuth.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}
