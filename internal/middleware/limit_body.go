package middleware

import "net/http"

// MaxBodySize is the largest request body accepted by the API. Recovery
// codes for a sealed key fit well under this.
const MaxBodySize = 64 * 1024 // 64 KB

// LimitBody caps the request body size to prevent memory exhaustion.
func LimitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
		next.ServeHTTP(w, r)
	})
}
