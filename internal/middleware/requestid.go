// Package middleware holds the HTTP middleware of the invoke server.
package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"redshift-ddl/internal/domain"
)

// HeaderRequestID carries the invocation ID in both directions.
const HeaderRequestID = "X-Request-ID"

// validRequestID bounds client-supplied IDs so they are safe to log.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// RequestID assigns an invocation ID to each request. A well-formed incoming
// X-Request-ID is reused, anything else is replaced by a new UUID. The ID is
// echoed in the response and stored in the context for the relay services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(domain.WithInvocationID(r.Context(), id)))
	})
}

// RequestIDFromContext returns the request ID, or "" outside the middleware.
func RequestIDFromContext(ctx context.Context) string {
	return domain.InvocationIDFromContext(ctx)
}
