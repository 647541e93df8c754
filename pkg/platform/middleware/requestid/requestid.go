// Package requestid assigns each request an id for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"markpart/pkg/requestcontext"
)

const headerName = "X-Request-ID"

// Middleware propagates the caller-supplied request id, or generates one,
// and echoes it back in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerName)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerName, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
