package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

type ownerKey struct{}

// ErrMissingOwner indicates a request without a valid caller identity.
var ErrMissingOwner = errors.New("missing or invalid owner identity")

// OwnerHeader carries the authenticated caller's identity, injected by the
// auth boundary in front of this service.
const OwnerHeader = "X-Owner-ID"

// Owner returns middleware that extracts the caller identity from the
// X-Owner-ID header and stores it on the request context. Requests without
// a valid UUID identity are rejected with 401.
func Owner() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(OwnerHeader))
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": ErrMissingOwner.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), ownerKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerFrom returns the caller identity stored on the context by Owner.
// The second return is false when no identity was set.
func OwnerFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	return id, ok
}
