package requestid

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// This package carries the per-request correlation ID from middleware to handlers.

// Header is the request and response header holding the ID.
const Header = "X-Request-Id"

// contextKey is a private type to avoid key collisions in the context.
type contextKey string

const requestIDKey = contextKey("request_id")

// FromRequest returns the caller-supplied ID, or a fresh one if the header is blank.
func FromRequest(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(Header)); id != "" {
		return id
	}
	return uuid.NewString()
}

// Set returns a new request with the ID added to its context.
// The request ID middleware calls this.
func Set(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDKey, id)
	return r.WithContext(ctx)
}

// Get retrieves the ID from the context, or "" when the middleware did not run.
func Get(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
