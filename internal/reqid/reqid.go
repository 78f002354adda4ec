// Package reqid carries a per-request identifier through a context.
package reqid

import (
	"context"
	"math/rand/v2"
	"net/http"
	"strconv"
)

// Header is the HTTP header that carries the request id in both directions.
const Header = "X-Request-Id"

type key struct{}

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	return WithID(parent, strconv.FormatUint(rand.Uint64(), 16))
}

// WithID stores id in a copy of parent.
func WithID(parent context.Context, id string) (context.Context, string) {
	return context.WithValue(parent, key{}, id), id
}

// FromRequest reuses the id sent by the client in Header when there is one
// and generates a fresh id otherwise.
func FromRequest(r *http.Request) (context.Context, string) {
	if id := r.Header.Get(Header); id != "" && len(id) <= 128 {
		return WithID(r.Context(), id)
	}
	return NewContext(r.Context())
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}
