// Package correlationid carries a per-request correlation identifier through
// context so log lines from one request can be grouped together.
package correlationid

import "context"

// Header is the HTTP header used to propagate the correlation id.
const Header = "X-Correlation-ID"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the given correlation id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the correlation id from ctx, if any.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok
}
