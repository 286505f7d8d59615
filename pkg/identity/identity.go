// Package identity models the security identity a DAG was submitted under
// and propagates it to initializer code. There is no native impersonation
// here: the identity is threaded through the context, and RunAs installs it
// for the duration of a closure.
package identity

import (
	"context"
)

type contextKey struct{}

// Identity describes the principal initializer code should observe while
// running, typically the DAG's submitting user rather than the service's
// own identity.
type Identity struct {
	// Principal is the identity's primary name.
	Principal string

	// Claims holds additional identity attributes, such as group
	// memberships or delegation tokens.
	Claims map[string]string
}

// IsZero reports whether the identity is empty.
func (id Identity) IsZero() bool {
	return id.Principal == "" && len(id.Claims) == 0
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity carried by the context, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// RunAs executes fn with the given identity installed in the context.
// The identity is visible to fn and everything it calls via FromContext.
func RunAs(ctx context.Context, id Identity, fn func(ctx context.Context) error) error {
	return fn(WithIdentity(ctx, id))
}
