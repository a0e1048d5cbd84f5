// Package identity defines the identity-provider contract the engine
// depends on and a JWT-backed implementation of it. The engine itself
// never reads ambient authentication state; callers thread explicit
// principal ids into every operation, and the application shell keeps a
// session holder fed by the provider's change stream.
package identity

import "context"

// Principal is an authenticated identity.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
}

// AuthStateHandler receives the new principal on every sign-in and nil
// on sign-out.
type AuthStateHandler func(p *Principal)

// CancelFunc detaches an auth-state handler.
type CancelFunc func()

// Provider is the identity-provider contract.
type Provider interface {
	// CurrentPrincipal returns the signed-in principal, or nil when
	// signed out.
	CurrentPrincipal(ctx context.Context) (*Principal, error)

	// OnAuthStateChanged registers a handler for sign-in/sign-out
	// transitions. The handler is invoked with the current state on
	// registration.
	OnAuthStateChanged(handler AuthStateHandler) CancelFunc
}
