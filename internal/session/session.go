// Package session holds the process-wide current principal. It is owned
// by the application shell, not the engine: engine calls always take
// explicit principal ids, and the shell reads them from here.
package session

import (
	"sync"

	"glimpse/internal/identity"
)

// Holder tracks the current principal, fed by the identity provider's
// auth-state stream.
type Holder struct {
	mu      sync.RWMutex
	current *identity.Principal
	cancel  identity.CancelFunc
}

// NewHolder creates a Holder and attaches it to provider's auth-state
// stream. Call Close to detach.
func NewHolder(provider identity.Provider) *Holder {
	h := &Holder{}
	h.cancel = provider.OnAuthStateChanged(func(p *identity.Principal) {
		h.mu.Lock()
		h.current = p
		h.mu.Unlock()
	})
	return h
}

// Current returns the signed-in principal, or nil when signed out.
func (h *Holder) Current() *identity.Principal {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// CurrentID returns the signed-in principal's id, or "" when signed out.
func (h *Holder) CurrentID() string {
	if p := h.Current(); p != nil {
		return p.ID
	}
	return ""
}

// Close detaches the holder from the provider's auth-state stream.
func (h *Holder) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}
