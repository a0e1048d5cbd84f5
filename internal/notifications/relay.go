// Package notifications provides the push-notification relay: token
// bookkeeping on user documents and delivery of inbound payloads to the
// application shell. Delivery transport internals (APNs/FCM) live behind
// the relay; the engine only stores tokens and surfaces payloads.
package notifications

import "context"

// Payload is an inbound notification. PostID, when set, is a pure
// navigation intent — no engine logic depends on it.
type Payload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	PostID string `json:"post_id,omitempty"`
}

// MessageHandler receives an inbound notification payload.
type MessageHandler func(p Payload)

// CancelFunc detaches a message handler.
type CancelFunc func()

// Relay is the notification-relay contract.
type Relay interface {
	// RegisterToken stores the device token on the principal's user
	// document.
	RegisterToken(ctx context.Context, principalID, token string) error

	// RemoveToken deletes the device token from the principal's user
	// document, typically on sign-out.
	RemoveToken(ctx context.Context, principalID string) error

	// OnForegroundMessage registers a handler for payloads arriving
	// while the app is foregrounded.
	OnForegroundMessage(handler MessageHandler) CancelFunc

	// OnBackgroundMessage registers a handler for payloads arriving
	// while the app is backgrounded.
	OnBackgroundMessage(handler MessageHandler) CancelFunc

	// GetInitialNotification returns the payload that launched the app,
	// or nil. The payload is consumed: a second call returns nil.
	GetInitialNotification() *Payload
}
