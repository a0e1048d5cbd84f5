// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a user profile document. The ID is the identity
// provider's principal id, not a value the engine generates.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Bio         string    `json:"bio"`
	PhotoBase64 string    `json:"photo_base64,omitempty"`
	FCMToken    string    `json:"fcm_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PlaceholderDisplayName is shown when a post or comment author's
// profile document is missing.
const PlaceholderDisplayName = "User"
