package utils

import "github.com/google/uuid"

// GenID returns a fresh opaque id for messages, posts and identities.
func GenID() string {
	return uuid.NewString()
}
