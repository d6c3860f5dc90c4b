package models

// Identity is issued by the auth boundary and is immutable afterwards.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}
