package models

// Conversation holds the cached summary for a paired room. The message log
// is authoritative; this document is a read optimization and may lag it.
type Conversation struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	LastText     string    `json:"last_text,omitempty"`
	LastTS       int64     `json:"last_ts,omitempty"`
}

// Involves reports whether id is one of the two participants.
func (c *Conversation) Involves(id string) bool {
	return c.Participants[0] == id || c.Participants[1] == id
}
