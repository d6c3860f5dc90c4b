package models

// Post is a reaction target. Likes is a set mutated only through the
// ledger's idempotent toggle.
type Post struct {
	ID           string   `json:"id"`
	Author       string   `json:"author"`
	Content      string   `json:"content"`
	TS           int64    `json:"ts"`
	Likes        []string `json:"likes,omitempty"`
	CommentCount int      `json:"comment_count,omitempty"`
}

// LikedBy reports whether id is in the likes set.
func (p *Post) LikedBy(id string) bool {
	for _, l := range p.Likes {
		if l == id {
			return true
		}
	}
	return false
}
