package models

// RelationshipStatus is the closed enum accepted on profiles.
type RelationshipStatus string

const (
	RelSingle      RelationshipStatus = "single"
	RelTaken       RelationshipStatus = "taken"
	RelComplicated RelationshipStatus = "complicated"
	RelUnspecified RelationshipStatus = ""
)

// Profile is the per-member document keyed by identity id. It is created
// once at registration and mutated by its owner, except for the follower
// sets which only the ledger touches.
type Profile struct {
	ID       string             `json:"id"`
	Username string             `json:"username"`
	Bio      string             `json:"bio,omitempty"`
	Location string             `json:"location,omitempty"`
	Age      int                `json:"age,omitempty"`
	Status   RelationshipStatus `json:"relationship_status,omitempty"`
	Contact  string             `json:"contact,omitempty"`
	// AvatarRef is an opaque blob-store reference; the core never
	// dereferences it.
	AvatarRef string `json:"avatar_ref,omitempty"`

	Verified    bool `json:"verified"`
	Admin       bool `json:"admin"`
	JoinedGroup bool `json:"has_joined_external_group"`

	Followers []string `json:"followers,omitempty"`
	Following []string `json:"following,omitempty"`

	// LastSeen is a heartbeat timestamp (ns). Online is advisory only;
	// consumers should classify liveness from LastSeen staleness.
	LastSeen int64 `json:"last_seen,omitempty"`
	Online   bool  `json:"online,omitempty"`
}

// Follows reports whether the profile's following set contains id.
func (p *Profile) Follows(id string) bool {
	for _, f := range p.Following {
		if f == id {
			return true
		}
	}
	return false
}

// FollowedBy reports whether the profile's followers set contains id.
func (p *Profile) FollowedBy(id string) bool {
	for _, f := range p.Followers {
		if f == id {
			return true
		}
	}
	return false
}
