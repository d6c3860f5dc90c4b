// Package roomid derives deterministic room identifiers. The canonical id
// for a pair of members is order-independent so both sides of a DM resolve
// to the same room without coordination.
package roomid

import (
	"fmt"
	"strings"
)

// Sep joins the two participant ids. Ids containing it are rejected so the
// mapping stays unambiguous.
const Sep = "|"

// GlobalChannel is the fixed room id of the community-wide channel.
const GlobalChannel = "global"

// Canonical returns the room id shared by a and b. It is commutative:
// Canonical(a, b) == Canonical(b, a). A member cannot converse with
// themselves, and empty or separator-bearing ids are invalid.
func Canonical(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", fmt.Errorf("roomid: empty participant id")
	}
	if a == b {
		return "", fmt.Errorf("roomid: self-pair %q", a)
	}
	if strings.Contains(a, Sep) || strings.Contains(b, Sep) {
		return "", fmt.Errorf("roomid: participant id contains separator %q", Sep)
	}
	if a > b {
		a, b = b, a
	}
	return a + Sep + b, nil
}

// IsPaired reports whether room names a two-party conversation rather than
// a named channel.
func IsPaired(room string) bool {
	return strings.Contains(room, Sep)
}

// IsCanonical reports whether room is the canonical form of the pair it
// names. A reversed id addresses the same unordered pair but a different
// key, so callers taking paired ids from the outside must reject anything
// non-canonical before touching the store.
func IsCanonical(room string) bool {
	a, b, ok := Participants(room)
	if !ok {
		return false
	}
	c, err := Canonical(a, b)
	return err == nil && c == room
}

// Participants splits a paired room id back into its two member ids.
func Participants(room string) (string, string, bool) {
	i := strings.Index(room, Sep)
	if i < 0 {
		return "", "", false
	}
	return room[:i], room[i+len(Sep):], true
}
