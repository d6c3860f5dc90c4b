// Package navgate decides which view a client may see. It is a pure
// function of the current session snapshot and route: nothing is
// persisted, and the rules form a strict priority cascade: an earlier
// match always wins over a later one.
package navgate

import "github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"

// State names the gate's resolution.
type State string

const (
	Unauthenticated  State = "unauthenticated"
	ProfileLoading   State = "profile-loading"
	AdminRedirect    State = "admin-redirect"
	GroupJoinPending State = "group-join-pending"
	Ready            State = "ready"
)

// Well-known routes the gate redirects between.
const (
	RouteLogin = "/login"
	RouteAdmin = "/admin"
	RouteJoin  = "/join-group"
)

// Inputs is the full observable state the gate derives from.
type Inputs struct {
	Authenticated bool
	// ProfileLoaded is false while the profile document is still being
	// resolved; an absent-but-resolved profile sets it true with Profile
	// nil ("incomplete").
	ProfileLoaded bool
	Profile       *models.Profile
	Route         string
}

// Decision is the gate's output: the resolved state plus the redirect
// target when the state forces one.
type Decision struct {
	State      State  `json:"state"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Resolve evaluates the cascade in fixed priority order:
//  1. no identity            -> Unauthenticated (redirect to login)
//  2. profile not yet loaded -> ProfileLoading (no further redirects yet)
//  3. admin off admin route  -> AdminRedirect (outranks rule 4)
//  4. group not joined       -> GroupJoinPending
//  5. otherwise              -> Ready
func Resolve(in Inputs) Decision {
	if !in.Authenticated {
		d := Decision{State: Unauthenticated}
		if in.Route != RouteLogin {
			d.RedirectTo = RouteLogin
		}
		return d
	}
	if !in.ProfileLoaded {
		return Decision{State: ProfileLoading}
	}
	if in.Profile != nil && in.Profile.Admin && in.Route != RouteAdmin {
		return Decision{State: AdminRedirect, RedirectTo: RouteAdmin}
	}
	if in.Profile != nil && !in.Profile.JoinedGroup {
		d := Decision{State: GroupJoinPending}
		if in.Route != RouteJoin {
			d.RedirectTo = RouteJoin
		}
		return d
	}
	return Decision{State: Ready}
}
