package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/navgate"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/presence"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/validation"
)

// profileView decorates a profile with the staleness-derived liveness
// classification; the stored Online flag is advisory only.
type profileView struct {
	models.Profile
	OnlineNow bool `json:"online_now"`
}

func (a *API) view(p models.Profile) profileView {
	return profileView{Profile: p, OnlineNow: presence.Online(&p, time.Now(), a.HeartbeatInterval)}
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	p, err := store.GetProfile(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, a.view(*p))
}

func (a *API) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if username := r.URL.Query().Get("username"); username != "" {
		p, err := store.FindProfileByUsername(username)
		if err != nil {
			writeErr(w, err)
			return
		}
		_ = utils.JSONWrite(w, http.StatusOK, []profileView{a.view(*p)})
		return
	}
	all, err := store.ListProfiles()
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]profileView, 0, len(all))
	for _, p := range all {
		out = append(out, a.view(p))
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

// profileUpdate carries the owner-editable fields. Follower sets and the
// admin/verified flags are deliberately absent: the ledger owns the
// former, operators the latter.
type profileUpdate struct {
	Username    *string `json:"username,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Location    *string `json:"location,omitempty"`
	Age         *int    `json:"age,omitempty"`
	Status      *string `json:"relationship_status,omitempty"`
	Contact     *string `json:"contact,omitempty"`
	AvatarRef   *string `json:"avatar_ref,omitempty"`
	JoinedGroup *bool   `json:"has_joined_external_group,omitempty"`
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	caller := auth.IdentityFromContext(r.Context())
	if caller != id {
		utils.JSONError(w, http.StatusForbidden, "profiles are owner-editable only")
		return
	}
	var upd profileUpdate
	if err := utils.DecodeStrict(r, &upd); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if upd.Username != nil {
		// usernames are unique across members
		if other, err := store.FindProfileByUsername(*upd.Username); err == nil && other.ID != id {
			writeErr(w, &errs.ValidationError{Field: "username", Msg: "already taken: " + *upd.Username})
			return
		}
	}
	err := store.MergeProfile(id, func(p *models.Profile) error {
		if upd.Username != nil {
			p.Username = *upd.Username
		}
		if upd.Bio != nil {
			p.Bio = *upd.Bio
		}
		if upd.Location != nil {
			p.Location = *upd.Location
		}
		if upd.Age != nil {
			p.Age = *upd.Age
		}
		if upd.Status != nil {
			p.Status = models.RelationshipStatus(*upd.Status)
		}
		if upd.Contact != nil {
			p.Contact = *upd.Contact
		}
		if upd.AvatarRef != nil {
			p.AvatarRef = *upd.AvatarRef
		}
		if upd.JoinedGroup != nil {
			p.JoinedGroup = *upd.JoinedGroup
		}
		return validation.Profile(p)
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	p, err := store.GetProfile(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, a.view(*p))
}

// handleNav resolves the navigation gate for the calling session and the
// route it reports being on.
func (a *API) handleNav(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	in := navgate.Inputs{
		Authenticated: uid != "",
		Route:         r.URL.Query().Get("route"),
	}
	if uid != "" {
		p, err := store.GetProfile(uid)
		switch {
		case err == nil:
			in.ProfileLoaded = true
			in.Profile = p
		case errs.IsNotFound(err):
			// absent profile: resolved but incomplete
			in.ProfileLoaded = true
		default:
			writeErr(w, err)
			return
		}
	}
	_ = utils.JSONWrite(w, http.StatusOK, navgate.Resolve(in))
}

func (a *API) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	if err := presence.Beat(uid); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
