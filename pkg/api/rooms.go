package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/roomid"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/stream"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
)

// roomAccess authorizes uid for a room: the global channel is open to any
// member, a paired room only to its two participants.
func roomAccess(uid, room string) bool {
	if room == roomid.GlobalChannel {
		return true
	}
	if a, b, ok := roomid.Participants(room); ok {
		return uid == a || uid == b
	}
	return false
}

// checkRoom gates every handler that takes a room id from the URL. A
// reversed paired id would open a second log and summary for the same
// unordered pair, so only the canonical form is accepted; it writes the
// rejection itself and reports whether the handler may proceed.
func checkRoom(w http.ResponseWriter, uid, room string) bool {
	if room != roomid.GlobalChannel && !roomid.IsCanonical(room) {
		utils.JSONError(w, http.StatusBadRequest, "room id is not canonical")
		return false
	}
	if !roomAccess(uid, room) {
		utils.JSONError(w, http.StatusForbidden, "not a participant of this room")
		return false
	}
	return true
}

// handleRoomWith resolves the canonical room id shared with a peer; the
// conversation document need not exist yet.
func (a *API) handleRoomWith(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	peer := mux.Vars(r)["peer"]
	room, err := roomid.Canonical(uid, peer)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"room": room})
}

type sendRequest struct {
	Content string `json:"content"`
	Kind    string `json:"kind,omitempty"`
}

func (a *API) handleSend(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	room := mux.Vars(r)["room"]
	if !checkRoom(w, uid, room) {
		return
	}
	var req sendRequest
	if err := utils.DecodeStrict(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	kind := models.MessageKind(req.Kind)
	if kind == models.KindAnnouncement {
		p, err := store.GetProfile(uid)
		if err != nil || !p.Admin {
			utils.JSONError(w, http.StatusForbidden, "announcements are admin-only")
			return
		}
	}
	m, err := stream.Send(room, uid, req.Content, kind)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, m)
}

func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	room := mux.Vars(r)["room"]
	if !checkRoom(w, uid, room) {
		return
	}
	var limit int
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	msgs, err := stream.List(room, limit)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Room     string           `json:"room"`
		Messages []models.Message `json:"messages"`
	}{Room: room, Messages: msgs})
}

func (a *API) handleListConversations(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	convs, err := store.ListConversationsFor(uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, convs)
}
