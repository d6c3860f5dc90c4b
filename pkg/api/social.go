package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/ledger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/store"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/validation"
)

type postRequest struct {
	Content string `json:"content"`
}

func (a *API) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	var req postRequest
	if err := utils.DecodeStrict(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validation.PostContent(req.Content); err != nil {
		writeErr(w, err)
		return
	}
	p := models.Post{
		ID:      utils.GenID(),
		Author:  uid,
		Content: req.Content,
		TS:      time.Now().UTC().UnixNano(),
	}
	if err := store.SavePost(p); err != nil {
		writeErr(w, &errs.WriteFailure{Op: "create post", Err: err})
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, p)
}

func (a *API) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := store.ListPosts()
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, posts)
}

func (a *API) handleLike(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	id := mux.Vars(r)["id"]
	liked, err := ledger.ToggleLike(id, uid)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"post":  id,
		"liked": liked,
	})
}

func (a *API) handleFollow(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	target := mux.Vars(r)["id"]
	following, err := ledger.ToggleFollow(uid, target)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]any{
		"target":    target,
		"following": following,
	})
}
