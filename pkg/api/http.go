// Package api exposes the versioned HTTP surface over the core packages.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/errs"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
)

// API binds handlers to their collaborators.
type API struct {
	Boundary *auth.Boundary
	// HeartbeatInterval bounds the presence loop owned by websocket
	// subscriptions and the staleness classification in profile reads.
	HeartbeatInterval time.Duration
}

// New builds the API with the given auth boundary and presence period.
func New(boundary *auth.Boundary, heartbeat time.Duration) *API {
	return &API{Boundary: boundary, HeartbeatInterval: heartbeat}
}

// Routes registers all versioned endpoints on r.
func (a *API) Routes(r *mux.Router) {
	r.HandleFunc("/v1/auth/register", a.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/login", a.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/logout", a.handleLogout).Methods(http.MethodPost)

	r.HandleFunc("/v1/profiles", a.handleListProfiles).Methods(http.MethodGet)
	r.HandleFunc("/v1/profiles/{id}", a.handleGetProfile).Methods(http.MethodGet)
	r.HandleFunc("/v1/profiles/{id}", a.handleUpdateProfile).Methods(http.MethodPut)

	r.HandleFunc("/v1/nav", a.handleNav).Methods(http.MethodGet)
	r.HandleFunc("/v1/presence/heartbeat", a.handleHeartbeat).Methods(http.MethodPost)

	r.HandleFunc("/v1/conversations", a.handleListConversations).Methods(http.MethodGet)
	r.HandleFunc("/v1/rooms/with/{peer}", a.handleRoomWith).Methods(http.MethodGet)
	r.HandleFunc("/v1/rooms/{room}/messages", a.handleSend).Methods(http.MethodPost)
	r.HandleFunc("/v1/rooms/{room}/messages", a.handleListMessages).Methods(http.MethodGet)
	r.HandleFunc("/v1/rooms/{room}/subscribe", a.handleSubscribe).Methods(http.MethodGet)

	r.HandleFunc("/v1/users/{id}/follow", a.handleFollow).Methods(http.MethodPost)
	r.HandleFunc("/v1/posts", a.handleCreatePost).Methods(http.MethodPost)
	r.HandleFunc("/v1/posts", a.handleListPosts).Methods(http.MethodGet)
	r.HandleFunc("/v1/posts/{id}/like", a.handleLike).Methods(http.MethodPost)
}

// writeErr maps the error taxonomy onto HTTP statuses with stable codes.
func writeErr(w http.ResponseWriter, err error) {
	var vErr *errs.ValidationError
	if errors.As(err, &vErr) {
		utils.JSONErrorCode(w, http.StatusBadRequest, "validation", vErr.Error())
		return
	}
	var aErr *errs.AuthError
	if errors.As(err, &aErr) {
		status := http.StatusUnauthorized
		switch aErr.Kind {
		case errs.AuthEmailInUse:
			status = http.StatusConflict
		case errs.AuthWeakPassword:
			status = http.StatusBadRequest
		}
		// provider message passes through verbatim
		utils.JSONErrorCode(w, status, string(aErr.Kind), aErr.Error())
		return
	}
	var nErr *errs.NotFoundError
	if errors.As(err, &nErr) {
		utils.JSONErrorCode(w, http.StatusNotFound, "not-found", nErr.Error())
		return
	}
	var wErr *errs.WriteFailure
	if errors.As(err, &wErr) {
		utils.JSONErrorCode(w, http.StatusBadGateway, "write-failure", wErr.Error())
		return
	}
	utils.JSONError(w, http.StatusInternalServerError, err.Error())
}
