package api

import (
	"net/http"

	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/auth"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/logger"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/models"
	"github.com/Bhadbanks/cruise-and-bruise-sub000/pkg/utils"
)

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Identity models.Identity `json:"identity"`
	Token    string          `json:"token"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeStrict(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := a.Boundary.Register(req.Email, req.Password, req.Username, req.DisplayName)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusCreated, authResponse{
		Identity: id,
		Token:    a.Boundary.Tokens().Issue(id.ID),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeStrict(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := a.Boundary.SignIn(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, authResponse{
		Identity: id,
		Token:    a.Boundary.Tokens().Issue(id.ID),
	})
}

// handleLogout is fire-and-forget from the core's perspective: tokens are
// stateless, so the server only acknowledges; dependent subscriptions end
// when their connections do.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	uid := auth.IdentityFromContext(r.Context())
	logger.Info("sign_out", "id", uid)
	w.WriteHeader(http.StatusNoContent)
}
