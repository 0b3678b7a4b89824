package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"commande-service/internal/auth"
)

// Login issues a bearer token for the given username and role. There is no
// credential check here: upstream gateways own real authentication, this
// endpoint only mints tokens the service itself can verify.
type Login struct {
	Issuer *auth.Issuer
	Log    zerolog.Logger
}

type loginReq struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResp struct {
	Token string `json:"token"`
}

func (h *Login) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "username et role requis")
		return
	}
	if req.Username == "" || req.Role == "" {
		writeMessage(w, http.StatusBadRequest, "username et role requis")
		return
	}
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "role inconnu")
		return
	}

	token, err := h.Issuer.Sign(req.Username, req.Username, role)
	if err != nil {
		h.Log.Error().Err(err).Msg("token signing failed")
		writeMessage(w, http.StatusInternalServerError, msgServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token})
}
