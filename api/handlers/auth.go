package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/session"
)

// Auth exported for testing purposes
type Auth struct {
	Sessions *session.Manager
}

type loginRequest struct {
	Address  string `json:"address"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string          `json:"token"`
	Session  *models.Session `json:"session"`
	Redirect string          `json:"redirect,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// LoginHandler authenticates by wallet address or by the demo email/password
// credential and returns a bearer token plus the dashboard to redirect to.
func (h Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode login request", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var (
		sess  *models.Session
		token string
		err   error
	)
	switch {
	case req.Address != "":
		sess, token, err = h.Sessions.Authenticate(ctx, req.Address)
	case req.Email != "":
		sess, token, err = h.Sessions.AuthenticateBasic(ctx, req.Email, req.Password)
	default:
		err = session.ErrNotConnected
	}
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotConnected):
			config.ErrorStatus("no wallet connected", http.StatusBadRequest, w, err)
		case errors.Is(err, session.ErrUnregistered):
			config.ErrorStatus("identity not registered", http.StatusNotFound, w, err)
		case errors.Is(err, session.ErrInvalidCredentials):
			config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		default:
			config.ErrorStatus("failed to authenticate", http.StatusInternalServerError, w, err)
		}
		return
	}

	api.AppendToken(token, sess.Address, r)

	resp := loginResponse{Token: token, Session: sess}
	redirect, err := session.RouteForRole(sess.Role)
	if err != nil {
		// unknown role is user-facing, not a failure
		resp.Message = fmt.Sprintf("no dashboard for role %q", sess.Role)
		zap.S().Warnw("login with unroutable role",
			"address", sess.Address,
			"role", sess.Role,
		)
	} else {
		resp.Redirect = redirect
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LogoutHandler revokes the bearer token. Logout never fails.
func (h Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := api.BearerToken(r)
	h.Sessions.Logout(token)
	api.RevokeToken(token, r)

	body := fmt.Sprintf(`{"revoked token": "%s"}`, token)
	w.Write([]byte(body))
}

type authorizeRequest struct {
	Path string `json:"path"`
}

type authorizeResponse struct {
	Decision session.Decision `json:"decision"`
	Redirect string           `json:"redirect,omitempty"`
}

// AuthorizeHandler answers whether the current session may view a page.
// Denied responses carry the login page so the client can bounce there.
func (h Auth) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	var req authorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode authorize request", http.StatusBadRequest, w, err)
		return
	}

	sess := h.Sessions.Get(api.BearerToken(r))
	decision := session.AuthorizeForPath(req.Path, sess)

	resp := authorizeResponse{Decision: decision}
	if decision == session.Denied {
		resp.Redirect = "/login.html"
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
