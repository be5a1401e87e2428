package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/models"
)

// Identity exported for testing purposes
type Identity struct {
	Bridge *chain.Bridge
}

type registerRequest struct {
	Address    string `json:"address"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	BarID      string `json:"barId"`
	JudicialID string `json:"judicialId"`
	Password   string `json:"password"`
}

type identityResponse struct {
	Address      string `json:"address"`
	Role         string `json:"role"`
	IsRegistered bool   `json:"isRegistered"`
	IsApproved   bool   `json:"isApproved"`
}

// RegisterHandler registers a client, lawyer or judge identity.
func (h Identity) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode register request", http.StatusBadRequest, w, err)
		return
	}
	if req.Address == "" {
		config.ErrorStatus("no wallet connected", http.StatusBadRequest, w, errors.New("address required"))
		return
	}
	if req.Name == "" {
		config.ErrorStatus("name is required", http.StatusBadRequest, w, errors.New("name required"))
		return
	}

	role := strings.ToLower(strings.TrimSpace(req.Role))
	idNumber := req.BarID
	if role == models.RoleJudge {
		idNumber = req.JudicialID
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
			return
		}
		passwordHash = string(hash)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id := chain.Identity{
		Address:      req.Address,
		Name:         req.Name,
		Email:        req.Email,
		IDNumber:     idNumber,
		PasswordHash: passwordHash,
	}
	if err := h.Bridge.RegisterIdentity(ctx, role, id); err != nil {
		switch {
		case errors.Is(err, chain.ErrAlreadyRegistered):
			config.ErrorStatus("address already registered", http.StatusConflict, w, err)
		case errors.Is(err, chain.ErrDuplicateID):
			config.ErrorStatus("id number already in use", http.StatusConflict, w, err)
		case errors.Is(err, chain.ErrChain):
			config.ErrorStatus("failed to register identity", http.StatusInternalServerError, w, err)
		default:
			config.ErrorStatus("invalid role", http.StatusBadRequest, w, err)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(`{"success": true}`))
}

// IdentityHandler returns the role and registration flags for an address.
// Unknown addresses are a normal zero result, not an error.
func (h Identity) IdentityHandler(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reg := h.Bridge.Registry()
	details, err := reg.Identity(ctx, address)
	if err != nil {
		config.ErrorStatus("failed to look up identity", http.StatusInternalServerError, w, err)
		return
	}

	resp := identityResponse{Address: address}
	if details != nil {
		resp.Role = details.Role
		resp.IsRegistered = details.IsRegistered
		resp.IsApproved = details.IsApproved
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
