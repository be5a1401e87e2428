package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/seed"
)

// MockData serves the seeded demo snapshots. Read-only; the snapshots are
// generated once at startup and stable for the process lifetime.
type MockData struct {
	Store *seed.Store
}

// UsersHandler returns the seeded user roster.
func (h MockData) UsersHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.Store.ListUsers()
	if err != nil {
		if errors.Is(err, seed.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "Users data not found"}`))
			return
		}
		config.ErrorStatus("failed to read users snapshot", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(users)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Debugw("served users snapshot", "count", len(users))
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CasesHandler returns the seeded case list.
func (h MockData) CasesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	cases, err := h.Store.ListCases()
	if err != nil {
		if errors.Is(err, seed.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "Cases data not found"}`))
			return
		}
		config.ErrorStatus("failed to read cases snapshot", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(cases)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	zap.S().Debugw("served cases snapshot", "count", len(cases))
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
