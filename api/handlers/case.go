package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/config"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/session"
)

// Case exported for testing purposes
type Case struct {
	Bridge   *chain.Bridge
	Sessions *session.Manager
	Hub      *Hub
}

var validStatuses = map[string]bool{
	models.CaseStatusRegistered: true,
	models.CaseStatusInProgress: true,
	models.CaseStatusScheduled:  true,
	models.CaseStatusPostponed:  true,
	models.CaseStatusClosed:     true,
}

// CreateCaseHandler submits a new case and returns the assigned id.
func (h Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.Get(api.BearerToken(r))
	if sess == nil || !sess.IsApproved {
		config.ErrorStatus("account not approved", http.StatusForbidden, w, errors.New("approval required"))
		return
	}

	var draft models.CaseDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		config.ErrorStatus("failed to decode case draft", http.StatusBadRequest, w, err)
		return
	}
	if draft.Title == "" {
		config.ErrorStatus("case title is required", http.StatusBadRequest, w, errors.New("title required"))
		return
	}
	if draft.Client == "" {
		draft.Client = sess.Address
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	caseID, err := h.Bridge.SubmitCase(ctx, draft)
	if err != nil {
		config.ErrorStatus("failed to submit case", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("case submitted",
		"caseId", caseID,
		"client", draft.Client,
		"by", sess.Address,
	)
	h.Hub.Broadcast(CaseEvent{
		Type:   EventCaseSubmitted,
		CaseID: caseID,
		Action: "Case Registered",
		By:     sess.Address,
	})

	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(fmt.Sprintf(`{"id": %d}`, caseID)))
}

// CaseByIDHandler returns a case by its sequential id.
func (h Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	caseID, err := strconv.ParseInt(mux.Vars(r)["case_id"], 10, 64)
	if err != nil {
		config.ErrorStatus("invalid case id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	details, err := h.Bridge.Registry().CaseByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, chain.ErrCaseNotFound) {
			config.ErrorStatus("case not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get case by id", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(details)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CasesByPartyHandler returns every case an address participates in, as
// client, lawyer or judge.
func (h Case) CasesByPartyHandler(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := h.Bridge.Registry().CasesByParty(ctx, address, limit, page)
	if err != nil {
		config.ErrorStatus("failed to get cases by party", http.StatusInternalServerError, w, err)
		return
	}
	if len(cases) == 0 {
		cases = []models.CaseDetails{}
	}

	b, err := json.Marshal(cases)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type statusUpdateRequest struct {
	Status      string `json:"status"`
	NextHearing string `json:"nextHearing"`
	CourtRoom   string `json:"courtRoom"`
}

// UpdateCaseStatusHandler changes a case status. Judges only; the change is
// appended to the case history, never rewritten.
func (h Case) UpdateCaseStatusHandler(w http.ResponseWriter, r *http.Request) {
	sess := h.Sessions.Get(api.BearerToken(r))
	if sess == nil || sess.Role != models.RoleJudge || !sess.IsApproved {
		config.ErrorStatus("judge role required", http.StatusForbidden, w, errors.New("denied"))
		return
	}

	caseID, err := strconv.ParseInt(mux.Vars(r)["case_id"], 10, 64)
	if err != nil {
		config.ErrorStatus("invalid case id", http.StatusBadRequest, w, err)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode status update", http.StatusBadRequest, w, err)
		return
	}
	if !validStatuses[req.Status] {
		config.ErrorStatus("invalid case status", http.StatusBadRequest, w, fmt.Errorf("unknown status %q", req.Status))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	err = h.Bridge.UpdateStatus(ctx, caseID, req.Status, sess.Address, req.NextHearing, req.CourtRoom)
	if err != nil {
		if errors.Is(err, chain.ErrCaseNotFound) {
			config.ErrorStatus("case not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to update case status", http.StatusInternalServerError, w, err)
		return
	}

	h.Hub.Broadcast(CaseEvent{
		Type:   EventStatusChanged,
		CaseID: caseID,
		Action: "Status Changed: " + req.Status,
		By:     sess.Address,
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
