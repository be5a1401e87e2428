package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lawchain/lawchain-api/api"
	"github.com/lawchain/lawchain-api/api/handlers"
	"github.com/lawchain/lawchain-api/chain"
	mocksdb "github.com/lawchain/lawchain-api/databases/mocks"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/session"
)

// caseFixture wires a case handler over mocked collections and logs in a
// user with the given role, returning the handler and a bearer token.
func caseFixture(t *testing.T, users *mocksdb.UserDatabase, cases *mocksdb.CaseDatabase, details models.UserDetails) (handlers.Case, string) {
	t.Helper()
	api.SetupGoGuardian()

	users.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{Details: details}, nil)

	reg := chain.NewRegistry(users, cases)
	sessions := session.NewManager(reg)
	_, token, err := sessions.Authenticate(context.Background(), details.Address)
	require.NoError(t, err)

	return handlers.Case{
		Bridge:   chain.NewBridge(reg),
		Sessions: sessions,
		Hub:      handlers.NewHub(),
	}, token
}

func TestCase_CreateCaseHandler(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}
	ior := &mocksdb.InsertOneResultHelper{}

	cases.On("NextCaseID", mock.Anything).Return(int64(7), nil)
	cases.On("InsertOne", mock.Anything, mock.MatchedBy(func(c models.Case) bool {
		return c.Details.CaseID == 7 && c.Details.Status == models.CaseStatusRegistered
	})).Return(ior, nil)

	h, token := caseFixture(t, users, cases, models.UserDetails{
		Address: "0xclient", Role: models.RoleClient, IsRegistered: true, IsApproved: true,
	})

	body := `{"title": "Doe v. Filebase", "description": "contract dispute", "caseType": "Civil"}`
	req := httptest.NewRequest("POST", "/api/v1/case", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"id": 7}`, rr.Body.String())
	cases.AssertExpectations(t)
}

func TestCase_CreateCaseHandlerUnapproved(t *testing.T) {
	h, token := caseFixture(t, &mocksdb.UserDatabase{}, &mocksdb.CaseDatabase{}, models.UserDetails{
		Address: "0xpending", Role: models.RoleLawyer, IsRegistered: true, IsApproved: false,
	})

	req := httptest.NewRequest("POST", "/api/v1/case", strings.NewReader(`{"title": "x"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCase_CreateCaseHandlerMissingTitle(t *testing.T) {
	h, token := caseFixture(t, &mocksdb.UserDatabase{}, &mocksdb.CaseDatabase{}, models.UserDetails{
		Address: "0xclient", Role: models.RoleClient, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("POST", "/api/v1/case", strings.NewReader(`{"description": "no title"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateCaseHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CaseByIDHandlerInvalidID(t *testing.T) {
	h, _ := caseFixture(t, &mocksdb.UserDatabase{}, &mocksdb.CaseDatabase{}, models.UserDetails{
		Address: "0xclient", Role: models.RoleClient, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("GET", "/api/v1/case/not-a-number", nil)
	req = mux.SetURLVars(req, map[string]string{"case_id": "not-a-number"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_CaseByIDHandlerNotFound(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}
	cases.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	h, _ := caseFixture(t, users, cases, models.UserDetails{
		Address: "0xclient", Role: models.RoleClient, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("GET", "/api/v1/case/99", nil)
	req = mux.SetURLVars(req, map[string]string{"case_id": "99"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CaseByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCase_CasesByPartyHandlerEmpty(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}
	cases.On("Find", mock.Anything, mock.Anything).Return([]models.Case{}, nil)

	h, _ := caseFixture(t, users, cases, models.UserDetails{
		Address: "0xclient", Role: models.RoleClient, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("GET", "/api/v1/cases/party/0xnobody", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "0xnobody"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CasesByPartyHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestCase_CasesByPartyHandlerPaginates(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}
	cases.On("Find", mock.Anything, mock.Anything, mock.Anything).Return([]models.Case{
		{Details: models.CaseDetails{CaseID: 3, Title: "Estate of Doe"}},
	}, nil)

	h, _ := caseFixture(t, users, cases, models.UserDetails{
		Address: "0xclient", Role: models.RoleClient, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("GET", "/api/v1/cases/party/0xclient?limit=1&page=2", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "0xclient"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CasesByPartyHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Estate of Doe")
	cases.AssertExpectations(t)
}

func TestCase_UpdateCaseStatusHandlerRequiresJudge(t *testing.T) {
	h, token := caseFixture(t, &mocksdb.UserDatabase{}, &mocksdb.CaseDatabase{}, models.UserDetails{
		Address: "0xlawyer", Role: models.RoleLawyer, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("PUT", "/api/v1/case/7/status", strings.NewReader(`{"status": "Closed"}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": "7"})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UpdateCaseStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCase_UpdateCaseStatusHandlerRejectsUnknownStatus(t *testing.T) {
	h, token := caseFixture(t, &mocksdb.UserDatabase{}, &mocksdb.CaseDatabase{}, models.UserDetails{
		Address: "0xjudge", Role: models.RoleJudge, IsRegistered: true, IsApproved: true,
	})

	req := httptest.NewRequest("PUT", "/api/v1/case/7/status", strings.NewReader(`{"status": "Vacated"}`))
	req = mux.SetURLVars(req, map[string]string{"case_id": "7"})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UpdateCaseStatusHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCase_UpdateCaseStatusHandlerAppendsHistory(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}
	cases.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1}, nil)

	h, token := caseFixture(t, users, cases, models.UserDetails{
		Address: "0xjudge", Role: models.RoleJudge, IsRegistered: true, IsApproved: true,
	})

	body := `{"status": "Scheduled", "nextHearing": "2026-09-15", "courtRoom": "Courtroom 2B"}`
	req := httptest.NewRequest("PUT", "/api/v1/case/7/status", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"case_id": "7"})
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UpdateCaseStatusHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	cases.AssertExpectations(t)
}
