package handlers_test

import (
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

	"github.com/lawchain/lawchain-api/api/handlers"
	"github.com/lawchain/lawchain-api/chain"
	mocksdb "github.com/lawchain/lawchain-api/databases/mocks"
	"github.com/lawchain/lawchain-api/models"
)

func TestIdentity_RegisterHandlerCreatesClient(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}
	ior := &mocksdb.InsertOneResultHelper{}

	users.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	users.On("InsertOne", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Details.Address == "0xabc" && u.Details.Role == models.RoleClient
	})).Return(ior, nil)

	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(users, cases))}

	body := `{"address": "0xabc", "name": "Jane Doe", "email": "jane@example.com", "role": "client"}`
	req := httptest.NewRequest("POST", "/api/v1/identity/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, `{"success": true}`, rr.Body.String())
	users.AssertExpectations(t)
}

func TestIdentity_RegisterHandlerAlreadyRegistered(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}

	users.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)

	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(users, cases))}

	body := `{"address": "0xabc", "name": "Jane Doe", "role": "lawyer", "barId": "BAR001"}`
	req := httptest.NewRequest("POST", "/api/v1/identity/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestIdentity_RegisterHandlerDuplicateBarID(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	cases := &mocksdb.CaseDatabase{}

	// address is free, bar id is taken
	users.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil).Once()
	users.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(users, cases))}

	body := `{"address": "0xdef", "name": "John Doe", "role": "lawyer", "barId": "BAR001"}`
	req := httptest.NewRequest("POST", "/api/v1/identity/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestIdentity_RegisterHandlerMissingAddress(t *testing.T) {
	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(&mocksdb.UserDatabase{}, &mocksdb.CaseDatabase{}))}

	req := httptest.NewRequest("POST", "/api/v1/identity/register", strings.NewReader(`{"name": "Jane"}`))
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIdentity_RegisterHandlerUnknownRole(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	users.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)

	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(users, &mocksdb.CaseDatabase{}))}

	body := `{"address": "0xabc", "name": "Jane Doe", "role": "bailiff"}`
	req := httptest.NewRequest("POST", "/api/v1/identity/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.RegisterHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIdentity_IdentityHandlerUnknownAddressIsZeroResult(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	users.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(users, &mocksdb.CaseDatabase{}))}

	req := httptest.NewRequest("GET", "/api/v1/identity/0xmissing", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "0xmissing"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.IdentityHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Address      string `json:"address"`
		Role         string `json:"role"`
		IsRegistered bool   `json:"isRegistered"`
		IsApproved   bool   `json:"isApproved"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "0xmissing", resp.Address)
	assert.False(t, resp.IsRegistered)
	assert.False(t, resp.IsApproved)
	assert.Empty(t, resp.Role)
}

func TestIdentity_IdentityHandlerKnownAddress(t *testing.T) {
	users := &mocksdb.UserDatabase{}
	users.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{Details: models.UserDetails{
		Address:      "0xabc",
		Role:         models.RoleJudge,
		IsRegistered: true,
		IsApproved:   true,
	}}, nil)

	h := handlers.Identity{Bridge: chain.NewBridge(chain.NewRegistry(users, &mocksdb.CaseDatabase{}))}

	req := httptest.NewRequest("GET", "/api/v1/identity/0xabc", nil)
	req = mux.SetURLVars(req, map[string]string{"address": "0xabc"})
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.IdentityHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Role         string `json:"role"`
		IsRegistered bool   `json:"isRegistered"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleJudge, resp.Role)
	assert.True(t, resp.IsRegistered)
}
