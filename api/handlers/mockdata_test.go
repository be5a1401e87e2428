package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawchain/lawchain-api/api/handlers"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/seed"
)

func TestMockData_UsersHandlerBeforeSeeding(t *testing.T) {
	h := handlers.MockData{Store: seed.NewStore(t.TempDir())}

	req := httptest.NewRequest("GET", "/api/users", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UsersHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"error": "Users data not found"}`, rr.Body.String())
}

func TestMockData_CasesHandlerBeforeSeeding(t *testing.T) {
	h := handlers.MockData{Store: seed.NewStore(t.TempDir())}

	req := httptest.NewRequest("GET", "/api/cases", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CasesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"error": "Cases data not found"}`, rr.Body.String())
}

func TestMockData_HandlersAfterSeeding(t *testing.T) {
	store := seed.NewStore(t.TempDir())
	require.NoError(t, store.EnsureSeeded())
	h := handlers.MockData{Store: store}

	req := httptest.NewRequest("GET", "/api/users", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UsersHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var users []models.SeededUser
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	assert.Len(t, users, seed.GeneratedJudges+2+seed.LawyerCount+seed.ClientCount)

	req = httptest.NewRequest("GET", "/api/cases", nil)
	rr = httptest.NewRecorder()
	http.HandlerFunc(h.CasesHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var cases []models.CaseDetails
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &cases))
	assert.Len(t, cases, seed.CaseCount)
}
