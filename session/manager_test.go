package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/databases/mocks"
	"github.com/lawchain/lawchain-api/models"
	"github.com/lawchain/lawchain-api/session"
)

func registryWithUser(t *testing.T, details *models.UserDetails, findErr error) chain.Registry {
	t.Helper()
	users := &mocks.UserDatabase{}
	cases := &mocks.CaseDatabase{}

	if findErr != nil {
		users.On("FindOne", mock.Anything, mock.Anything).Return(nil, findErr)
	} else {
		users.On("FindOne", mock.Anything, mock.Anything).Return(&models.User{Details: *details}, nil)
	}
	return chain.NewRegistry(users, cases)
}

func TestManager_AuthenticateNoAddress(t *testing.T) {
	m := session.NewManager(registryWithUser(t, nil, mongo.ErrNoDocuments))

	_, _, err := m.Authenticate(context.Background(), "")

	assert.ErrorIs(t, err, session.ErrNotConnected)
}

func TestManager_AuthenticateUnregistered(t *testing.T) {
	m := session.NewManager(registryWithUser(t, nil, mongo.ErrNoDocuments))

	_, _, err := m.Authenticate(context.Background(), "0xmissing")

	assert.ErrorIs(t, err, session.ErrUnregistered)
}

func TestManager_AuthenticateLookupFailure(t *testing.T) {
	m := session.NewManager(registryWithUser(t, nil, errors.New("mocked-error")))

	_, _, err := m.Authenticate(context.Background(), "0xabc")

	assert.ErrorIs(t, err, session.ErrLookup)
}

func TestManager_AuthenticateIssuesSession(t *testing.T) {
	details := &models.UserDetails{
		Address:      "0xabc",
		Role:         models.RoleLawyer,
		IsRegistered: true,
		IsApproved:   true,
	}
	m := session.NewManager(registryWithUser(t, details, nil))

	sess, token, err := m.Authenticate(context.Background(), "0xabc")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "0xabc", sess.Address)
	assert.Equal(t, models.RoleLawyer, sess.Role)
	assert.Equal(t, models.SessionApproved, sess.State)

	// token resolves back to the same session until logout
	assert.Equal(t, sess, m.Get(token))

	m.Logout(token)
	assert.Nil(t, m.Get(token))

	// logout of an already-revoked token never fails
	m.Logout(token)
}

func TestManager_AuthenticatePendingApproval(t *testing.T) {
	details := &models.UserDetails{
		Address:      "0xdef",
		Role:         models.RoleJudge,
		IsRegistered: true,
		IsApproved:   false,
	}
	m := session.NewManager(registryWithUser(t, details, nil))

	sess, _, err := m.Authenticate(context.Background(), "0xdef")

	assert.NoError(t, err)
	assert.Equal(t, models.SessionPending, sess.State)
	assert.False(t, sess.IsApproved)
}

func TestManager_AuthenticateBasic(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	details := &models.UserDetails{
		Address:      "0xabc",
		Email:        "jane@example.com",
		Role:         models.RoleClient,
		IsRegistered: true,
		IsApproved:   true,
		PasswordHash: string(hash),
	}
	m := session.NewManager(registryWithUser(t, details, nil))

	sess, token, err := m.AuthenticateBasic(context.Background(), "jane@example.com", "hunter2")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleClient, sess.Role)

	_, _, err = m.AuthenticateBasic(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}
