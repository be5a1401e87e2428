package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawchain/lawchain-api/chain"
	"github.com/lawchain/lawchain-api/models"
)

// Session failure taxonomy.
var (
	// ErrNotConnected is returned when no wallet address accompanies the login.
	ErrNotConnected = errors.New("no wallet address connected")

	// ErrUnregistered is returned when the address or email has no registered identity.
	ErrUnregistered = errors.New("identity not registered")

	// ErrInvalidCredentials is returned on a failed password comparison.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrLookup wraps registry failures during authentication.
	ErrLookup = errors.New("identity lookup failed")

	// ErrUnknownRole is returned for roles with no dashboard route. Non-fatal,
	// surfaced as a user-facing message rather than an HTTP failure.
	ErrUnknownRole = errors.New("unknown role")
)

const tokenTTL = 24 * time.Hour

// Manager issues and revokes sessions. Sessions are explicit objects held
// in the token cache with a defined lifecycle, created at login and
// destroyed at logout, never ambient global state.
type Manager struct {
	reg    chain.Registry
	tokens store.Cache
}

// NewManager creates a session manager backed by a FIFO token cache.
func NewManager(reg chain.Registry) *Manager {
	return &Manager{
		reg:    reg,
		tokens: store.NewFIFO(context.Background(), tokenTTL),
	}
}

// Authenticate resolves the wallet address against the registry and issues
// a bearer token for the resulting session.
func (m *Manager) Authenticate(ctx context.Context, address string) (*models.Session, string, error) {
	if address == "" {
		return nil, "", ErrNotConnected
	}

	details, err := m.reg.Identity(ctx, address)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrLookup, err)
	}
	if details == nil {
		return nil, "", ErrUnregistered
	}

	return m.issue(details)
}

// AuthenticateBasic is the demo credential path carried over from the
// original login form: email + password instead of a connected wallet.
func (m *Manager) AuthenticateBasic(ctx context.Context, email, password string) (*models.Session, string, error) {
	details, err := m.reg.IdentityByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrLookup, err)
	}
	if details == nil {
		return nil, "", ErrUnregistered
	}
	if err := bcrypt.CompareHashAndPassword([]byte(details.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	return m.issue(details)
}

func (m *Manager) issue(details *models.UserDetails) (*models.Session, string, error) {
	state := models.SessionPending
	if details.IsApproved {
		state = models.SessionApproved
	}
	sess := &models.Session{
		Address:    details.Address,
		Role:       details.Role,
		IsApproved: details.IsApproved,
		State:      state,
		CreatedAt:  time.Now().UTC(),
	}

	token := uuid.New().String()
	if err := m.tokens.Store(token, sess, nil); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrLookup, err)
	}

	zap.S().Debugw("session issued",
		"address", sess.Address,
		"role", sess.Role,
		"state", sess.State,
	)
	return sess, token, nil
}

// Get returns the session for a token, nil when the token is unknown or
// expired.
func (m *Manager) Get(token string) *models.Session {
	v, ok, err := m.tokens.Load(token, nil)
	if err != nil || !ok {
		return nil
	}
	sess, ok := v.(*models.Session)
	if !ok {
		return nil
	}
	return sess
}

// Logout revokes a token unconditionally. Revoking an unknown token is a
// no-op, logout never fails.
func (m *Manager) Logout(token string) {
	_ = m.tokens.Delete(token, nil)
}
