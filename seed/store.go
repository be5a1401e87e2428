package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lawchain/lawchain-api/models"
)

// ErrNotFound is returned when a snapshot does not exist on disk.
var ErrNotFound = errors.New("snapshot not found")

const (
	usersFile = "users.json"
	casesFile = "data/cases.json"
)

// Store is the file-backed mock data store. Snapshots are written once at
// first seeding and read-only afterwards, so concurrent reads need no
// coordination; the mutex only guards the one-time seeding.
type Store struct {
	dir string

	mu sync.Mutex
}

// NewStore creates a store rooted at the frontend directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// EnsureSeeded generates the users and cases snapshots when absent.
// Idempotent: existing snapshots are never overwritten, so a second call
// leaves byte-identical files behind.
func (s *Store) EnsureSeeded() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usersPath := filepath.Join(s.dir, usersFile)
	casesPath := filepath.Join(s.dir, casesFile)

	usersExist := fileExists(usersPath)
	casesExist := fileExists(casesPath)
	if usersExist && casesExist {
		return nil
	}

	g := newGenerator(time.Now().UnixNano())
	roster := g.users()

	if !usersExist {
		if err := writeJSON(usersPath, roster); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		zap.S().Infow("seeded users snapshot",
			"path", usersPath,
			"count", len(roster),
		)
	}
	if !casesExist {
		cases := g.cases(roster)
		if err := writeJSON(casesPath, cases); err != nil {
			return fmt.Errorf("seed cases: %w", err)
		}
		zap.S().Infow("seeded cases snapshot",
			"path", casesPath,
			"count", len(cases),
		)
	}
	return nil
}

// ListUsers returns the seeded roster. ErrNotFound when no snapshot exists;
// listing never seeds implicitly.
func (s *Store) ListUsers() ([]models.SeededUser, error) {
	var roster []models.SeededUser
	if err := readJSON(filepath.Join(s.dir, usersFile), &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// ListCases returns the seeded cases under the same contract as ListUsers.
func (s *Store) ListCases() ([]models.CaseDetails, error) {
	var cases []models.CaseDetails
	if err := readJSON(filepath.Join(s.dir, casesFile), &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func writeJSON(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(b, v)
}
