// Package store persists client state across process restarts. Two
// independent namespaced keys are kept, one for the authenticated
// session and one for the course catalog; records are JSON-encoded and
// carry no expiry.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/wencuts/masterclass/internal/models"
)

const (
	authKey    = "auth-storage"
	catalogKey = "course-storage"
)

// AuthState is the persisted subset of the session: identity and
// derived flags only. Exchange tokens and transient error state are
// never persisted.
type AuthState struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
	IsAdmin         bool         `json:"isAdmin"`
}

// CatalogState is the persisted subset of the course catalog
type CatalogState struct {
	Courses         []models.Course `json:"courses"`
	EnrolledCourses []models.Course `json:"enrolledCourses"`
	CurrentCourse   *models.Course  `json:"currentCourse"`
	CurrentLessons  []models.Lesson `json:"currentLessons"`
}

// State is a badger-backed client-state store
type State struct {
	db *badger.DB
}

// Open opens (or creates) the state database at the given path
func Open(path string) (*State, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return &State{db: db}, nil
}

// Close closes the underlying database
func (s *State) Close() error { return s.db.Close() }

// SaveAuth overwrites the persisted session state
func (s *State) SaveAuth(st *AuthState) error {
	return s.put(authKey, st)
}

// LoadAuth returns the persisted session state, or nil when none has
// been saved yet.
func (s *State) LoadAuth() (*AuthState, error) {
	var st AuthState
	ok, err := s.get(authKey, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

// SaveCatalog overwrites the persisted catalog state
func (s *State) SaveCatalog(st *CatalogState) error {
	return s.put(catalogKey, st)
}

// LoadCatalog returns the persisted catalog state, or nil when none
// has been saved yet.
func (s *State) LoadCatalog() (*CatalogState, error) {
	var st CatalogState
	ok, err := s.get(catalogKey, &st)
	if err != nil || !ok {
		return nil, err
	}
	return &st, nil
}

func (s *State) put(key string, value any) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), buf)
	})
}

func (s *State) get(key string, out any) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return true, nil
}
