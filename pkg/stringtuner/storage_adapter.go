//go:build !js && !wasm
// +build !js,!wasm

package stringtuner

import (
	"errors"
	"fmt"

	"github.com/himanishpuri/StringTuner/pkg/models"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner/storage"
)

// storageAdapter adapts storage.DBClient to the Storage interface and maps
// its not-found error onto ErrSessionNotFound.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStorage opens (or creates) the SQLite history database at dbPath.
func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveSession(session models.Session, readings []models.Reading) (string, error) {
	return s.db.SaveSession(session, readings)
}

func (s *storageAdapter) GetSession(sessionID string) (*models.Session, error) {
	session, err := s.db.GetSession(sessionID)
	return session, mapNotFound(err)
}

func (s *storageAdapter) GetReadings(sessionID string) ([]models.Reading, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return nil, err
	}
	return s.db.GetReadings(sessionID)
}

func (s *storageAdapter) ListSessions() ([]models.Session, error) {
	return s.db.ListSessions()
}

func (s *storageAdapter) DeleteSession(sessionID string) error {
	return mapNotFound(s.db.DeleteSession(sessionID))
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}

func mapNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return err
}
