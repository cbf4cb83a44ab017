package stringtuner

import (
	"context"

	"github.com/himanishpuri/StringTuner/pkg/models"
)

type Service interface {
	AnalyzeFile(ctx context.Context, audioPath string) (*Report, error)
	AnalyzeSamples(ctx context.Context, source string, samples []float64, sampleRate int) (*Report, error)
	AnalyzeSpectrum(spectrum []uint8, sampleRate float64, fftSize int) (Reading, error)
	ListSessions() ([]models.Session, error)
	GetSession(sessionID string) (*models.Session, error)
	GetReadings(sessionID string) ([]models.Reading, error)
	DeleteSession(sessionID string) error
	Close() error
}

type Storage interface {
	SaveSession(session models.Session, readings []models.Reading) (string, error)
	GetSession(sessionID string) (*models.Session, error)
	GetReadings(sessionID string) ([]models.Reading, error)
	ListSessions() ([]models.Session, error)
	DeleteSession(sessionID string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
