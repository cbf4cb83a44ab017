//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/StringTuner/pkg/models"
	"github.com/himanishpuri/StringTuner/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "stringtuner.sqlite3"
const errDBClientNil = "db client is nil"

// ErrNotFound is returned when a session ID has no row.
var ErrNotFound = errors.New("record not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

// TuningSession is the row for one analysis run.
type TuningSession struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	Source        string `gorm:"index:idx_session_source"`
	SampleRate    int
	FFTSize       int
	DurationMs    int
	Ticks         int
	DetectedTicks int
	InTuneTicks   int
	DominantNote  string `gorm:"index:idx_session_note"`
	CreatedAt     time.Time
}

// TuningReading is the row for one per-tick verdict.
type TuningReading struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	SessionID   string `gorm:"type:varchar(36);index:idx_reading_session"`
	Tick        int
	TimeMs      int
	Frequency   float64
	Note        string
	InTune      bool
	NeedsHigher bool
	Difference  float64
	Cents       float64
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("STRINGTUNER_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := utils.MakeDir(dir); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&TuningSession{}, &TuningReading{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveSession stores a session and its readings in one transaction and
// returns the new session ID.
func (c *DBClient) SaveSession(s models.Session, readings []models.Reading) (string, error) {
	if c == nil || c.DB == nil {
		return "", errors.New(errDBClientNil)
	}

	row := TuningSession{
		ID:            utils.GenerateUUID(),
		Source:        s.Source,
		SampleRate:    s.SampleRate,
		FFTSize:       s.FFTSize,
		DurationMs:    s.DurationMs,
		Ticks:         s.Ticks,
		DetectedTicks: s.DetectedTicks,
		InTuneTicks:   s.InTuneTicks,
		DominantNote:  s.DominantNote,
	}

	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("creating session: %w", err)
		}
		if len(readings) == 0 {
			return nil
		}
		rows := make([]TuningReading, len(readings))
		for i, r := range readings {
			rows[i] = TuningReading{
				SessionID:   row.ID,
				Tick:        r.Tick,
				TimeMs:      r.TimeMs,
				Frequency:   r.Frequency,
				Note:        r.Note,
				InTune:      r.InTune,
				NeedsHigher: r.NeedsHigher,
				Difference:  r.Difference,
				Cents:       r.Cents,
			}
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch insert readings: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

func (c *DBClient) GetSession(sessionID string) (*models.Session, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var row TuningSession
	if err := c.DB.Where("id = ?", sessionID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	s := toModel(row)
	return &s, nil
}

func (c *DBClient) ListSessions() ([]models.Session, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []TuningSession
	if err := c.DB.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	out := make([]models.Session, len(rows))
	for i, r := range rows {
		out[i] = toModel(r)
	}
	return out, nil
}

// GetReadings returns the readings of a session in tick order.
func (c *DBClient) GetReadings(sessionID string) ([]models.Reading, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}
	var rows []TuningReading
	if err := c.DB.Where("session_id = ?", sessionID).Order("tick asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	out := make([]models.Reading, len(rows))
	for i, r := range rows {
		out[i] = models.Reading{
			Tick:        r.Tick,
			TimeMs:      r.TimeMs,
			Frequency:   r.Frequency,
			Note:        r.Note,
			InTune:      r.InTune,
			NeedsHigher: r.NeedsHigher,
			Difference:  r.Difference,
			Cents:       r.Cents,
		}
	}
	return out, nil
}

// DeleteSession removes a session and its readings. Unknown IDs return ErrNotFound.
func (c *DBClient) DeleteSession(sessionID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&TuningReading{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", sessionID).Delete(&TuningSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil
	})
}

func toModel(r TuningSession) models.Session {
	return models.Session{
		ID:            r.ID,
		Source:        r.Source,
		SampleRate:    r.SampleRate,
		FFTSize:       r.FFTSize,
		DurationMs:    r.DurationMs,
		Ticks:         r.Ticks,
		DetectedTicks: r.DetectedTicks,
		InTuneTicks:   r.InTuneTicks,
		DominantNote:  r.DominantNote,
		CreatedAt:     r.CreatedAt,
	}
}
