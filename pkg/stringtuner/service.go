//go:build !js && !wasm
// +build !js,!wasm

package stringtuner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/himanishpuri/StringTuner/pkg/logger"
	"github.com/himanishpuri/StringTuner/pkg/models"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner/audio"
)

// tunerService is the default implementation of the Service interface.
type tunerService struct {
	storage Storage
	log     Logger
	config  *Config
}

func NewService(opts ...Option) (Service, error) {
	cfg := NewConfig(opts...)

	// Set default logger if none provided
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	// Static settings that do not depend on the source rate fail here, not
	// on the first file.
	if err := cfg.Validate(audio.DefaultSampleRate); err != nil {
		return nil, err
	}

	var stor Storage
	var err error
	switch {
	case cfg.Storage != nil:
		stor = cfg.Storage
	case !cfg.DisableHistory:
		stor, err = NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	return &tunerService{
		storage: stor,
		log:     cfg.Logger,
		config:  cfg,
	}, nil
}

// AnalyzeFile plays an audio file through a fresh session tick by tick and
// stores the resulting report. Non-WAV input is converted with ffmpeg first.
func (s *tunerService) AnalyzeFile(ctx context.Context, audioPath string) (*Report, error) {
	s.log.Infof("Analyzing audio: %s", audioPath)

	wavPath := audioPath
	if !audio.IsWAV(audioPath) {
		if info, err := audio.Probe(ctx, audioPath); err != nil {
			s.log.Warnf("ffprobe failed for %s: %v", audioPath, err)
		} else {
			s.log.Debugf("Source %s: %s/%s %d Hz, %d ch, %.2fs",
				info.Filename, info.Format, info.Codec, info.SampleRate, info.Channels, info.DurationSec)
		}

		converted, err := audio.ConvertToMonoWAV(ctx, audioPath, s.config.TempDir, audio.ConvertWAVConfig{
			SampleRate: audio.DefaultSampleRate,
		})
		if err != nil {
			return nil, fmt.Errorf("audio conversion failed: %w", err)
		}
		defer os.Remove(converted)
		wavPath = converted
	}

	samples, sampleRate, err := audio.ReadWavAsFloat64(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV file: %w", err)
	}

	return s.AnalyzeSamples(ctx, filepath.Base(audioPath), samples, sampleRate)
}

// AnalyzeSamples runs already decoded mono samples through a session.
func (s *tunerService) AnalyzeSamples(ctx context.Context, source string, samples []float64, sampleRate int) (*Report, error) {
	if len(samples) == 0 {
		return nil, ErrNoAudio
	}

	sess, err := NewSessionFromConfig(float64(sampleRate), s.config)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	if err := sess.Load(samples, sampleRate); err != nil {
		return nil, err
	}
	if err := sess.Play(); err != nil {
		return nil, err
	}

	readings := make([]Reading, 0, int(float64(len(samples))/float64(sampleRate)*s.config.TickRate)+1)
	stored := make([]models.Reading, 0, cap(readings))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, ok, err := sess.Tick()
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", len(readings), err)
		}
		if !ok {
			break
		}
		stored = append(stored, toStoredReading(len(readings), int(sess.Position().Milliseconds()), r))
		readings = append(readings, r)
	}

	report := summarize(readings, s.config.Notes)
	report.Source = source
	report.SampleRate = sampleRate
	report.FFTSize = s.config.FFTSize
	report.DurationMs = int(float64(len(samples)) * 1000 / float64(sampleRate))
	s.log.Infof("Analyzed %d ticks, %d with signal, dominant note %q",
		report.Ticks, report.DetectedTicks, report.DominantNote)

	if s.storage != nil {
		id, err := s.storage.SaveSession(models.Session{
			Source:        report.Source,
			SampleRate:    report.SampleRate,
			FFTSize:       report.FFTSize,
			DurationMs:    report.DurationMs,
			Ticks:         report.Ticks,
			DetectedTicks: report.DetectedTicks,
			InTuneTicks:   report.InTuneTicks,
			DominantNote:  report.DominantNote,
		}, stored)
		if err != nil {
			return nil, fmt.Errorf("failed to store session: %w", err)
		}
		report.SessionID = id
		s.log.Infof("Stored session ID=%s", id)
	}

	return report, nil
}

// AnalyzeSpectrum classifies one spectrum delivered by an external capture
// provider, such as a browser AnalyserNode.
func (s *tunerService) AnalyzeSpectrum(spectrum []uint8, sampleRate float64, fftSize int) (Reading, error) {
	cfg := *s.config
	cfg.FFTSize = fftSize
	engine, err := NewEngineWithConfig(sampleRate, &cfg)
	if err != nil {
		return Reading{}, err
	}
	return engine.Process(spectrum)
}

func (s *tunerService) ListSessions() ([]models.Session, error) {
	if s.storage == nil {
		return []models.Session{}, nil
	}
	return s.storage.ListSessions()
}

func (s *tunerService) GetSession(sessionID string) (*models.Session, error) {
	if s.storage == nil {
		return nil, ErrSessionNotFound
	}
	return s.storage.GetSession(sessionID)
}

func (s *tunerService) GetReadings(sessionID string) ([]models.Reading, error) {
	if s.storage == nil {
		return nil, ErrSessionNotFound
	}
	return s.storage.GetReadings(sessionID)
}

func (s *tunerService) DeleteSession(sessionID string) error {
	if s.storage == nil {
		return ErrSessionNotFound
	}
	return s.storage.DeleteSession(sessionID)
}

// Close releases all resources held by the service.
func (s *tunerService) Close() error {
	if s.storage == nil {
		return nil
	}
	return s.storage.Close()
}

// summarize counts per-tick verdicts. The dominant note is the most frequent
// one over detected ticks; ties go to the earlier table entry.
func summarize(readings []Reading, notes []ReferenceNote) *Report {
	report := &Report{Ticks: len(readings), Readings: readings}

	counts := make(map[string]int, len(notes))
	for _, r := range readings {
		if !r.Detected {
			continue
		}
		report.DetectedTicks++
		if r.Tuning.InTune {
			report.InTuneTicks++
		}
		counts[r.Tuning.Note]++
	}

	best := 0
	report.NoteCounts = make([]NoteCount, 0, len(notes))
	for _, n := range notes {
		c := counts[n.Name]
		if c == 0 {
			continue
		}
		report.NoteCounts = append(report.NoteCounts, NoteCount{Note: n.Name, Count: c})
		if c > best {
			best = c
			report.DominantNote = n.Name
		}
	}

	if len(readings) > 0 {
		report.Last = readings[len(readings)-1]
	}
	return report
}

func toStoredReading(tick, timeMs int, r Reading) models.Reading {
	return models.Reading{
		Tick:        tick,
		TimeMs:      timeMs,
		Frequency:   r.Frequency,
		Note:        r.Tuning.Note,
		InTune:      r.Tuning.InTune,
		NeedsHigher: r.Tuning.NeedsHigher,
		Difference:  r.Tuning.Difference,
		Cents:       r.Tuning.Cents,
	}
}
