//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/himanishpuri/StringTuner/internal/display"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner/audio"
	"github.com/himanishpuri/StringTuner/pkg/utils"
)

// maxUploadBytes bounds multipart uploads to /api/analyze.
const maxUploadBytes = 50 << 20

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service stringtuner.Service
	config  *ServerConfig
	log     stringtuner.Logger
	router  *chi.Mux
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	Tolerance      float64
	AllowedOrigins []string
	JSONLogs       bool
}

// NewServer creates a new server instance
func NewServer(service stringtuner.Service, config *ServerConfig, log stringtuner.Logger) *Server {
	s := &Server{
		service: service,
		config:  config,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stringtuner.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, stringtuner.ErrInvalidConfiguration),
		errors.Is(err, stringtuner.ErrContractViolation),
		errors.Is(err, stringtuner.ErrNoAudio),
		errors.Is(err, audio.ErrInvalidWAV),
		errors.Is(err, audio.ErrUnsupportedWAV),
		errors.Is(err, audio.ErrUnsupportedChans):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "StringTuner API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"notes":         "GET /api/notes",
			"classify":      "GET /api/classify?frequency={hz}",
			"spectrum":      "POST /api/spectrum",
			"analyze":       "POST /api/analyze",
			"tone":          "GET /api/tones/{note}",
			"sessions":      "GET /api/sessions",
			"getSession":    "GET /api/sessions/{id}",
			"deleteSession": "DELETE /api/sessions/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleNotes handles GET /api/notes
func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, NotesResponse{
		Notes:     stringtuner.StandardTuning,
		Tolerance: s.config.Tolerance,
	})
}

// handleClassify handles GET /api/classify?frequency=
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	freq, err := parseFrequency(r.URL.Query().Get("frequency"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "frequency must be a positive number")
		return
	}

	res := stringtuner.Classify(freq, stringtuner.StandardTuning, s.config.Tolerance)
	s.respondJSON(w, http.StatusOK, ClassifyResponse{
		Frequency: freq,
		Tuning:    res,
		Verdict:   display.Verdict(res),
		Nearest:   stringtuner.NearestNotes(freq, stringtuner.StandardTuning, 3),
	})
}

// parseFrequency accepts finite positive Hz values only; NaN and Inf parse
// without error but cannot be encoded as JSON.
func parseFrequency(raw string) (float64, error) {
	freq, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(freq) || math.IsInf(freq, 0) || freq <= 0 {
		return 0, fmt.Errorf("frequency %q is not a positive finite number", raw)
	}
	return freq, nil
}

// handleSpectrum handles POST /api/spectrum. Browser clients run their own
// AnalyserNode and post one byte frame per tick.
func (s *Server) handleSpectrum(w http.ResponseWriter, r *http.Request) {
	var req SpectrumRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	spectrum, err := req.Validate()
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	reading, err := s.service.AnalyzeSpectrum(spectrum, req.SampleRate, req.FFTSize)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	if reading.Peaks == nil {
		reading.Peaks = []stringtuner.Peak{}
	}

	resp := ReadingResponse{Reading: reading, Display: display.Lines(true, reading)}
	if reading.Detected {
		resp.Verdict = display.Verdict(reading.Tuning)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleAnalyze handles POST /api/analyze with a multipart "audio" file.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "upload.wav"
	}
	// a per-request directory keeps the client's file name as the session source
	dir := filepath.Join(s.config.TempDir, "upload_"+utils.GenerateUUID())
	if err := utils.MakeDir(dir); err != nil {
		s.log.Errorf("Failed to create temp dir: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer os.RemoveAll(dir)

	tempFile := filepath.Join(dir, name)
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Errorf("Failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.log.Errorf("Failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to save uploaded file")
		return
	}
	out.Close()

	s.log.Infof("Analyzing upload %s", name)
	rep, err := s.service.AnalyzeFile(ctx, tempFile)
	if err != nil {
		s.log.Errorf("Analysis failed: %v", err)
		s.respondError(w, statusFor(err), fmt.Sprintf("Analysis failed: %v", err))
		return
	}
	s.respondJSON(w, http.StatusOK, rep)
}

// handleTone handles GET /api/tones/{note}: the preset reference tone as WAV.
func (s *Server) handleTone(w http.ResponseWriter, r *http.Request) {
	note, ok := stringtuner.LookupNote(chi.URLParam(r, "note"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "unknown note")
		return
	}

	samples, err := stringtuner.ReferenceTone(note, stringtuner.ToneSampleRate, stringtuner.ToneSeconds)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// the WAV encoder seeks back to patch chunk sizes, so it needs a file
	f, err := os.CreateTemp(s.config.TempDir, "tone-*.wav")
	if err != nil {
		s.log.Errorf("Failed to create tone file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to render tone")
		return
	}
	defer utils.DeleteFile(f.Name())
	defer f.Close()

	if err := audio.EncodeWav(f, samples, stringtuner.ToneSampleRate); err != nil {
		s.log.Errorf("Failed to encode tone: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to render tone")
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Failed to render tone")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeContent(w, r, note.ToneFile, time.Time{}, f)
}

// handleListSessions handles GET /api/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions()
	if err != nil {
		s.log.Errorf("Failed to list sessions: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}

	dtos := make([]SessionDTO, len(sessions))
	for i, sess := range sessions {
		dtos[i] = toSessionDTO(sess)
	}
	s.respondJSON(w, http.StatusOK, ListSessionsResponse{Sessions: dtos, Count: len(dtos)})
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	sess, err := s.service.GetSession(id)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	readings, err := s.service.GetReadings(id)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	out := make([]ReadingDTO, len(readings))
	for i, rd := range readings {
		out[i] = ReadingDTO{
			Tick:        rd.Tick,
			TimeMs:      rd.TimeMs,
			Frequency:   rd.Frequency,
			Note:        rd.Note,
			InTune:      rd.InTune,
			NeedsHigher: rd.NeedsHigher,
			Difference:  rd.Difference,
			Cents:       rd.Cents,
		}
	}
	s.respondJSON(w, http.StatusOK, SessionDetailResponse{Session: toSessionDTO(*sess), Readings: out})
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := s.service.DeleteSession(id); err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.log.Infof("Deleted session ID=%s", id)
	s.respondJSON(w, http.StatusOK, DeleteSessionResponse{Message: "Session deleted successfully", ID: id})
}
