//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/himanishpuri/StringTuner/pkg/logger"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	port           int
	dbPath         string
	tempDir        string
	tolerance      float64
	allowedOrigins string
	jsonLogs       bool
	logLevel       string
)

func init() {
	defaults := stringtuner.DefaultConfig()
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("STRINGTUNER_DB_PATH", defaults.DBPath), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("STRINGTUNER_TEMP_DIR", defaults.TempDir), "Temporary directory")
	flag.Float64Var(&tolerance, "tolerance", defaults.Tolerance, "In-tune tolerance in Hz")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&jsonLogs, "json-logs", false, "Write structured JSON logs with zap")
	flag.StringVar(&logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(raw string) []string {
	if raw == "*" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// newLogger returns the house logger, or a zap SugaredLogger when JSON logs
// are requested. The second value flushes buffered entries.
func newLogger(json bool, level string) (stringtuner.Logger, func(), error) {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if !json {
		l := logger.GetLogger().Named("server")
		l.SetLevel(lvl)
		return l, func() {}, nil
	}

	zl, err := zapcore.ParseLevel(strings.ToLower(lvl.String()))
	if err != nil {
		return nil, nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zl)
	z, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("building zap logger: %w", err)
	}
	sugar := z.Named("stringtuner").Sugar()
	return sugar, func() { _ = z.Sync() }, nil
}

func main() {
	flag.Parse()

	log, flush, err := newLogger(jsonLogs, logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging setup: %v\n", err)
		os.Exit(2)
	}
	defer flush()

	service, err := stringtuner.NewService(
		stringtuner.WithDBPath(dbPath),
		stringtuner.WithTempDir(tempDir),
		stringtuner.WithTolerance(tolerance),
		stringtuner.WithLogger(log),
	)
	if err != nil {
		log.Errorf("Failed to create service: %v", err)
		os.Exit(1)
	}
	defer service.Close()

	config := &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		Tolerance:      tolerance,
		AllowedOrigins: parseOrigins(allowedOrigins),
		JSONLogs:       jsonLogs,
	}

	server := NewServer(service, config, log)
	if err := server.Start(); err != nil {
		log.Errorf("Server failed: %v", err)
		service.Close()
		flush()
		os.Exit(1)
	}
}
