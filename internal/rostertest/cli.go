package rostertest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/teamforge/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the roster test tool.
func ShowHelp() {
	os.Stdout.WriteString(`TeamForge Roster Test Tool
==========================

An end-to-end tool for testing the TeamForge formation service with a
synthetic roster.

Usage:
  go run cmd/roster-test/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -participants int
        Number of participants to generate (default 60)
  -team-size int
        Target members per team (default 4)
  -role value
        Required role as tag:count, repeatable (e.g. -role backend:1 -role design:1)
  -seed int
        Random seed submitted with the job (default 0, service default)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll-timeout duration
        Give up waiting for the job after this long (default 2m)
  -output string
        Output file for the generated roster (default: generated_roster_TIMESTAMP.json)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/roster-test/main.go

  # Test with custom parameters
  go run cmd/roster-test/main.go -participants 200 -team-size 5 -url http://localhost:8080

  # Require one backend and one designer per team
  go run cmd/roster-test/main.go -role backend:1 -role design:1

  # Reproducible run with a fixed seed
  go run cmd/roster-test/main.go -seed 42 -verbose
`)
}
