package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/teamforge/internal/rostertest"
)

// Default configuration constants.
const (
	defaultParticipants = 60
	defaultTeamSize     = 4
	defaultTimeout      = 30 * time.Second
	defaultTestTimeout  = 10 * time.Minute
)

// roleFlags collects repeated -role tag:count arguments.
type roleFlags map[string]int

func (r roleFlags) String() string {
	parts := make([]string, 0, len(r))
	for tag, count := range r {
		parts = append(parts, fmt.Sprintf("%s:%d", tag, count))
	}
	return strings.Join(parts, ",")
}

func (r roleFlags) Set(value string) error {
	tag, countStr, found := strings.Cut(value, ":")
	if !found || tag == "" {
		return fmt.Errorf("role must be tag:count, got %q", value)
	}
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 1 {
		return fmt.Errorf("role count must be a positive integer, got %q", countStr)
	}
	r[tag] = count
	return nil
}

func main() {
	roles := roleFlags{}
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		participants = flag.Int("participants", defaultParticipants, "Number of participants to generate")
		teamSize     = flag.Int("team-size", defaultTeamSize, "Target members per team")
		seed         = flag.Int64("seed", 0, "Random seed submitted with the job (0 uses the service default)")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollTimeout  = flag.Duration("poll-timeout", rostertest.DefaultPollTimeout, "Give up waiting for the job after this long")
		outputFile   = flag.String("output", "", "Output file for the generated roster (default: generated_roster_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Var(roles, "role", "Required role as tag:count, repeatable")
	flag.Parse()

	if *help {
		rostertest.ShowHelp()
		return
	}

	// Setup logging
	if err := rostertest.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &rostertest.Config{
		BaseURL:         *baseURL,
		NumParticipants: *participants,
		TeamSize:        *teamSize,
		RequiredRoles:   roles,
		Seed:            *seed,
		Timeout:         *timeout,
		PollInterval:    rostertest.DefaultPollInterval,
		PollTimeout:     *pollTimeout,
		OutputFile:      *outputFile,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	// Run the test
	if err := rostertest.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
