// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Default configuration constants.
const (
	defaultQueueSize     = 1024
	defaultDedupeSize    = 50_000
	defaultJobRetention  = 1000
	defaultMaxListLimit  = 100
	defaultSeed          = 42
	defaultIterationCap  = 10_000
	defaultLeaderCut     = 5.0
	defaultSignalShare   = 0.7
	defaultExpShare      = 0.3
	defaultScoreExponent = 3.0
	defaultBalanceW      = 1.0
	defaultRoleGapW      = 10.0
	defaultLeadershipW   = 4.0
	defaultSizeDriftW    = 8.0
	defaultInitialTemp   = 1.0
	defaultCoolingFactor = 0.995
	defaultStopTemp      = 1e-4
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory formation job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of formation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the request-id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// JobRetention bounds how many finished jobs the store keeps.
	JobRetention int `koanf:"job_retention"`

	// MaxListLimit caps GET /formations?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// Cost-term weights for the partition objective.
	BalanceWeight    float64 `koanf:"balance_weight"`
	RoleGapWeight    float64 `koanf:"role_gap_weight"`
	LeadershipWeight float64 `koanf:"leadership_weight"`
	SizeDriftWeight  float64 `koanf:"size_drift_weight"`

	// Leader policy: aptitude = signal*LeaderSignalWeight + experience*LeaderExperienceWeight.
	LeaderThreshold        float64 `koanf:"leader_threshold"`
	LeaderSignalWeight     float64 `koanf:"leader_signal_weight"`
	LeaderExperienceWeight float64 `koanf:"leader_experience_weight"`

	// ScoreExponent shapes composite-score normalization in team summaries.
	ScoreExponent float64 `koanf:"score_exponent"`

	// Cooling schedule for the annealing search.
	InitialTemp   float64 `koanf:"initial_temp"`
	CoolingFactor float64 `koanf:"cooling_factor"`
	StopTemp      float64 `koanf:"stop_temp"`
	CoolEvery     int     `koanf:"cool_every"`
	MaxIterations int     `koanf:"max_iterations"`

	// Seed is the default random seed for jobs that do not supply one.
	Seed int64 `koanf:"seed"`
}

// New creates a Config with documented defaults. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9080",
		JobQueueSize:           defaultQueueSize,
		WorkerCount:            runtime.NumCPU(),
		DedupeSize:             defaultDedupeSize,
		JobRetention:           defaultJobRetention,
		MaxListLimit:           defaultMaxListLimit,
		BalanceWeight:          defaultBalanceW,
		RoleGapWeight:          defaultRoleGapW,
		LeadershipWeight:       defaultLeadershipW,
		SizeDriftWeight:        defaultSizeDriftW,
		LeaderThreshold:        defaultLeaderCut,
		LeaderSignalWeight:     defaultSignalShare,
		LeaderExperienceWeight: defaultExpShare,
		ScoreExponent:          defaultScoreExponent,
		InitialTemp:            defaultInitialTemp,
		CoolingFactor:          defaultCoolingFactor,
		StopTemp:               defaultStopTemp,
		CoolEvery:              1,
		MaxIterations:          defaultIterationCap,
		Seed:                   defaultSeed,
	}
}
