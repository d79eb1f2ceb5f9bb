package rostertest

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Polling configuration constants.
const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultPollTimeout  = 2 * time.Minute
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
)
