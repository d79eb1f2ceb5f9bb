package repository

import "errors"

// Sentinel kinds for job store errors.
var (
	ErrNotFound     = errors.New("job not found")
	ErrDuplicateJob = errors.New("duplicate job id")
	ErrInvalidLimit = errors.New("invalid listing limit")
)
