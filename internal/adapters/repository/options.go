package repository

import "time"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithRetention bounds how many jobs the store keeps before evicting the
// oldest records.
func WithRetention(n int) Option {
	return func(s *MemStore) {
		if n > 0 {
			s.retention = n
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
