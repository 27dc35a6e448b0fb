// Package monitor folds probe results into per-target history: incident
// tracking, multi-resolution rollups and the check cycle that persists
// them.
package monitor

import "time"

// Policy bounds the per-target storage footprint.
type Policy struct {
	// IncidentCap is the maximum number of incidents kept per target.
	IncidentCap int
	// DetailedRetention is how long raw probe results are kept before
	// they are rolled into an hourly bucket.
	DetailedRetention time.Duration
	// HourlyRetention is how long hourly buckets are kept before they are
	// rolled into a daily bucket.
	HourlyRetention time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		IncidentCap:       50,
		DetailedRetention: 7 * 24 * time.Hour,
		HourlyRetention:   31 * 24 * time.Hour,
	}
}
