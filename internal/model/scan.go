package model

import "time"

// ScanSummary describes one pass over the universe.
type ScanSummary struct {
	RunID     string
	Trigger   TriggerType
	StartedAt time.Time
	Duration  time.Duration

	Total     int
	Evaluated int
	Skipped   int
	Failed    int

	// Alerted lists symbols whose alert was delivered, in universe order.
	Alerted []string
	// Suppressed counts alerts already sent for the same bar date.
	Suppressed int
	// Undelivered counts alerts whose notification failed.
	Undelivered int
}
