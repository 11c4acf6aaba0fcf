package domain

import "time"

// CycleStats holds statistics about one poll/notify/purchase cycle.
type CycleStats struct {
	Fetched      int
	New          int
	Notified     int
	NotifyErrors int
	Sent         int64
	Abandoned    int64
	StarsSpent   int64
	Duration     time.Duration
}
