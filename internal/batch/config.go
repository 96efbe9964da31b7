package batch

import "time"

// Config holds configuration for a batch run.
type Config struct {
	Input          string   // Play-by-play CSV; empty fetches GameIDs from the stats API
	GameIDs        []string // Games to process; empty processes every game in Input
	PossessionsOut string   // Possessions CSV, appended to when it exists
	TimelineOut    string   // Timeline CSV; empty skips the timeline
	Workers        int      // Games processed concurrently
	MaxFailures    int      // Consecutive failed games that stop the run; 0 never stops
	Resume         bool     // Skip games already present in PossessionsOut
}

// Stats holds batch statistics.
type Stats struct {
	Games       int
	Processed   int
	Skipped     int
	Resumed     int
	Possessions int
	Unresolved  int
	Failures    map[string]int // by failure reason
	Aborted     bool
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
