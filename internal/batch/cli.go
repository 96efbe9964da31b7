package batch

import (
	"context"
	"os"
	"strings"

	"github.com/okian/possessions/pkg/logger"
)

// ParseGameIDs splits a comma separated list of game ids, dropping blanks.
func ParseGameIDs(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DisplayStats logs the final batch statistics.
func DisplayStats(ctx context.Context, l logger.Logger, stats *Stats) {
	var gamesPerSecond float64
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.Processed) / stats.Duration.Seconds()
	}

	l.Info(ctx, "final statistics",
		logger.Int("games", stats.Games),
		logger.Int("processed", stats.Processed),
		logger.Int("skipped", stats.Skipped),
		logger.Int("resumed", stats.Resumed),
		logger.Int("possessions", stats.Possessions),
		logger.Int("unresolved", stats.Unresolved),
		logger.Any("failures", stats.Failures),
		logger.Bool("aborted", stats.Aborted),
		logger.Duration("duration", stats.Duration),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}

// ShowHelp prints usage information for the batch tool.
func ShowHelp() {
	os.Stdout.WriteString(`Possession Batch Tool
=====================

Segments a season of play-by-play into possessions with the lineup on the
floor for both teams, and writes possession and timeline CSVs.

Usage:
  go run ./cmd/pbp-batch [options]

Options:
  -input string
        Play-by-play CSV export (columns of the stats API play-by-play endpoint).
        Without it, -games are downloaded from the stats API.
  -games string
        Comma separated game ids to process (default: every game in -input)
  -possessions string
        Possessions CSV to append to (default "possessions.csv")
  -timeline string
        Timeline CSV to append to; empty skips the timeline
  -workers int
        Number of games processed concurrently (default CPU cores)
  -max-failures int
        Stop after this many consecutive failed games, 0 never stops (default 5)
  -resume
        Skip games already present in the possessions CSV
  -help
        Show this help message

Environment:
  PBP_CONFIG names an optional YAML configuration file; PBP_* variables
  override it, e.g. PBP_STATS_BASE_URL, PBP_STATS_MAX_RETRIES,
  PBP_STATS_REQUEST_DELAY_MS and PBP_LOG_LEVEL.

Examples:
  # Process a season export
  go run ./cmd/pbp-batch -input pbp_2019.csv -timeline timeline_2019.csv

  # Continue an interrupted run
  go run ./cmd/pbp-batch -input pbp_2019.csv -resume

  # Download and process two games
  go run ./cmd/pbp-batch -games 0021900001,0021900002
`)
}
