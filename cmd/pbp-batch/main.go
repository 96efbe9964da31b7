package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/okian/possessions/internal/adapters/statsnba"
	"github.com/okian/possessions/internal/batch"
	"github.com/okian/possessions/internal/config"
	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/pkg/logger"
)

func main() {
	var (
		input          = flag.String("input", "", "Play-by-play CSV export (default: download -games from the stats API)")
		games          = flag.String("games", "", "Comma separated game ids (default: every game in -input)")
		possessionsOut = flag.String("possessions", "possessions.csv", "Possessions CSV to append to")
		timelineOut    = flag.String("timeline", "", "Timeline CSV to append to; empty skips the timeline")
		workers        = flag.Int("workers", runtime.NumCPU(), "Number of games processed concurrently")
		maxFailures    = flag.Int("max-failures", -1, "Consecutive failed games that stop the run, 0 never stops (default from config, 5)")
		resume         = flag.Bool("resume", false, "Skip games already present in the possessions CSV")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		batch.ShowHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	log := logger.Get().Named("pbp-batch")

	if *maxFailures < 0 {
		*maxFailures = cfg.BatchMaxFailures
	}

	client := statsnba.NewClient(
		statsnba.WithBaseURL(cfg.StatsBaseURL),
		statsnba.WithTimeout(cfg.StatsTimeout()),
		statsnba.WithMaxRetries(cfg.StatsMaxRetries),
		statsnba.WithRequestDelay(cfg.StatsRequestDelay()),
	)
	runner := batch.NewRunner(game.NewProcessor(client), client)

	stats, err := runner.Run(ctx, &batch.Config{
		Input:          *input,
		GameIDs:        batch.ParseGameIDs(*games),
		PossessionsOut: *possessionsOut,
		TimelineOut:    *timelineOut,
		Workers:        *workers,
		MaxFailures:    *maxFailures,
		Resume:         *resume,
	})
	batch.DisplayStats(ctx, log, stats)
	if err != nil {
		log.Error(ctx, "batch failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}
