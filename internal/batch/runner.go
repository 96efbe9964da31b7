// Package batch processes a season of games offline: it reads play-by-play
// from a CSV export or the stats API, segments every game concurrently and
// writes possession and timeline CSVs.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/okian/possessions/internal/adapters/feed"
	"github.com/okian/possessions/internal/domain/game"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/pkg/logger"
	"github.com/okian/possessions/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Processor segments one game.
type Processor interface {
	Process(ctx context.Context, gameID string, events []model.Event) (*game.Result, error)
}

// Fetcher downloads the play-by-play of one game.
type Fetcher interface {
	PlayByPlay(ctx context.Context, gameID string) ([]model.Event, error)
}

// Runner runs batches. It is stateless between runs.
type Runner struct {
	processor Processor
	fetcher   Fetcher
	logger    logger.Logger
}

// NewRunner creates a runner. fetcher may be nil when every run reads an
// input file.
func NewRunner(processor Processor, fetcher Fetcher, opts ...Option) *Runner {
	r := &Runner{processor: processor, fetcher: fetcher}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("batch")
	}
	return r
}

// outcome is the result of one game, kept in input order.
type outcome struct {
	gameID string
	res    *game.Result
	err    error
}

// Run processes the configured games and writes the outputs. Failed games
// are skipped and logged. Results already computed are written even when
// the run stops early, in which case ErrTooManyFailures is returned.
func (r *Runner) Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Failures: make(map[string]int)}
	defer func() {
		stats.EndTime = time.Now()
		stats.Duration = stats.EndTime.Sub(stats.StartTime)
	}()

	games, err := r.loadGames(ctx, cfg)
	if err != nil {
		return stats, err
	}

	if cfg.Resume && cfg.PossessionsOut != "" {
		done, err := existingGames(cfg.PossessionsOut)
		if err != nil {
			return stats, err
		}
		kept := games[:0]
		for _, g := range games {
			if done[g.ID] {
				stats.Resumed++
				continue
			}
			kept = append(kept, g)
		}
		games = kept
	}
	stats.Games = len(games)

	r.logger.Info(ctx, "starting batch",
		logger.Int("games", len(games)),
		logger.Int("resumed", stats.Resumed),
		logger.Int("workers", workers(cfg)),
	)

	outcomes, runErr := r.process(ctx, cfg, games)

	var results []*game.Result
	for _, o := range outcomes {
		switch {
		case o.res != nil:
			stats.Processed++
			stats.Possessions += len(o.res.Possessions)
			stats.Unresolved += o.res.Unresolved()
			results = append(results, o.res)
		case o.err != nil:
			stats.Skipped++
			stats.Failures[game.FailureReason(o.err)]++
		}
	}
	stats.Aborted = errors.Is(runErr, ErrTooManyFailures)

	if err := writeOutputs(cfg, results); err != nil {
		return stats, err
	}

	r.logger.Info(ctx, "batch finished",
		logger.Int("processed", stats.Processed),
		logger.Int("skipped", stats.Skipped),
		logger.Int("possessions", stats.Possessions),
		logger.Bool("aborted", stats.Aborted),
	)
	return stats, runErr
}

func workers(cfg *Config) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}

// process runs every game on a bounded errgroup. Outcomes keep the input
// order; games never started are left zero.
func (r *Runner) process(ctx context.Context, cfg *Config, games []feed.Game) ([]outcome, error) {
	outcomes := make([]outcome, len(games))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(cfg))

	var (
		mu          sync.Mutex
		consecutive int
	)
	// record returns ErrTooManyFailures once the failure streak reaches
	// the limit. Streaks follow completion order.
	record := func(failed bool) error {
		mu.Lock()
		defer mu.Unlock()
		if !failed {
			consecutive = 0
			return nil
		}
		consecutive++
		if cfg.MaxFailures > 0 && consecutive >= cfg.MaxFailures {
			return fmt.Errorf("%w: %d in a row", ErrTooManyFailures, consecutive)
		}
		return nil
	}

	for i := range games {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			start := time.Now()
			gm := &games[i]
			res, err := r.processor.Process(gctx, gm.ID, gm.Events)
			if gctx.Err() != nil && errors.Is(err, context.Canceled) {
				// The run is stopping; the game is neither done nor failed.
				return nil
			}
			outcomes[i] = outcome{gameID: gm.ID, res: res, err: err}
			if err != nil {
				reason := game.FailureReason(err)
				metrics.RecordGameFailed(reason)
				r.logger.Warn(gctx, "game skipped",
					logger.String("game_id", gm.ID),
					logger.String("reason", reason),
					logger.Error(err))
				return record(true)
			}
			metrics.RecordGameProcessed(len(res.Possessions), res.Unresolved(), len(res.Unclassified),
				float64(time.Since(start).Milliseconds()))
			return record(false)
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return outcomes, err
}

// loadGames reads the input file or fetches the configured games.
func (r *Runner) loadGames(ctx context.Context, cfg *Config) ([]feed.Game, error) {
	if cfg.Input == "" {
		if len(cfg.GameIDs) == 0 {
			return nil, ErrNoInput
		}
		if r.fetcher == nil {
			return nil, ErrNoFetcher
		}
		return r.fetchGames(ctx, cfg.GameIDs)
	}

	f, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	games, err := feed.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cfg.Input, err)
	}
	if len(cfg.GameIDs) == 0 {
		return games, nil
	}

	wanted := make(map[string]bool, len(cfg.GameIDs))
	for _, id := range cfg.GameIDs {
		wanted[feed.NormalizeGameID(id)] = true
	}
	kept := games[:0]
	for _, g := range games {
		if wanted[g.ID] {
			kept = append(kept, g)
		}
	}
	return kept, nil
}

// fetchGames downloads games one after another; the stats API does not
// tolerate parallel scraping. Games that cannot be fetched are logged and
// left out.
func (r *Runner) fetchGames(ctx context.Context, ids []string) ([]feed.Game, error) {
	games := make([]feed.Game, 0, len(ids))
	for _, id := range ids {
		id = feed.NormalizeGameID(id)
		events, err := r.fetcher.PlayByPlay(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn(ctx, "play-by-play unavailable, skipping game",
				logger.String("game_id", id), logger.Error(err))
			continue
		}
		games = append(games, feed.Game{ID: id, Events: events})
	}
	return games, nil
}
