// Package game runs the possession pipeline for one game: lineup
// resolution, substitution tracking, segmentation, attribution and
// reconciliation.
package game

import (
	"context"
	"fmt"

	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/possession"
	"github.com/okian/possessions/internal/domain/roster"
	"github.com/okian/possessions/pkg/logger"
)

// Result is everything produced for a game that processed successfully.
type Result struct {
	GameID      string                   `json:"game_id"`
	Possessions []possession.Summary     `json:"possessions"`
	Timeline    []possession.TimelineRow `json:"timeline"`
	// Unclassified lists the sequence numbers of plays whose type falls
	// outside the known categories.
	Unclassified []int `json:"unclassified,omitempty"`
}

// Points returns the total points scored across all possessions.
func (r *Result) Points() int {
	total := 0
	for i := range r.Possessions {
		total += r.Possessions[i].Team1Points + r.Possessions[i].Team2Points
	}
	return total
}

// Unresolved returns the number of possessions with no resolved owner.
func (r *Result) Unresolved() int {
	n := 0
	for i := range r.Possessions {
		if !r.Possessions[i].OffenseResolved {
			n++
		}
	}
	return n
}

// Processor runs the pipeline. It holds no per-game state and is safe for
// concurrent use by one goroutine per game.
type Processor struct {
	source lineup.MinutesSource
	logger logger.Logger
}

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithLogger sets a custom logger for the processor.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a processor that resolves lineups from source.
func NewProcessor(source lineup.MinutesSource, opts ...Option) *Processor {
	p := &Processor{source: source}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process is NewProcessor(source).Process.
func Process(ctx context.Context, gameID string, events []model.Event, source lineup.MinutesSource) (*Result, error) {
	return NewProcessor(source).Process(ctx, gameID, events)
}

// Process segments one game's events, supplied in feed order. Events are
// renumbered by position; upstream sequence numbers are ignored. Lineup and
// integrity failures fail the whole game.
func (p *Processor) Process(ctx context.Context, gameID string, events []model.Event) (*Result, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: game %s", ErrNoEvents, gameID)
	}
	events = model.Sequence(gameID, events)

	var resolverOpts []lineup.Option
	if p.logger != nil {
		resolverOpts = append(resolverOpts, lineup.WithLogger(p.logger))
	}
	lineups, err := lineup.NewResolver(p.source, resolverOpts...).Resolve(ctx, gameID, events)
	if err != nil {
		return nil, err
	}

	plays, unclassified, err := annotate(ctx, gameID, events, lineups)
	if err != nil {
		return nil, err
	}

	summaries, membership := possession.SummarizeAll(gameID, plays)
	summaries = possession.Reconcile(summaries)
	res := &Result{
		GameID:       gameID,
		Possessions:  summaries,
		Timeline:     possession.BuildTimeline(plays, summaries, membership),
		Unclassified: unclassified,
	}

	if p.logger != nil {
		p.logger.Debug(ctx, "game processed",
			logger.String("game_id", gameID),
			logger.Int("events", len(events)),
			logger.Int("possessions", len(res.Possessions)),
			logger.Int("unresolved", res.Unresolved()),
			logger.Int("unclassified", len(unclassified)),
		)
	}
	return res, nil
}

// annotate drives the tracker over the feed and attaches the rosters and
// elapsed time to every event.
func annotate(ctx context.Context, gameID string, events []model.Event, lineups roster.PeriodLineups) ([]possession.Play, []int, error) {
	tracker := roster.NewTracker(gameID, lineups)
	plays := make([]possession.Play, 0, len(events))
	var unclassified []int

	for i := range events {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		e := &events[i]
		if err := tracker.Consume(e); err != nil {
			return nil, nil, err
		}
		play, err := possession.NewPlay(*e, tracker.Snapshot())
		if err != nil {
			return nil, nil, fmt.Errorf("game %s event %d: %w", gameID, e.Seq, err)
		}
		if play.Unresolved() {
			unclassified = append(unclassified, play.Seq)
		}
		plays = append(plays, play)
	}
	return plays, unclassified, nil
}
