package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/possessions/internal/adapters/feed"
	"github.com/okian/possessions/internal/domain/game"
)

const outputFilePermission = 0o644

// existingGames returns the game ids already present in a possessions
// CSV. A missing file has none.
func existingGames(path string) (map[string]bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	done := make(map[string]bool)
	for first := true; ; first = false {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return done, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if first || len(record) == 0 {
			continue
		}
		done[feed.NormalizeGameID(record[0])] = true
	}
}

// appendFile opens path for appending and reports whether it was empty,
// i.e. whether a header must be written.
func appendFile(path string) (*os.File, bool, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, outputFilePermission)
	if err != nil {
		return nil, false, fmt.Errorf("opening %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	return f, info.Size() == 0, nil
}

// writeOutputs appends every result to the configured outputs in order.
func writeOutputs(cfg *Config, results []*game.Result) error {
	if cfg.PossessionsOut != "" {
		f, header, err := appendFile(cfg.PossessionsOut)
		if err != nil {
			return err
		}
		for i, res := range results {
			if err := feed.WritePossessionsCSV(f, res.Possessions, header && i == 0); err != nil {
				_ = f.Close()
				return fmt.Errorf("writing possessions: %w", err)
			}
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", cfg.PossessionsOut, err)
		}
	}

	if cfg.TimelineOut != "" {
		f, header, err := appendFile(cfg.TimelineOut)
		if err != nil {
			return err
		}
		for i, res := range results {
			if err := feed.WriteTimelineCSV(f, res.Timeline, header && i == 0); err != nil {
				_ = f.Close()
				return fmt.Errorf("writing timeline: %w", err)
			}
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", cfg.TimelineOut, err)
		}
	}
	return nil
}
