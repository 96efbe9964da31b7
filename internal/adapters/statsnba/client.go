// Package statsnba is a client for the stats.nba.com endpoints the
// pipeline needs: box score minutes inside a clock range and the raw
// play-by-play of a game.
package statsnba

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/okian/possessions/internal/adapters/feed"
	"github.com/okian/possessions/internal/domain/lineup"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/pkg/logger"
	"github.com/okian/possessions/pkg/metrics"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://stats.nba.com/stats"
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	maxBodyBytes      = 32 << 20

	// The API measures clock ranges in tenths of a second.
	rangeUnit = 100 * time.Millisecond
)

// headers the API expects from a browser; requests without them hang.
var defaultHeaders = map[string]string{
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"Connection":         "keep-alive",
	"Referer":            "https://stats.nba.com/",
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_14_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/79.0.3945.130 Safari/537.36",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

// Client queries the stats API. It is safe for concurrent use; requests
// are paced by a shared limiter.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint
	newBackOff func() backoff.BackOff
	limiter    *rate.Limiter
	logger     logger.Logger
}

var _ lineup.MinutesSource = (*Client)(nil)

// NewClient constructs a client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("statsnba")
	}
	return c
}

// MinutesInRange implements lineup.MinutesSource with the traditional box
// score restricted to a clock range. Players listed without minutes in the
// range are left out.
func (c *Client) MinutesInRange(ctx context.Context, gameID string, start, end time.Duration) ([]lineup.PlayerMinutes, error) {
	q := url.Values{}
	q.Set("GameID", gameID)
	q.Set("StartPeriod", "0")
	q.Set("EndPeriod", "14")
	q.Set("StartRange", strconv.FormatInt(int64(start/rangeUnit), 10))
	q.Set("EndRange", strconv.FormatInt(int64(end/rangeUnit), 10))
	q.Set("RangeType", "2")

	began := time.Now()
	body, err := c.get(ctx, "boxscoretraditionalv2", q)
	if err != nil {
		return nil, err
	}
	metrics.RecordLineupFetch(float64(time.Since(began).Milliseconds()))

	set, err := resultSet(body, "PlayerStats")
	if err != nil {
		metrics.RecordLineupFetchError("decode")
		return nil, err
	}
	playerCol, ok1 := set.index["PLAYER_ID"]
	teamCol, ok2 := set.index["TEAM_ID"]
	if !ok1 || !ok2 {
		metrics.RecordLineupFetchError("decode")
		return nil, fmt.Errorf("%w: PlayerStats lacks PLAYER_ID or TEAM_ID", ErrDecode)
	}
	minCol, hasMin := set.index["MIN"]

	out := make([]lineup.PlayerMinutes, 0, len(set.rows))
	for _, row := range set.rows {
		cells := row.Array()
		if hasMin && minCol < len(cells) && !playedMinutes(cells[minCol]) {
			continue
		}
		if playerCol >= len(cells) || teamCol >= len(cells) {
			continue
		}
		out = append(out, lineup.PlayerMinutes{
			PlayerID: cells[playerCol].Int(),
			TeamID:   cells[teamCol].Int(),
		})
	}
	return out, nil
}

// playedMinutes reports whether a MIN cell shows court time. The API
// returns null or "0:00" for players who sat out the range.
func playedMinutes(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.Number:
		return v.Float() > 0
	}
	s := v.String()
	return s != "" && s != "0:00" && s != "0"
}

// PlayByPlay fetches the raw events of a game in feed order.
func (c *Client) PlayByPlay(ctx context.Context, gameID string) ([]model.Event, error) {
	q := url.Values{}
	q.Set("GameID", gameID)
	q.Set("StartPeriod", "0")
	q.Set("EndPeriod", "14")

	body, err := c.get(ctx, "playbyplayv2", q)
	if err != nil {
		return nil, err
	}
	set, err := resultSet(body, "PlayByPlay")
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(set.rows))
	for i, row := range set.rows {
		cells := row.Array()
		e, err := feed.EventFromRow(func(col string) string {
			j, ok := set.index[col]
			if !ok || j >= len(cells) {
				return ""
			}
			return cells[j].String()
		})
		if err != nil {
			return nil, fmt.Errorf("game %s row %d: %w", gameID, i, err)
		}
		events = append(events, e)
	}
	return model.Sequence(gameID, events), nil
}

// get performs one paced, retried GET and returns the body.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	target := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())
	attempt := 0

	operation := func() ([]byte, error) {
		attempt++
		if attempt > 1 {
			metrics.RecordLineupFetchRetry()
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.fetch(ctx, target)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxRetries+1),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.logger.Warn(ctx, "stats request failed, retrying",
				logger.String("endpoint", endpoint),
				logger.Int("attempt", attempt),
				logger.Duration("wait", wait),
				logger.Error(err))
		}),
	)
	if err != nil {
		metrics.RecordLineupFetchError(errorKind(err))
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(statusErr)
		}
		return nil, statusErr
	}
	if !gjson.ValidBytes(body) {
		return nil, backoff.Permanent(fmt.Errorf("%w: invalid JSON", ErrDecode))
	}
	return body, nil
}

type table struct {
	index map[string]int
	rows  []gjson.Result
}

// resultSet finds a named result set, falling back to the first one.
func resultSet(body []byte, name string) (table, error) {
	sets := gjson.GetBytes(body, "resultSets")
	if !sets.IsArray() {
		return table{}, fmt.Errorf("%w: no resultSets", ErrDecode)
	}
	set := sets.Get(fmt.Sprintf("#(name==%q)", name))
	if !set.Exists() {
		set = sets.Get("0")
	}
	if !set.Exists() {
		return table{}, fmt.Errorf("%w: empty resultSets", ErrDecode)
	}

	t := table{index: make(map[string]int)}
	for i, h := range set.Get("headers").Array() {
		t.index[h.String()] = i
	}
	t.rows = set.Get("rowSet").Array()
	return t, nil
}

func errorKind(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return "status"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "transport"
}
