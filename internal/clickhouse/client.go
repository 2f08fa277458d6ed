// Package clickhouse mirrors the pick log into ClickHouse and reads back the
// average draft position of each player across every recorded draft.
package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sony/gobreaker"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/logger"
	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

// ErrUnavailable is returned while the circuit breaker is open
var ErrUnavailable = errors.New("analytics unavailable")

// Analytics is the pick sink and ADP source used by the draft service
type Analytics interface {
	RecordPick(ctx context.Context, rec models.PickRecord) error
	AverageDraftPositions(ctx context.Context, minDrafts int) (map[string]float64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Client provides ClickHouse integration for draft analytics
type Client struct {
	conn driver.Conn
	cb   *gobreaker.CircuitBreaker
}

// Options configures the connection
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
	// consecutive failures before the breaker opens
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

const schema = `
	CREATE TABLE IF NOT EXISTS draft_picks (
		session_id String,
		pick_number UInt32,
		round UInt16,
		team_id String,
		player_id String,
		player_name String,
		position LowCardinality(String),
		category LowCardinality(String),
		automated UInt8,
		skipped UInt8,
		reason String,
		ts DateTime64(3)
	) ENGINE = MergeTree
	ORDER BY (session_id, pick_number)
`

// NewClient creates a new ClickHouse client and ensures the pick table exists
func NewClient(opts Options) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create draft_picks: %w", err)
	}

	return &Client{conn: conn, cb: newBreaker("clickhouse", opts.FailureThreshold, opts.OpenTimeout)}, nil
}

func newBreaker(name string, failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	if failures == 0 {
		failures = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	st := gobreaker.Settings{Name: name, Timeout: timeout}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.ConsecutiveFailures >= failures }
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
	}
	return gobreaker.NewCircuitBreaker(st)
}

func (c *Client) execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return out, err
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// RecordPick appends one pick record
func (c *Client) RecordPick(ctx context.Context, rec models.PickRecord) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.conn.Exec(ctx, `
			INSERT INTO draft_picks (session_id, pick_number, round, team_id, player_id, player_name,
				position, category, automated, skipped, reason, ts)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.SessionID, uint32(rec.PickNumber), uint16(rec.Round), rec.TeamID, rec.PlayerID, rec.PlayerName,
			string(rec.Position), string(rec.Category), boolToUInt8(rec.Automated), boolToUInt8(rec.Skipped),
			rec.Reason, time.UnixMilli(rec.TS))
	})
	return err
}

// AverageDraftPositions returns the mean overall pick number per player id,
// counting only players drafted in at least minDrafts sessions
func (c *Client) AverageDraftPositions(ctx context.Context, minDrafts int) (map[string]float64, error) {
	if minDrafts < 1 {
		minDrafts = 1
	}
	out, err := c.execute(func() (interface{}, error) {
		rows, err := c.conn.Query(ctx, `
			SELECT player_id, avg(pick_number) AS adp
			FROM draft_picks
			WHERE skipped = 0 AND player_id != ''
			GROUP BY player_id
			HAVING uniqExact(session_id) >= ?
		`, uint64(minDrafts))
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		adp := make(map[string]float64)
		for rows.Next() {
			var id string
			var v float64
			if err := rows.Scan(&id, &v); err != nil {
				return nil, err
			}
			adp[id] = v
		}
		return adp, rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out.(map[string]float64), nil
}

// Ping checks the server through the breaker
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(func() (interface{}, error) {
		return nil, c.conn.Ping(ctx)
	})
	return err
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
