// Package adhoc runs caller-supplied query text against the shared store. Only
// read-only statements are executed, each under a time budget and a row ceiling.
package adhoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/database"
)

// State is the position of a query in the gateway lifecycle.
type State int

const (
	StateReceived State = iota
	StateValidated
	StateExecuted
	StateReturned
	StateRejected
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateValidated:
		return "validated"
	case StateExecuted:
		return "executed"
	case StateReturned:
		return "returned"
	case StateRejected:
		return "rejected"
	case StateFaulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of one ad-hoc query. Table is set only in StateReturned.
type Result struct {
	State   State
	Table   *database.Table
	Elapsed time.Duration
}

// ConnProvider hands out the shared store connection.
type ConnProvider interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
}

// Gateway executes ad-hoc queries.
type Gateway struct {
	store  ConnProvider
	limits config.QueryLimits
}

// New creates a gateway. Invalid limits fall back to the defaults.
func New(store ConnProvider, limits config.QueryLimits) *Gateway {
	if limits.Validate() != nil {
		limits = config.DefaultQueryLimits()
	}
	return &Gateway{store: store, limits: limits}
}

// Limits returns the bounds applied to each query.
func (g *Gateway) Limits() config.QueryLimits {
	return g.limits
}

// Run classifies and executes text. The returned Result is never nil and reports the
// final state; the error is nil only when the state is StateReturned.
func (g *Gateway) Run(ctx context.Context, text string) (*Result, error) {
	res := &Result{State: StateReceived}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	stmt, err := Classify(text)
	if err != nil {
		res.State = StateRejected
		log.Warn().Err(err).Msg("Ad-hoc query rejected")
		return res, err
	}
	res.State = StateValidated

	table, err := g.execute(ctx, stmt)
	res.State = StateExecuted
	if err != nil {
		res.State = StateFaulted
		log.Warn().Err(err).Str("keyword", stmt.Keyword).Msg("Ad-hoc query failed")
		return res, err
	}

	res.State = StateReturned
	res.Table = table
	log.Info().Str("keyword", stmt.Keyword).Int("rows", table.Len()).Msg("Ad-hoc query returned")
	return res, nil
}

func (g *Gateway) execute(parent context.Context, stmt Statement) (*database.Table, error) {
	ctx, cancel := context.WithTimeout(parent, g.limits.Timeout)
	defer cancel()

	conn, err := g.store.Acquire(ctx)
	if err != nil {
		return nil, g.classifyFailure(parent, ctx, err)
	}
	defer conn.Close()

	// query_only makes the store itself refuse writes on this connection.
	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, g.classifyFailure(parent, ctx, err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "PRAGMA query_only = OFF"); err != nil {
			log.Error().Err(err).Msg("Failed to restore write access on shared connection")
		}
	}()

	rows, err := conn.QueryContext(ctx, stmt.Text)
	if err != nil {
		return nil, g.classifyFailure(parent, ctx, err)
	}
	defer rows.Close()

	table, exceeded, err := database.ScanTable(rows, g.limits.MaxRows)
	if err != nil {
		return nil, g.classifyFailure(parent, ctx, err)
	}
	if exceeded {
		return nil, fmt.Errorf("%w: result has more than %d rows", ErrResourceLimitExceeded, g.limits.MaxRows)
	}
	return table, nil
}

// classifyFailure maps an execution error to a timeout, a caller cancellation, an
// unavailable store, or a sanitised QueryError.
func (g *Gateway) classifyFailure(parent, ctx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("ad-hoc query cancelled: %w", parent.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || isInterrupt(err) {
		return fmt.Errorf("%w: query exceeded %s", ErrResourceLimitExceeded, g.limits.Timeout)
	}
	if errors.Is(err, database.ErrStoreUnavailable) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", database.ErrStoreUnavailable, sanitize(err))
	}
	return &QueryError{Message: sanitize(err)}
}

func isInterrupt(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_INTERRUPT
}
