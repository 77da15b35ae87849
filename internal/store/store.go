// Package store persists the stock ledger, its reference data and the
// supporting account tables.
//
// The ledger tables (stock_movements, transfers, assignments) are append-only:
// the package exposes no update or delete for them.
package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/stockledger/internal/apperr"
	"github.com/erazemk/stockledger/internal/db"
)

// Store is the explicitly constructed persistence handle shared by all
// ledger components.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to timestamp new rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store backed by database.
func New(database *db.DB, opts ...Option) *Store {
	s := &Store{db: database, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// timestamp returns the current time truncated to the stored precision.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMicros(t time.Time) int64 {
	return t.UTC().UnixMicro()
}

// ceilMicros converts t to stored microseconds, rounding any sub-microsecond
// remainder up so that a lower bound never admits an earlier row.
func ceilMicros(t time.Time) int64 {
	us := t.UTC().UnixMicro()
	if t.Nanosecond()%int(time.Microsecond) != 0 {
		us++
	}
	return us
}

func fromMicros(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}

// Range is a time window with inclusive bounds. A zero bound is unbounded.
type Range struct {
	From time.Time
	To   time.Time
}

// validate rejects windows whose end precedes their start.
func (r Range) validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return apperr.Validation("end date is before start date")
	}
	return nil
}

// bounds returns the window as stored microseconds, with open ends mapped to
// the extremes of int64.
func (r Range) bounds() (from, to int64) {
	from, to = math.MinInt64, math.MaxInt64
	if !r.From.IsZero() {
		from = ceilMicros(r.From)
	}
	if !r.To.IsZero() {
		to = toMicros(r.To)
	}
	return from, to
}

// conditions accumulates optional AND clauses for list queries.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, args ...any) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) addRange(column string, r Range) {
	if !r.From.IsZero() {
		c.add(column+" >= ?", ceilMicros(r.From))
	}
	if !r.To.IsZero() {
		c.add(column+" <= ?", toMicros(r.To))
	}
}

func (c *conditions) sql() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(c.clauses, " AND ")
}

// checkSite returns a validation error if the site does not exist.
func (s *Store) checkSite(ctx context.Context, q queryer, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, s.q(`SELECT 1 FROM sites WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Validation("site %d does not exist", id)
	}
	if err != nil {
		return apperr.Persistence("checking site", err)
	}
	return nil
}

// checkEquipmentType returns a validation error if the equipment type does not exist.
func (s *Store) checkEquipmentType(ctx context.Context, q queryer, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, s.q(`SELECT 1 FROM equipment_types WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Validation("equipment type %d does not exist", id)
	}
	if err != nil {
		return apperr.Persistence("checking equipment type", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint failure on
// either dialect.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pe *pgconn.PgError
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

// limitClause returns a LIMIT clause for n > 0 and nothing otherwise.
func limitClause(n int) string {
	if n <= 0 {
		return ""
	}
	return " LIMIT " + strconv.Itoa(n)
}
