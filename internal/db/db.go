package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour of an open database.
type Dialect string

// Supported dialects.
const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB is the store handle: a connection pool plus its dialect. It is opened at
// process start and closed at shutdown.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// sqlitePragmas are applied to every pooled connection through the DSN.
var sqlitePragmas = []string{
	"_pragma=busy_timeout(5000)",
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_pragma=synchronous(NORMAL)",
	// Writers take the write lock at BEGIN instead of upgrading mid-transaction.
	"_txlock=immediate",
}

// Open opens a database. DSNs starting with postgres:// or postgresql:// use
// the pgx driver; anything else is treated as a SQLite path.
func Open(dsn string) (*DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		conn, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return &DB{DB: conn, Dialect: Postgres}, nil
	}

	memory := dsn == ":memory:"
	pragmas := sqlitePragmas
	if memory {
		// WAL is meaningless for a private in-memory database.
		pragmas = []string{"_pragma=foreign_keys(1)"}
	}

	conn, err := sql.Open("sqlite", dsn+"?"+strings.Join(pragmas, "&"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DB{DB: conn, Dialect: SQLite}, nil
}

// Rebind converts ? placeholders to the dialect's placeholder syntax.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Dialect, query)
}

// Rebind converts ? placeholders to $N for PostgreSQL. Queries must not
// contain literal question marks.
func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
