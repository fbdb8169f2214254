package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/laytan/tubescribe/internal/store/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// goose keeps its configuration in globals.
var gooseMu sync.Mutex

type Options struct {
	// URL selects the backend: postgres:// and postgresql:// use PostgreSQL,
	// libsql://, http(s):// and ws(s):// a remote libSQL (Turso) database,
	// anything else is a local SQLite file such as file:./dev.db.
	URL string

	// AuthToken is passed to remote libSQL databases.
	AuthToken string

	// Log receives goose's migration output, the zero value discards it.
	Log zerolog.Logger
}

type DB struct {
	*sql.DB
	Dialect Dialect

	log zerolog.Logger
}

// Open connects and pings the database, the handle is meant to be shared
// for the lifetime of the process.
func Open(ctx context.Context, opts Options) (*DB, error) {
	driver, dsn, dialect, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if driver == driverSQLite {
		db.SetMaxOpenConns(1) // SQLite: single writer.
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", driver, err)
	}

	return &DB{DB: db, Dialect: dialect, log: opts.Log}, nil
}

// Queries returns the query set bound to this handle.
func (d *DB) Queries() *Queries {
	return New(d.DB, d.Dialect)
}

// Migrate brings the schema up to date.
func (d *DB) Migrate() error {
	return d.Goose("up")
}

// Goose runs a goose command (up, down, status, version, ...) against the
// embedded migrations.
func (d *DB) Goose(command string, args ...string) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: d.log.With().Str("component", "goose").Logger()})

	if err := goose.SetDialect(string(d.Dialect)); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Run(command, d.DB, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}

func resolve(opts Options) (driver, dsn string, dialect Dialect, err error) {
	raw := strings.TrimSpace(opts.URL)
	if raw == "" {
		return "", "", "", errors.New("empty database url")
	}

	scheme, _, found := strings.Cut(raw, "://")
	if !found {
		return driverSQLite, raw, DialectSQLite, nil
	}

	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return driverPostgres, raw, DialectPostgres, nil
	case "libsql", "http", "https", "ws", "wss":
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", "", fmt.Errorf("parsing database url: %w", err)
		}

		if opts.AuthToken != "" {
			q := u.Query()
			if q.Get("authToken") == "" {
				q.Set("authToken", opts.AuthToken)
				u.RawQuery = q.Encode()
			}
		}

		return driverLibSQL, u.String(), DialectSQLite, nil
	case "file":
		return driverSQLite, raw, DialectSQLite, nil
	default:
		return "", "", "", fmt.Errorf("unsupported database url scheme %q", scheme)
	}
}

// gooseLogger sends goose's printf style output to zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (g gooseLogger) Fatal(v ...interface{}) { g.log.Fatal().Msg(trim(fmt.Sprint(v...))) }

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal().Msg(trim(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Print(v ...interface{}) { g.log.Info().Msg(trim(fmt.Sprint(v...))) }

func (g gooseLogger) Println(v ...interface{}) { g.log.Info().Msg(trim(fmt.Sprintln(v...))) }

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info().Msg(trim(fmt.Sprintf(format, v...)))
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
