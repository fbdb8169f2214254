package store

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"  // Local files (modernc) and libSQL/Turso.
	DialectPostgres Dialect = "postgres" // PostgreSQL through lib/pq.
)

// Driver names as registered with database/sql.
const (
	driverSQLite   = "sqlite"
	driverLibSQL   = "libsql"
	driverPostgres = "postgres"
)
