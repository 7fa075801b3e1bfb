package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pingcap/errors"
)

func init() {
	Register(postgresDialect{})
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

func pgURL(opt Option, db string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(opt.User, opt.Password),
		Host:   fmt.Sprintf("%v:%v", opt.Addr, opt.Port),
		Path:   "/" + db,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

func (postgresDialect) DSN(opt Option) string {
	return pgURL(opt, opt.DB)
}

func (postgresDialect) ServerDSN(opt Option) (string, bool) {
	// The postgres maintenance database always exists.
	return pgURL(opt, "postgres"), true
}

func (d postgresDialect) EnsureDatabase(db *sql.DB, name string) error {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM pg_database WHERE datname = $1", name).Scan(&n)
	if err != nil {
		return errors.Trace(err)
	}
	if n > 0 {
		return nil
	}
	_, err = db.Exec(fmt.Sprintf("CREATE DATABASE %v", d.QuoteIdent(name)))
	return errors.Trace(err)
}

func (postgresDialect) Tune(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func (postgresDialect) VersionSQL() string { return "SELECT version()" }

func (postgresDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) ColumnTypeSQL(c Column) string {
	switch c.Type {
	case TypeString:
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return "INTEGER"
	case TypeDecimal:
		return "DOUBLE PRECISION"
	case TypeTimestamp:
		return "TIMESTAMP"
	}
	return "TEXT"
}

func (d postgresDialect) CreateTableSQL(t TableSpec) string {
	return genericCreateTableSQL(d, t)
}

func (d postgresDialect) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %v", d.QuoteIdent(table))
}

func (d postgresDialect) InsertSQL(table string, columns []string, rows int) string {
	return genericInsertSQL(d, table, columns, rows)
}

func (d postgresDialect) CreateIndexSQL(spec IndexSpec, _ map[string]bool) string {
	return genericCreateIndexSQL(d, spec)
}

func (d postgresDialect) DropIndexSQL(name, _ string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %v", d.QuoteIdent(name))
}

func (postgresDialect) MonthExpr(column string) string {
	return fmt.Sprintf("to_char(%v, 'YYYY-MM')", column)
}

func (postgresDialect) Limit(n int) (string, string) {
	return "", fmt.Sprintf(" LIMIT %d", n)
}

func (postgresDialect) TableColumns(db *sql.DB, _, table string) ([]string, bool, error) {
	rows, err := db.Query(`SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

func (postgresDialect) IndexColumns(db *sql.DB, _, table, index string) ([]string, bool, error) {
	rows, err := db.Query(`SELECT a.attname
		FROM pg_index ix
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1 AND i.relname = $2
		ORDER BY array_position(ix.indkey, a.attnum)`, table, index)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

func (postgresDialect) MaxBindParams() int      { return 65535 }
func (postgresDialect) MaxRowsPerInsert() int   { return 0 }
func (postgresDialect) ConcurrentWriters() bool { return true }

func (postgresDialect) BindValue(v interface{}) interface{} { return v }

func genericCreateIndexSQL(d Dialect, spec IndexSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = d.QuoteIdent(c)
	}
	return fmt.Sprintf("CREATE INDEX %v ON %v (%v)",
		d.QuoteIdent(spec.IndexName()), d.QuoteIdent(spec.Table), strings.Join(cols, ", "))
}
