package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pingcap/errors"
	_ "modernc.org/sqlite"
)

func init() {
	Register(sqliteDialect{})
}

// sqliteDialect drives an embedded database file. Useful for harness
// self-checks and for baseline numbers without a server round-trip.
type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) DSN(opt Option) string {
	if opt.Path != "" {
		return opt.Path
	}
	return opt.DB + ".db"
}

func (sqliteDialect) ServerDSN(Option) (string, bool) { return "", false }

func (sqliteDialect) EnsureDatabase(*sql.DB, string) error { return nil }

func (sqliteDialect) Tune(db *sql.DB) {
	// A single connection keeps writes serialized and makes :memory:
	// databases behave like one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
}

func (sqliteDialect) VersionSQL() string { return "SELECT sqlite_version()" }

func (sqliteDialect) QuoteIdent(name string) string { return `"` + name + `"` }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) ColumnTypeSQL(c Column) string {
	switch c.Type {
	case TypeString, TypeText, TypeTimestamp:
		// Timestamps are stored as sortable text, see BindValue.
		return "TEXT"
	case TypeInteger:
		return "INTEGER"
	case TypeDecimal:
		return "REAL"
	}
	return "TEXT"
}

func (d sqliteDialect) CreateTableSQL(t TableSpec) string {
	return genericCreateTableSQL(d, t)
}

func (d sqliteDialect) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %v", d.QuoteIdent(table))
}

func (d sqliteDialect) InsertSQL(table string, columns []string, rows int) string {
	return genericInsertSQL(d, table, columns, rows)
}

func (d sqliteDialect) CreateIndexSQL(spec IndexSpec, _ map[string]bool) string {
	return genericCreateIndexSQL(d, spec)
}

func (d sqliteDialect) DropIndexSQL(name, _ string) string {
	return fmt.Sprintf("DROP INDEX IF EXISTS %v", d.QuoteIdent(name))
}

func (sqliteDialect) MonthExpr(column string) string {
	return fmt.Sprintf("strftime('%%Y-%%m', %v)", column)
}

func (sqliteDialect) Limit(n int) (string, string) {
	return "", fmt.Sprintf(" LIMIT %d", n)
}

func (sqliteDialect) TableColumns(db *sql.DB, _, table string) ([]string, bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

func (sqliteDialect) IndexColumns(db *sql.DB, _, table, index string) ([]string, bool, error) {
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?",
		table, index).Scan(&n)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	if n == 0 {
		return nil, false, nil
	}
	rows, err := db.Query("SELECT name FROM pragma_index_info(?) ORDER BY seqno", index)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	cols, _, err := scanStrings(rows)
	return cols, err == nil, err
}

func (sqliteDialect) MaxBindParams() int      { return 32766 }
func (sqliteDialect) MaxRowsPerInsert() int   { return 0 }
func (sqliteDialect) ConcurrentWriters() bool { return false }

// BindValue stores timestamps as '2006-01-02 15:04:05' text so BETWEEN
// ranges and strftime bucketing compare correctly.
func (sqliteDialect) BindValue(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return v
}
