package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/pingcap/errors"
)

func init() {
	Register(mysqlDialect{})
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

func (mysqlDialect) DSN(opt Option) string {
	return fmt.Sprintf("%v:%v@tcp(%v:%v)/%v?parseTime=true&multiStatements=true",
		opt.User, opt.Password, opt.Addr, opt.Port, opt.DB)
}

func (mysqlDialect) ServerDSN(opt Option) (string, bool) {
	return fmt.Sprintf("%v:%v@tcp(%v:%v)/?parseTime=true", opt.User, opt.Password, opt.Addr, opt.Port), true
}

func (d mysqlDialect) EnsureDatabase(db *sql.DB, name string) error {
	_, err := db.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %v", d.QuoteIdent(name)))
	return errors.Trace(err)
}

func (mysqlDialect) Tune(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func (mysqlDialect) VersionSQL() string { return "SELECT VERSION()" }

func (mysqlDialect) QuoteIdent(name string) string { return "`" + name + "`" }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) ColumnTypeSQL(c Column) string {
	switch c.Type {
	case TypeString:
		return fmt.Sprintf("VARCHAR(%d)", c.Size)
	case TypeText:
		return "TEXT"
	case TypeInteger:
		return "INT"
	case TypeDecimal:
		return "DOUBLE"
	case TypeTimestamp:
		return "DATETIME"
	}
	return "TEXT"
}

func (d mysqlDialect) CreateTableSQL(t TableSpec) string {
	return genericCreateTableSQL(d, t)
}

func (d mysqlDialect) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %v", d.QuoteIdent(table))
}

func (d mysqlDialect) InsertSQL(table string, columns []string, rows int) string {
	return genericInsertSQL(d, table, columns, rows)
}

func (d mysqlDialect) CreateIndexSQL(spec IndexSpec, textColumns map[string]bool) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = d.QuoteIdent(c)
		// TEXT keys need an explicit prefix length on MySQL.
		if spec.Prefix > 0 && textColumns[c] {
			cols[i] += fmt.Sprintf("(%d)", spec.Prefix)
		}
	}
	return fmt.Sprintf("CREATE INDEX %v ON %v (%v)",
		d.QuoteIdent(spec.IndexName()), d.QuoteIdent(spec.Table), strings.Join(cols, ", "))
}

func (d mysqlDialect) DropIndexSQL(name, table string) string {
	return fmt.Sprintf("DROP INDEX %v ON %v", d.QuoteIdent(name), d.QuoteIdent(table))
}

func (mysqlDialect) MonthExpr(column string) string {
	return fmt.Sprintf("DATE_FORMAT(%v, '%%Y-%%m')", column)
}

func (mysqlDialect) Limit(n int) (string, string) {
	return "", fmt.Sprintf(" LIMIT %d", n)
}

func (mysqlDialect) TableColumns(db *sql.DB, dbName, table string) ([]string, bool, error) {
	rows, err := db.Query(`SELECT COLUMN_NAME FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`, dbName, table)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

func (mysqlDialect) IndexColumns(db *sql.DB, dbName, table, index string) ([]string, bool, error) {
	rows, err := db.Query(`SELECT COLUMN_NAME FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ? AND INDEX_NAME = ? ORDER BY SEQ_IN_INDEX`,
		dbName, table, index)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

func (mysqlDialect) MaxBindParams() int      { return 65535 }
func (mysqlDialect) MaxRowsPerInsert() int   { return 0 }
func (mysqlDialect) ConcurrentWriters() bool { return true }

func (mysqlDialect) BindValue(v interface{}) interface{} { return v }

// scanStrings drains a single-column result; ok=false on an empty set so
// callers can distinguish "absent" from "present with no rows".
func scanStrings(rows *sql.Rows) ([]string, bool, error) {
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, false, errors.Trace(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, false, errors.Trace(err)
	}
	return out, len(out) > 0, nil
}

func genericCreateTableSQL(d Dialect, t TableSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %v (", d.QuoteIdent(t.Name))
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v %v", d.QuoteIdent(c.Name), d.ColumnTypeSQL(c))
	}
	b.WriteString(")")
	return b.String()
}

func genericInsertSQL(d Dialect, table string, columns []string, rows int) string {
	var b strings.Builder
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	fmt.Fprintf(&b, "INSERT INTO %v (%v) VALUES ", d.QuoteIdent(table), strings.Join(quoted, ", "))
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for c := range columns {
			if c > 0 {
				b.WriteString(", ")
			}
			b.WriteString(d.Placeholder(n))
			n++
		}
		b.WriteString(")")
	}
	return b.String()
}
