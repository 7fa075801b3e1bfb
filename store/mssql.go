package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/pingcap/errors"
)

func init() {
	Register(mssqlDialect{})
}

type mssqlDialect struct{}

func (mssqlDialect) Name() string       { return "mssql" }
func (mssqlDialect) DriverName() string { return "sqlserver" }

func mssqlURL(opt Option, db string) string {
	u := url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(opt.User, opt.Password),
		Host:   fmt.Sprintf("%v:%v", opt.Addr, opt.Port),
	}
	q := url.Values{}
	q.Set("database", db)
	u.RawQuery = q.Encode()
	return u.String()
}

func (mssqlDialect) DSN(opt Option) string {
	return mssqlURL(opt, opt.DB)
}

func (mssqlDialect) ServerDSN(opt Option) (string, bool) {
	return mssqlURL(opt, "master"), true
}

func (d mssqlDialect) EnsureDatabase(db *sql.DB, name string) error {
	_, err := db.Exec(fmt.Sprintf("IF DB_ID(N'%v') IS NULL CREATE DATABASE %v", name, d.QuoteIdent(name)))
	return errors.Trace(err)
}

func (mssqlDialect) Tune(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func (mssqlDialect) VersionSQL() string { return "SELECT @@VERSION" }

func (mssqlDialect) QuoteIdent(name string) string { return "[" + name + "]" }

func (mssqlDialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

func (mssqlDialect) ColumnTypeSQL(c Column) string {
	switch c.Type {
	case TypeString:
		return fmt.Sprintf("NVARCHAR(%d)", c.Size)
	case TypeText:
		return "NVARCHAR(MAX)"
	case TypeInteger:
		return "INT"
	case TypeDecimal:
		return "FLOAT"
	case TypeTimestamp:
		return "DATETIME2"
	}
	return "NVARCHAR(MAX)"
}

func (d mssqlDialect) CreateTableSQL(t TableSpec) string {
	return genericCreateTableSQL(d, t)
}

func (d mssqlDialect) DropTableSQL(table string) string {
	return fmt.Sprintf("IF OBJECT_ID(N'%v', N'U') IS NOT NULL DROP TABLE %v", table, d.QuoteIdent(table))
}

func (d mssqlDialect) InsertSQL(table string, columns []string, rows int) string {
	return genericInsertSQL(d, table, columns, rows)
}

func (d mssqlDialect) CreateIndexSQL(spec IndexSpec, _ map[string]bool) string {
	return genericCreateIndexSQL(d, spec)
}

func (d mssqlDialect) DropIndexSQL(name, table string) string {
	return fmt.Sprintf("DROP INDEX %v ON %v", d.QuoteIdent(name), d.QuoteIdent(table))
}

func (mssqlDialect) MonthExpr(column string) string {
	return fmt.Sprintf("FORMAT(%v, 'yyyy-MM')", column)
}

// TOP instead of LIMIT; OFFSET/FETCH would demand an ORDER BY.
func (mssqlDialect) Limit(n int) (string, string) {
	return fmt.Sprintf("TOP (%d) ", n), ""
}

func (mssqlDialect) TableColumns(db *sql.DB, _, table string) ([]string, bool, error) {
	rows, err := db.Query(`SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

func (mssqlDialect) IndexColumns(db *sql.DB, _, table, index string) ([]string, bool, error) {
	rows, err := db.Query(`SELECT c.name
		FROM sys.indexes i
		JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.object_id = OBJECT_ID(@p1) AND i.name = @p2
		ORDER BY ic.key_ordinal`, table, index)
	if err != nil {
		return nil, false, errors.Trace(err)
	}
	return scanStrings(rows)
}

// SQL Server caps both bind parameters per statement and rows per table
// value constructor.
func (mssqlDialect) MaxBindParams() int      { return 2100 }
func (mssqlDialect) MaxRowsPerInsert() int   { return 1000 }
func (mssqlDialect) ConcurrentWriters() bool { return true }

func (mssqlDialect) BindValue(v interface{}) interface{} { return v }
