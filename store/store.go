package store

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pingcap/errors"
)

// Option describes one relational store target. Connection fields may be
// overridden from the environment by the caller before ConnectTo.
type Option struct {
	Dialect  string `toml:"dialect"`
	Addr     string `toml:"addr"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Path     string `toml:"path"` // file path for embedded engines (sqlite)
	Label    string `toml:"label"`
}

// ColType is the semantic column type of the benchmark schema. Each dialect
// maps it to a concrete SQL type.
type ColType int

const (
	TypeString ColType = iota
	TypeText
	TypeInteger
	TypeDecimal
	TypeTimestamp
)

type Column struct {
	Name string
	Type ColType
	Size int // VARCHAR width for TypeString
}

// ForeignKey declares a reference for load ordering and integrity checks.
// It is metadata only; no constraint is emitted in DDL, so the no-index
// baseline stays free of constraint-backed indexes.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableSpec declares a benchmark table. PrimaryKey is metadata like
// ForeignKeys; CreateTableSQL emits plain columns only.
type TableSpec struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

func (t TableSpec) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t TableSpec) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// IndexSpec names a secondary index to create. Prefix is the per-column key
// prefix length for engines that need one on TEXT columns (MySQL); other
// dialects ignore it.
type IndexSpec struct {
	Table   string   `toml:"table"`
	Columns []string `toml:"columns"`
	Name    string   `toml:"name"`
	Prefix  int      `toml:"prefix"`
}

// IndexName returns the configured name or idx_<table>_<col1>[_colN].
func (s IndexSpec) IndexName() string {
	if s.Name != "" {
		return s.Name
	}
	name := "idx_" + s.Table
	for _, c := range s.Columns {
		name += "_" + c
	}
	return name
}

// Dialect is the per-engine surface the harness needs: DSN building, DDL,
// bulk-insert SQL, and catalog introspection. Implementations register
// themselves in init (mirrors the multi-backend storage registry pattern).
type Dialect interface {
	Name() string
	DriverName() string
	DSN(opt Option) string
	// ServerDSN returns a DSN that connects without selecting the target
	// database, for bootstrap. ok is false for embedded engines.
	ServerDSN(opt Option) (dsn string, ok bool)
	// EnsureDatabase creates the target database on a server-level
	// connection if it does not exist yet.
	EnsureDatabase(db *sql.DB, name string) error
	// Tune applies the engine's connection-pool settings.
	Tune(db *sql.DB)

	VersionSQL() string
	QuoteIdent(name string) string
	Placeholder(n int) string // 1-based argument position
	ColumnTypeSQL(c Column) string
	CreateTableSQL(t TableSpec) string
	DropTableSQL(table string) string
	InsertSQL(table string, columns []string, rows int) string
	CreateIndexSQL(spec IndexSpec, textColumns map[string]bool) string
	DropIndexSQL(name, table string) string
	// MonthExpr returns the expression bucketing a timestamp column into
	// a 'YYYY-MM' string.
	MonthExpr(column string) string
	// Limit returns the clauses capping a result at n rows. prefix goes
	// right after the SELECT keyword, suffix at the end of the statement.
	Limit(n int) (prefix, suffix string)

	// TableColumns returns the existing table's column names, or ok=false
	// when the table does not exist.
	TableColumns(db *sql.DB, dbName, table string) (cols []string, ok bool, err error)
	// IndexColumns returns the existing index's column names in key order,
	// or ok=false when no such index exists.
	IndexColumns(db *sql.DB, dbName, table, index string) (cols []string, ok bool, err error)

	MaxBindParams() int
	MaxRowsPerInsert() int // 0 = no engine limit
	ConcurrentWriters() bool
	// BindValue converts a Go value to the driver representation the
	// dialect needs (sqlite stores timestamps as sortable text).
	BindValue(v interface{}) interface{}
}

var (
	dialectMu sync.RWMutex
	dialects  = map[string]Dialect{}
)

// Register registers a dialect under its kind string. Called from init in
// each backend file; duplicate registration panics to fail fast.
func Register(d Dialect) {
	dialectMu.Lock()
	defer dialectMu.Unlock()
	if d == nil || d.Name() == "" {
		panic("store: Register called with invalid dialect")
	}
	if _, dup := dialects[d.Name()]; dup {
		panic(fmt.Sprintf("store: dialect %q already registered", d.Name()))
	}
	dialects[d.Name()] = d
}

// Lookup returns the registered dialect for kind.
func Lookup(kind string) (Dialect, error) {
	dialectMu.RLock()
	d := dialects[kind]
	dialectMu.RUnlock()
	if d == nil {
		return nil, errors.Errorf("unknown store dialect=%v (have %v)", kind, Kinds())
	}
	return d, nil
}

// Kinds lists the registered dialect names, sorted.
func Kinds() []string {
	dialectMu.RLock()
	defer dialectMu.RUnlock()
	ks := make([]string, 0, len(dialects))
	for k := range dialects {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Conn is the single store handle a benchmark run owns.
type Conn interface {
	Exec(query string, args ...interface{}) error
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
	DB() *sql.DB
	Dialect() Dialect
	Opt() Option
	Version() string
	Close() error
}

type conn struct {
	db  *sql.DB
	d   Dialect
	opt Option
	ver string
}

func (c *conn) Exec(query string, args ...interface{}) error {
	begin := time.Now()
	_, err := c.db.Exec(query, args...)
	if d := time.Since(begin); d > time.Second {
		fmt.Printf("[%s] [store] slow exec on %v cost %v: %v\n", logTime(), c.opt.Label, d, truncateSQL(query))
	}
	return errors.Trace(err)
}

func (c *conn) Query(query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := c.db.Query(query, args...)
	return rows, errors.Trace(err)
}

func (c *conn) QueryRow(query string, args ...interface{}) *sql.Row {
	return c.db.QueryRow(query, args...)
}

func (c *conn) DB() *sql.DB      { return c.db }
func (c *conn) Dialect() Dialect { return c.d }
func (c *conn) Opt() Option      { return c.opt }
func (c *conn) Version() string  { return c.ver }
func (c *conn) Close() error     { return c.db.Close() }

func (c *conn) initVersion() error {
	var ver string
	if err := c.db.QueryRow(c.d.VersionSQL()).Scan(&ver); err != nil {
		return errors.Trace(err)
	}
	c.ver = ver
	return nil
}

func logTime() string {
	str, err := time.Now().MarshalText()
	if err != nil {
		panic(err)
	}
	return string(str)
}

func truncateSQL(q string) string {
	const max = 120
	if len(q) <= max {
		return q
	}
	return q[:max] + "..."
}

// ConnectTo opens and pings the configured store and probes its version.
func ConnectTo(opt Option) (Conn, error) {
	d, err := Lookup(opt.Dialect)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName(), d.DSN(opt))
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Trace(err)
	}
	d.Tune(db)
	c := &conn{db: db, d: d, opt: opt}
	if err := c.initVersion(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// EnsureDatabase creates the target database if the engine supports
// server-level administration; embedded engines are a no-op.
func EnsureDatabase(opt Option) error {
	d, err := Lookup(opt.Dialect)
	if err != nil {
		return err
	}
	dsn, ok := d.ServerDSN(opt)
	if !ok {
		return nil
	}
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return errors.Trace(err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return errors.Trace(err)
	}
	return d.EnsureDatabase(db, opt.DB)
}

// WaitAndConnect bootstraps the database and connects, retrying while the
// store is still starting up.
func WaitAndConnect(opt Option, attempts int, delay time.Duration) (Conn, error) {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			fmt.Printf("[%s] [store] waiting for %v store... (%d/%d)\n", logTime(), opt.Dialect, i+1, attempts)
			time.Sleep(delay)
		}
		if err := EnsureDatabase(opt); err != nil {
			lastErr = err
			continue
		}
		c, err := ConnectTo(opt)
		if err != nil {
			lastErr = err
			continue
		}
		return c, nil
	}
	return nil, errors.Annotatef(lastErr, "store %v unreachable after %d attempts", opt.Dialect, attempts)
}
