package bench

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/olist"
	"github.com/yilin0518/Advanced-DB/store"
	"go.uber.org/atomic"
)

// Loader owns the schema and bulk-load phase against one store.
type Loader struct {
	conn store.Conn
	opts LoadOptions
}

func NewLoader(conn store.Conn, opts LoadOptions) *Loader {
	return &Loader{conn: conn, opts: opts}
}

// SelectedTables returns the run's table specs in the requested order, or
// the full dataset in dependency order when none were requested.
func (l *Loader) SelectedTables() []store.TableSpec {
	names := l.opts.Tables
	if len(names) == 0 {
		names = olist.LoadOrder
	}
	out := make([]store.TableSpec, 0, len(names))
	for _, n := range names {
		if t, ok := olist.TableByName(n); ok {
			out = append(out, t)
		}
	}
	return out
}

// ValidateOrder rejects a table order that would load a table before a
// table it references. References to tables outside the list are fine;
// the integrity check reports them as dangling instead.
func ValidateOrder(names []string) error {
	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}
	for i, n := range names {
		t, ok := olist.TableByName(n)
		if !ok {
			return errors.Errorf("unknown table %q", n)
		}
		var late []string
		for _, fk := range t.ForeignKeys {
			if j, ok := pos[fk.RefTable]; ok && j > i {
				late = append(late, fk.RefTable)
			}
		}
		if len(late) > 0 {
			return &ReferentialOrderError{Table: n, Missing: late}
		}
	}
	return nil
}

// EnsureSchema brings every selected table to the declared shape. With
// recreate the tables are dropped and recreated; otherwise an existing
// table must match the declared column set (SchemaConflictError if not)
// and is emptied so the load stays repeatable.
func (l *Loader) EnsureSchema() error {
	d := l.conn.Dialect()
	for _, t := range l.SelectedTables() {
		if l.opts.Recreate {
			if err := l.conn.Exec(d.DropTableSQL(t.Name)); err != nil {
				return err
			}
			if err := l.conn.Exec(d.CreateTableSQL(t)); err != nil {
				return err
			}
			continue
		}
		existing, ok, err := d.TableColumns(l.conn.DB(), l.conn.Opt().DB, t.Name)
		if err != nil {
			return err
		}
		if !ok {
			if err := l.conn.Exec(d.CreateTableSQL(t)); err != nil {
				return err
			}
			continue
		}
		if !sameColumnSet(existing, t.ColumnNames()) {
			return &SchemaConflictError{Table: t.Name, Existing: existing, Want: t.ColumnNames()}
		}
		if err := l.conn.Exec(fmt.Sprintf("DELETE FROM %v", d.QuoteIdent(t.Name))); err != nil {
			return err
		}
	}
	return nil
}

func sameColumnSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		if !set[c] {
			return false
		}
	}
	return true
}

// VerifySchema checks existing tables against the declared column sets
// without mutating anything. Used when a run reuses loaded data.
func (l *Loader) VerifySchema() error {
	d := l.conn.Dialect()
	for _, t := range l.SelectedTables() {
		existing, ok, err := d.TableColumns(l.conn.DB(), l.conn.Opt().DB, t.Name)
		if err != nil {
			return err
		}
		if ok && !sameColumnSet(existing, t.ColumnNames()) {
			return &SchemaConflictError{Table: t.Name, Existing: existing, Want: t.ColumnNames()}
		}
	}
	return nil
}

// Present reports which selected tables already exist and hold rows.
func (l *Loader) Present() (map[string]bool, error) {
	d := l.conn.Dialect()
	have := map[string]bool{}
	for _, t := range l.SelectedTables() {
		_, ok, err := d.TableColumns(l.conn.DB(), l.conn.Opt().DB, t.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var n int64
		row := l.conn.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %v", d.QuoteIdent(t.Name)))
		if err := row.Scan(&n); err != nil {
			return nil, errors.Trace(err)
		}
		have[t.Name] = n > 0
	}
	return have, nil
}

// Run streams every selected table's CSV into the store. Tables load
// strictly in order; rows within a table fan out to a bounded pool of
// insert workers. A missing source file skips the table with a warning.
func (l *Loader) Run(dir string) (*LoadStats, error) {
	if err := ValidateOrder(tableNames(l.SelectedTables())); err != nil {
		return nil, err
	}
	stats := &LoadStats{}
	fmt.Printf("[load] loading dataset from %v into %v (%v)\n", dir, l.conn.Opt().DB, l.conn.Dialect().Name())
	begin := time.Now()
	for _, t := range l.SelectedTables() {
		ts, err := l.loadTable(dir, t)
		if err != nil {
			return stats, err
		}
		stats.Tables = append(stats.Tables, ts)
		stats.TotalRead += ts.RowsRead
		stats.TotalInserted += ts.RowsInserted
		stats.TotalSkipped += ts.RowsSkipped
		stats.TotalSeconds += ts.Seconds
	}
	fmt.Printf("[load] done: %v rows in %.2fs (%v skipped)\n",
		stats.TotalInserted, time.Since(begin).Seconds(), stats.TotalSkipped)
	return stats, nil
}

func tableNames(ts []store.TableSpec) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

func (l *Loader) loadTable(dir string, t store.TableSpec) (TableLoadStats, error) {
	ts := TableLoadStats{Table: t.Name}
	path, _ := olist.SourcePath(dir, t.Name)
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("[load] warning: source for %v not found, skipping\n", t.Name)
		ts.SourceMissing = true
		return ts, nil
	}
	r, err := olist.OpenTable(dir, t)
	if err != nil {
		return ts, err
	}
	defer r.Close()

	d := l.conn.Dialect()
	cols := t.ColumnNames()
	rowsPerStmt := l.opts.BatchSize
	if m := d.MaxRowsPerInsert(); m > 0 && rowsPerStmt > m {
		rowsPerStmt = m
	}
	if m := d.MaxBindParams() / len(cols); rowsPerStmt > m {
		rowsPerStmt = m
	}
	workers := l.opts.Workers
	if !d.ConcurrentWriters() {
		workers = 1
	}

	fmt.Printf("[load] %v -> %v ...\n", olist.SourceFiles[t.Name], t.Name)
	begin := time.Now()

	inserted := atomic.NewInt64(0)
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	failed := atomic.NewBool(false)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
		failed.Store(true)
	}

	fullSQL := d.InsertSQL(t.Name, cols, rowsPerStmt)
	batches := make(chan [][]interface{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				if failed.Load() {
					continue
				}
				sql := fullSQL
				if len(batch) != rowsPerStmt {
					sql = d.InsertSQL(t.Name, cols, len(batch))
				}
				args := make([]interface{}, 0, len(batch)*len(cols))
				for _, row := range batch {
					for _, v := range row {
						args = append(args, d.BindValue(v))
					}
				}
				if err := l.conn.Exec(sql, args...); err != nil {
					fail(err)
					continue
				}
				inserted.Add(int64(len(batch)))
			}
		}()
	}

	cleaner := olist.NewCleaner(t)
	batch := make([][]interface{}, 0, rowsPerStmt)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		batches <- batch
		batch = make([][]interface{}, 0, rowsPerStmt)
	}
	for !failed.Load() {
		line, raw, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fail(err)
			break
		}
		ts.RowsRead++
		clean, err := cleaner.Clean(line, raw)
		if err != nil {
			// Dirty rows are dropped and counted, never loaded half-typed.
			ts.RowsSkipped++
			continue
		}
		batch = append(batch, clean)
		if len(batch) == rowsPerStmt {
			flush()
		}
	}
	flush()
	close(batches)
	wg.Wait()

	if firstErr != nil {
		return ts, firstErr
	}
	ts.RowsInserted = inserted.Load()
	ts.Seconds = time.Since(begin).Seconds()
	if ts.Seconds > 0 {
		ts.RowsPerSec = float64(ts.RowsInserted) / ts.Seconds
	}
	fmt.Printf("[load]   %v rows in %.2fs (%v skipped)\n", ts.RowsInserted, ts.Seconds, ts.RowsSkipped)
	return ts, nil
}

// Integrity counts dangling references for every declared foreign key
// whose referenced table is present in the store.
func (l *Loader) Integrity(have map[string]bool) ([]IntegrityCheck, error) {
	d := l.conn.Dialect()
	var out []IntegrityCheck
	for _, t := range l.SelectedTables() {
		if !have[t.Name] {
			continue
		}
		for _, fk := range t.ForeignKeys {
			if !have[fk.RefTable] {
				continue
			}
			q := fmt.Sprintf(
				"SELECT COUNT(*) FROM %v c LEFT JOIN %v p ON c.%v = p.%v WHERE c.%v IS NOT NULL AND p.%v IS NULL",
				d.QuoteIdent(t.Name), d.QuoteIdent(fk.RefTable),
				d.QuoteIdent(fk.Column), d.QuoteIdent(fk.RefColumn),
				d.QuoteIdent(fk.Column), d.QuoteIdent(fk.RefColumn))
			var n int64
			if err := l.conn.QueryRow(q).Scan(&n); err != nil {
				return out, errors.Trace(err)
			}
			out = append(out, IntegrityCheck{
				Table: t.Name, Column: fk.Column,
				RefTable: fk.RefTable, RefColumn: fk.RefColumn,
				Dangling: n,
			})
		}
	}
	return out, nil
}
