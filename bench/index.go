package bench

import (
	"fmt"
	"time"

	"github.com/yilin0518/Advanced-DB/olist"
	"github.com/yilin0518/Advanced-DB/store"
)

// IndexManager applies a profile's secondary indexes and tears down what
// it created, never touching indexes it did not make.
type IndexManager struct {
	conn    store.Conn
	created []store.IndexSpec
}

func NewIndexManager(conn store.Conn) *IndexManager {
	return &IndexManager{conn: conn}
}

// Apply creates every index of the profile whose table is present. An
// index that already exists with the same column list is a no-op; the
// same name over different columns aborts with IndexConflictError. Build
// durations are recorded apart from query timing.
func (m *IndexManager) Apply(p Profile, have map[string]bool) ([]IndexBuild, error) {
	d := m.conn.Dialect()
	builds := make([]IndexBuild, 0, len(p.Indexes))
	for _, spec := range p.Indexes {
		name := spec.IndexName()
		if !have[spec.Table] {
			builds = append(builds, IndexBuild{
				Name: name, Table: spec.Table, Columns: spec.Columns, TableMissing: true,
			})
			continue
		}
		existing, ok, err := d.IndexColumns(m.conn.DB(), m.conn.Opt().DB, spec.Table, name)
		if err != nil {
			return builds, err
		}
		if ok {
			if !sameColumns(existing, spec.Columns) {
				return builds, &IndexConflictError{
					Index: name, Table: spec.Table,
					Existing: existing, Want: spec.Columns,
				}
			}
			builds = append(builds, IndexBuild{
				Name: name, Table: spec.Table, Columns: spec.Columns, AlreadyExisted: true,
			})
			continue
		}
		var textCols map[string]bool
		if t, ok := olist.TableByName(spec.Table); ok {
			textCols = olist.TextColumns(t)
		}
		fmt.Printf("[index] creating %v on %v%v ...\n", name, spec.Table, spec.Columns)
		begin := time.Now()
		if err := m.conn.Exec(d.CreateIndexSQL(spec, textCols)); err != nil {
			return builds, err
		}
		elapsed := time.Since(begin)
		m.created = append(m.created, spec)
		builds = append(builds, IndexBuild{
			Name: name, Table: spec.Table, Columns: spec.Columns,
			Seconds: elapsed.Seconds(),
		})
	}
	return builds, nil
}

// Clear drops the indexes this manager created, newest first, and forgets
// them. Pre-existing indexes stay.
func (m *IndexManager) Clear() error {
	d := m.conn.Dialect()
	for i := len(m.created) - 1; i >= 0; i-- {
		spec := m.created[i]
		if err := m.conn.Exec(d.DropIndexSQL(spec.IndexName(), spec.Table)); err != nil {
			return err
		}
		m.created = m.created[:i]
	}
	return nil
}

// Created lists the currently tracked indexes.
func (m *IndexManager) Created() []store.IndexSpec {
	out := make([]store.IndexSpec, len(m.created))
	copy(out, m.created)
	return out
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
