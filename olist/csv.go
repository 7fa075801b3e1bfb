package olist

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/store"
)

// HeaderError reports a CSV whose header is missing columns the table
// declares. Extra columns in the file are ignored.
type HeaderError struct {
	File    string
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: header missing columns %v", e.File, strings.Join(e.Missing, ", "))
}

// Reader streams one table's CSV source and yields raw records aligned
// with the table's declared column order.
type Reader struct {
	f      *os.File
	cr     *csv.Reader
	table  store.TableSpec
	colIdx []int // declared column -> field position in the file
	line   int
	out    []string
}

// SourcePath returns the CSV path for a table inside dir.
func SourcePath(dir, table string) (string, bool) {
	file, ok := SourceFiles[table]
	if !ok {
		return "", false
	}
	return filepath.Join(dir, file), true
}

// OpenTable opens the CSV source of t under dir and validates its header.
func OpenTable(dir string, t store.TableSpec) (*Reader, error) {
	path, ok := SourcePath(dir, t.Name)
	if !ok {
		return nil, errors.Errorf("no source file registered for table %v", t.Name)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	cr := csv.NewReader(bufio.NewReaderSize(f, 1<<20))
	cr.ReuseRecord = true
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		_ = f.Close()
		return nil, errors.Annotatef(err, "read header of %v", path)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		pos[strings.TrimSpace(h)] = i
	}
	colIdx := make([]int, len(t.Columns))
	var missing []string
	for i, c := range t.Columns {
		p, ok := pos[c.Name]
		if !ok {
			missing = append(missing, c.Name)
			continue
		}
		colIdx[i] = p
	}
	if len(missing) > 0 {
		_ = f.Close()
		return nil, &HeaderError{File: path, Missing: missing}
	}
	return &Reader{
		f:      f,
		cr:     cr,
		table:  t,
		colIdx: colIdx,
		line:   1,
		out:    make([]string, len(t.Columns)),
	}, nil
}

// Next returns the next record's fields in declared column order together
// with its 1-based line number. It returns io.EOF when the file is
// exhausted. The returned slice is reused between calls.
func (r *Reader) Next() (int, []string, error) {
	rec, err := r.cr.Read()
	if err == io.EOF {
		return 0, nil, io.EOF
	}
	if err != nil {
		return 0, nil, errors.Annotatef(err, "read %v", r.f.Name())
	}
	r.line++
	for i, p := range r.colIdx {
		if p < len(rec) {
			r.out[i] = rec[p]
		} else {
			// Short records treat trailing fields as absent.
			r.out[i] = ""
		}
	}
	return r.line, r.out, nil
}

func (r *Reader) Close() error { return r.f.Close() }
