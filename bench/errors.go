package bench

import (
	"fmt"
	"strings"
)

// SchemaConflictError reports an existing table whose columns differ from
// the declared schema. The run aborts instead of silently dropping data.
type SchemaConflictError struct {
	Table    string
	Existing []string
	Want     []string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("table %v exists with columns (%v), want (%v); drop it or run with reset",
		e.Table, strings.Join(e.Existing, ", "), strings.Join(e.Want, ", "))
}

// ReferentialOrderError reports a load order that would insert a table
// before a table it references.
type ReferentialOrderError struct {
	Table   string
	Missing []string
}

func (e *ReferentialOrderError) Error() string {
	return fmt.Sprintf("table %v ordered before referenced tables %v",
		e.Table, strings.Join(e.Missing, ", "))
}

// IndexConflictError reports an index name that already exists with a
// different column list.
type IndexConflictError struct {
	Index    string
	Table    string
	Existing []string
	Want     []string
}

func (e *IndexConflictError) Error() string {
	return fmt.Sprintf("index %v on %v exists with columns (%v), want (%v)",
		e.Index, e.Table, strings.Join(e.Existing, ", "), strings.Join(e.Want, ", "))
}

// ScenarioExecutionError reports a scenario that kept failing after the
// run's retry allowance.
type ScenarioExecutionError struct {
	Scenario string
	Profile  string
	Attempts int
	Err      error
}

func (e *ScenarioExecutionError) Error() string {
	return fmt.Sprintf("scenario %v under profile %v failed after %d attempts: %v",
		e.Scenario, e.Profile, e.Attempts, e.Err)
}

func (e *ScenarioExecutionError) Unwrap() error { return e.Err }
