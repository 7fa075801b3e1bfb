package bench

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pingcap/errors"
)

// StoreInfo records which store produced a result.
type StoreInfo struct {
	Dialect string `json:"dialect"`
	Version string `json:"version"`
	DB      string `json:"db"`
	Label   string `json:"label,omitempty"`
}

// TableLoadStats is one table's load outcome.
type TableLoadStats struct {
	Table         string  `json:"table"`
	SourceMissing bool    `json:"source_missing,omitempty"`
	RowsRead      int64   `json:"rows_read"`
	RowsInserted  int64   `json:"rows_inserted"`
	RowsSkipped   int64   `json:"rows_skipped"`
	Seconds       float64 `json:"seconds"`
	RowsPerSec    float64 `json:"rows_per_sec"`
}

// LoadStats aggregates the load phase. Reused marks a run that kept data
// already present in the store.
type LoadStats struct {
	Reused        bool             `json:"reused,omitempty"`
	Tables        []TableLoadStats `json:"tables"`
	TotalRead     int64            `json:"total_read"`
	TotalInserted int64            `json:"total_inserted"`
	TotalSkipped  int64            `json:"total_skipped"`
	TotalSeconds  float64          `json:"total_seconds"`
}

// IntegrityCheck is the dangling-key count of one declared reference.
type IntegrityCheck struct {
	Table     string `json:"table"`
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
	Dangling  int64  `json:"dangling"`
}

// IndexBuild records one index creation inside a profile.
type IndexBuild struct {
	Name           string   `json:"name"`
	Table          string   `json:"table"`
	Columns        []string `json:"columns"`
	Seconds        float64  `json:"seconds"`
	AlreadyExisted bool     `json:"already_existed,omitempty"`
	TableMissing   bool     `json:"table_missing,omitempty"`
}

// ScenarioResult carries the ordered samples and summary of one scenario
// under one profile.
type ScenarioResult struct {
	Name    string    `json:"name"`
	Kind    string    `json:"kind"`
	SQL     string    `json:"sql"`
	Samples []float64 `json:"samples"` // seconds, execution order
	Summary Summary   `json:"summary"`
	Retries int       `json:"retries,omitempty"`
	Skipped bool      `json:"skipped,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// ProfileResult is one full pass over the battery.
type ProfileResult struct {
	Name         string           `json:"name"`
	Cache        bool             `json:"cache,omitempty"`
	IndexBuilds  []IndexBuild     `json:"index_builds,omitempty"`
	IndexSeconds float64          `json:"index_seconds,omitempty"`
	Scenarios    []ScenarioResult `json:"scenarios"`
	CacheHits    int64            `json:"cache_hits,omitempty"`
	CacheMisses  int64            `json:"cache_misses,omitempty"`
}

// Comparison relates one scenario's mean under a profile to its baseline
// mean. Faster is informational; a slowdown is a finding, not a failure.
type Comparison struct {
	Scenario     string  `json:"scenario"`
	Profile      string  `json:"profile"`
	BaselineMean float64 `json:"baseline_mean"`
	ProfileMean  float64 `json:"profile_mean"`
	Speedup      float64 `json:"speedup"`
	Faster       bool    `json:"faster"`
}

// Diagnostics collects everything that went sideways without aborting.
type Diagnostics struct {
	SkippedScenarios []string `json:"skipped_scenarios,omitempty"`
	Retries          int      `json:"retries,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	AbortedPhase     string   `json:"aborted_phase,omitempty"`
}

// Result is the full benchmark outcome serialized to result.json.
type Result struct {
	Store       StoreInfo        `json:"store"`
	Seed        int64            `json:"seed"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Load        *LoadStats       `json:"load,omitempty"`
	Integrity   []IntegrityCheck `json:"integrity,omitempty"`
	Profiles    []ProfileResult  `json:"profiles"`
	Comparisons []Comparison     `json:"comparisons,omitempty"`
	Diagnostics Diagnostics      `json:"diagnostics"`
}

// Profile returns the named profile result.
func (r *Result) Profile(name string) (*ProfileResult, bool) {
	for i := range r.Profiles {
		if r.Profiles[i].Name == name {
			return &r.Profiles[i], true
		}
	}
	return nil, false
}

// BuildComparisons fills Comparisons from the baseline pass and every
// later profile, per scenario that ran in both.
func (r *Result) BuildComparisons() {
	base, ok := r.Profile(BaselineProfile)
	if !ok {
		return
	}
	baseMean := map[string]float64{}
	for _, s := range base.Scenarios {
		if !s.Skipped && s.Error == "" {
			baseMean[s.Name] = s.Summary.Mean
		}
	}
	r.Comparisons = r.Comparisons[:0]
	for _, p := range r.Profiles {
		if p.Name == BaselineProfile {
			continue
		}
		for _, s := range p.Scenarios {
			bm, ok := baseMean[s.Name]
			if !ok || s.Skipped || s.Error != "" {
				continue
			}
			sp := Speedup(bm, s.Summary.Mean)
			r.Comparisons = append(r.Comparisons, Comparison{
				Scenario:     s.Name,
				Profile:      p.Name,
				BaselineMean: bm,
				ProfileMean:  s.Summary.Mean,
				Speedup:      sp,
				Faster:       sp > 1,
			})
		}
	}
}

const ResultFile = "result.json"

// WriteResult serializes r into dir/result.json, creating dir if needed.
func WriteResult(dir string, r *Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Trace(err)
	}
	f, err := os.OpenFile(filepath.Join(dir, ResultFile), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return errors.Trace(enc.Encode(r))
}

// ReadResult loads a result.json written by WriteResult.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	r := new(Result)
	if err := json.Unmarshal(data, r); err != nil {
		return nil, errors.Trace(err)
	}
	return r, nil
}
