package bench_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yilin0518/Advanced-DB/bench"
)

func TestBuildComparisons(t *testing.T) {
	r := &bench.Result{Profiles: []bench.ProfileResult{
		{Name: "no-index", Scenarios: []bench.ScenarioResult{
			{Name: "a", Summary: bench.Summary{Mean: 0.100}},
			{Name: "b", Summary: bench.Summary{Mean: 0.050}},
			{Name: "c", Skipped: true},
		}},
		{Name: "tuned", Scenarios: []bench.ScenarioResult{
			{Name: "a", Summary: bench.Summary{Mean: 0.025}},
			{Name: "b", Error: "connection reset"},
			{Name: "c", Summary: bench.Summary{Mean: 0.010}},
		}},
		{Name: "wide", Scenarios: []bench.ScenarioResult{
			{Name: "a", Summary: bench.Summary{Mean: 0.200}},
		}},
	}}
	r.BuildComparisons()

	// "a" is the only scenario measured in baseline and both later passes;
	// "b" failed under tuned and "c" never got a baseline mean
	if len(r.Comparisons) != 2 {
		t.Fatalf("%+v", r.Comparisons)
	}
	c := r.Comparisons[0]
	if c.Scenario != "a" || c.Profile != "tuned" {
		t.Fatalf("%+v", c)
	}
	if !almostEq(c.Speedup, 4.0) || !c.Faster {
		t.Fatalf("%+v", c)
	}
	c = r.Comparisons[1]
	if c.Profile != "wide" || !almostEq(c.Speedup, 0.5) || c.Faster {
		t.Fatalf("%+v", c)
	}

	// rebuilding does not accumulate
	r.BuildComparisons()
	if len(r.Comparisons) != 2 {
		t.Fatal(len(r.Comparisons))
	}
}

func TestBuildComparisonsNoBaseline(t *testing.T) {
	r := &bench.Result{Profiles: []bench.ProfileResult{
		{Name: "tuned", Scenarios: []bench.ScenarioResult{
			{Name: "a", Summary: bench.Summary{Mean: 0.025}},
		}},
	}}
	r.BuildComparisons()
	if len(r.Comparisons) != 0 {
		t.Fatalf("%+v", r.Comparisons)
	}
}

func TestResultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := &bench.Result{
		Store:     bench.StoreInfo{Dialect: "sqlite", Version: "3.49", DB: "bench"},
		Seed:      7,
		StartedAt: time.Now().Round(time.Second),
		Load:      &bench.LoadStats{TotalInserted: 400},
		Profiles: []bench.ProfileResult{
			{Name: "no-index", Scenarios: []bench.ScenarioResult{
				{
					Name:    "items-by-price",
					Kind:    "range-scan",
					SQL:     "SELECT * FROM order_items WHERE price < 1000",
					Samples: []float64{0.01, 0.02},
					Summary: bench.Summarize([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond}),
				},
			}},
		},
	}
	if err := bench.WriteResult(dir, r); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, bench.ResultFile))
	if err != nil {
		t.Fatal(err)
	}
	// SQL stays readable, no < escaping
	if !strings.Contains(string(raw), "price < 1000") {
		t.Fatal(string(raw))
	}

	got, err := bench.ReadResult(filepath.Join(dir, bench.ResultFile))
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 7 || got.Store.Dialect != "sqlite" || got.Load.TotalInserted != 400 {
		t.Fatalf("%+v", got)
	}
	s := got.Profiles[0].Scenarios[0]
	if s.Name != "items-by-price" || len(s.Samples) != 2 || !almostEq(s.Summary.Mean, 0.015) {
		t.Fatalf("%+v", s)
	}
}
