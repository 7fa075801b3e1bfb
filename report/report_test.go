package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yilin0518/Advanced-DB/bench"
	"github.com/yilin0518/Advanced-DB/report"
)

func measured(name, kind string, samples ...time.Duration) bench.ScenarioResult {
	secs := make([]float64, len(samples))
	for i, d := range samples {
		secs[i] = d.Seconds()
	}
	return bench.ScenarioResult{
		Name:    name,
		Kind:    kind,
		SQL:     "SELECT 1",
		Samples: secs,
		Summary: bench.Summarize(samples),
	}
}

func syntheticResult() *bench.Result {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := &bench.Result{
		Store:      bench.StoreInfo{Dialect: "sqlite", Version: "3.49.1", DB: "bench", Label: "unit"},
		Seed:       42,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Load: &bench.LoadStats{
			Tables: []bench.TableLoadStats{
				{Table: "customers", RowsRead: 100, RowsInserted: 100, Seconds: 0.2, RowsPerSec: 500},
				{Table: "sellers", SourceMissing: true},
			},
			TotalRead: 100, TotalInserted: 100, TotalSeconds: 0.2,
		},
		Integrity: []bench.IntegrityCheck{
			{Table: "orders", Column: "customer_id", RefTable: "customers", RefColumn: "customer_id"},
		},
		Profiles: []bench.ProfileResult{
			{
				Name: "no-index",
				Scenarios: []bench.ScenarioResult{
					measured("orders-by-customer", "point-lookup",
						20*time.Millisecond, 18*time.Millisecond, 19*time.Millisecond),
					measured("top-cities", "olap-aggregation",
						40*time.Millisecond, 41*time.Millisecond, 39*time.Millisecond),
					{Name: "review-keyword", Kind: "text-search", Skipped: true, Reason: "required table not loaded"},
				},
			},
			{
				Name: "tuned",
				IndexBuilds: []bench.IndexBuild{
					{Name: "idx_orders_customer_id", Table: "orders", Columns: []string{"customer_id"}, Seconds: 0.31},
					{Name: "idx_reviews_comment", Table: "order_reviews", Columns: []string{"review_comment_message"}, TableMissing: true},
				},
				IndexSeconds: 0.31,
				Scenarios: []bench.ScenarioResult{
					measured("orders-by-customer", "point-lookup",
						10*time.Millisecond, 9*time.Millisecond, 11*time.Millisecond),
					measured("top-cities", "olap-aggregation",
						40*time.Millisecond, 40*time.Millisecond, 40*time.Millisecond),
					{Name: "review-keyword", Kind: "text-search", Skipped: true, Reason: "required table not loaded"},
				},
			},
		},
		Diagnostics: bench.Diagnostics{
			SkippedScenarios: []string{"no-index/review-keyword", "tuned/review-keyword"},
		},
	}
	r.BuildComparisons()
	return r
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	if err := report.Render(dir, syntheticResult()); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, report.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	md := string(raw)
	for _, want := range []string{
		"# Olist Benchmark Report",
		"- seed: 42",
		"## Load",
		"| sellers | - | - | - | - | source missing |",
		"## Referential integrity",
		"## Index builds",
		"| tuned | idx_reviews_comment | order_reviews | table not loaded |",
		"## Pass: no-index",
		"## Pass: tuned",
		"| review-keyword | text-search | skipped: required table not loaded |",
		"## Comparison against baseline",
		"| orders-by-customer | tuned |",
		"## Diagnostics",
		"![mean latency](latency-bar.png)",
		"![samples](orders-by-customer-reps.png)",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("report lacks %q:\n%v", want, md)
		}
	}

	for _, png := range []string{"latency-bar.png", "orders-by-customer-reps.png", "top-cities-reps.png"} {
		info, err := os.Stat(filepath.Join(dir, png))
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Fatalf("%v is empty", png)
		}
	}
}

func TestRenderReusedLoad(t *testing.T) {
	dir := t.TempDir()
	r := syntheticResult()
	r.Load = &bench.LoadStats{Reused: true}
	if err := report.Render(dir, r); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, report.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Data already present, load skipped.") {
		t.Fatal(string(raw))
	}
}

func TestRenderFailedProfile(t *testing.T) {
	dir := t.TempDir()
	r := syntheticResult()
	r.Profiles = append(r.Profiles, bench.ProfileResult{
		Name: "broken",
		IndexBuilds: []bench.IndexBuild{
			{Name: "idx_orders_customer_id", Table: "orders", Columns: []string{"customer_id"}, Seconds: 0.12},
		},
		IndexSeconds: 0.12,
	})
	r.Diagnostics.Errors = []string{"profile broken: no such column"}
	if err := report.Render(dir, r); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, report.ReportFile))
	if err != nil {
		t.Fatal(err)
	}
	md := string(raw)
	// the failed pass shows its finished builds and its error, not an
	// empty latency table
	if !strings.Contains(md, "| broken | idx_orders_customer_id | orders | 0.12 |") {
		t.Fatal(md)
	}
	if !strings.Contains(md, "- error: profile broken: no such column") {
		t.Fatal(md)
	}
	if strings.Contains(md, "## Pass: broken") {
		t.Fatal(md)
	}
}

func TestRenderNoProfiles(t *testing.T) {
	dir := t.TempDir()
	r := &bench.Result{Store: bench.StoreInfo{Dialect: "mysql", DB: "olist_db"}}
	if err := report.Render(dir, r); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, report.ReportFile)); err != nil {
		t.Fatal(err)
	}
	// nothing measured, nothing drawn
	if _, err := os.Stat(filepath.Join(dir, "latency-bar.png")); !os.IsNotExist(err) {
		t.Fatal(err)
	}
}
