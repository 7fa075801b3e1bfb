// Package report renders a written benchmark result into a markdown
// summary with comparison tables and latency charts.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/bench"
)

const ReportFile = "report.md"

// Render writes report.md plus its chart files into dir.
func Render(dir string, r *bench.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Trace(err)
	}
	var buf bytes.Buffer

	buf.WriteString("# Olist Benchmark Report\n\n")
	fmt.Fprintf(&buf, "- store: %v %v (db `%v`)\n", r.Store.Dialect, r.Store.Version, r.Store.DB)
	if r.Store.Label != "" {
		fmt.Fprintf(&buf, "- label: %v\n", r.Store.Label)
	}
	fmt.Fprintf(&buf, "- seed: %v\n", r.Seed)
	fmt.Fprintf(&buf, "- started: %v, total %.1fs\n",
		r.StartedAt.Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Seconds())

	writeLoadSection(&buf, r)
	writeIntegritySection(&buf, r)
	writeIndexSection(&buf, r)
	writeLatencySection(&buf, r)
	writeComparisonSection(&buf, r)
	writeDiagnosticsSection(&buf, r)

	barPath, err := DrawLatencyBars(dir, r)
	if err != nil {
		return err
	}
	if barPath != "" {
		fmt.Fprintf(&buf, "\n![mean latency](%v)\n", path.Base(barPath))
	}
	scatterPaths, err := DrawSampleScatters(dir, r)
	if err != nil {
		return err
	}
	if len(scatterPaths) > 0 {
		buf.WriteString("\n## Repetition scatter\n\n")
		for _, p := range scatterPaths {
			fmt.Fprintf(&buf, "![samples](%v)\n", path.Base(p))
		}
	}

	return errors.Trace(os.WriteFile(path.Join(dir, ReportFile), buf.Bytes(), 0644))
}

func writeLoadSection(buf *bytes.Buffer, r *bench.Result) {
	if r.Load == nil {
		return
	}
	buf.WriteString("\n## Load\n\n")
	if r.Load.Reused {
		buf.WriteString("Data already present, load skipped.\n")
		return
	}
	buf.WriteString("| Table | Read | Inserted | Skipped | Seconds | Rows/s |\n")
	buf.WriteString("| ---- | ---- | ---- | ---- | ---- | ---- |\n")
	for _, t := range r.Load.Tables {
		if t.SourceMissing {
			fmt.Fprintf(buf, "| %v | - | - | - | - | source missing |\n", t.Table)
			continue
		}
		fmt.Fprintf(buf, "| %v | %d | %d | %d | %.2f | %.0f |\n",
			t.Table, t.RowsRead, t.RowsInserted, t.RowsSkipped, t.Seconds, t.RowsPerSec)
	}
	fmt.Fprintf(buf, "| total | %d | %d | %d | %.2f | |\n",
		r.Load.TotalRead, r.Load.TotalInserted, r.Load.TotalSkipped, r.Load.TotalSeconds)
}

func writeIntegritySection(buf *bytes.Buffer, r *bench.Result) {
	if len(r.Integrity) == 0 {
		return
	}
	buf.WriteString("\n## Referential integrity\n\n")
	buf.WriteString("| Reference | Dangling |\n")
	buf.WriteString("| ---- | ---- |\n")
	for _, c := range r.Integrity {
		fmt.Fprintf(buf, "| %v.%v -> %v.%v | %d |\n", c.Table, c.Column, c.RefTable, c.RefColumn, c.Dangling)
	}
}

func writeIndexSection(buf *bytes.Buffer, r *bench.Result) {
	wrote := false
	for _, p := range r.Profiles {
		if len(p.IndexBuilds) == 0 {
			continue
		}
		if !wrote {
			buf.WriteString("\n## Index builds\n\n")
			buf.WriteString("| Profile | Index | Table | Seconds |\n")
			buf.WriteString("| ---- | ---- | ---- | ---- |\n")
			wrote = true
		}
		for _, b := range p.IndexBuilds {
			if b.AlreadyExisted {
				fmt.Fprintf(buf, "| %v | %v | %v | existing |\n", p.Name, b.Name, b.Table)
				continue
			}
			if b.TableMissing {
				fmt.Fprintf(buf, "| %v | %v | %v | table not loaded |\n", p.Name, b.Name, b.Table)
				continue
			}
			fmt.Fprintf(buf, "| %v | %v | %v | %.2f |\n", p.Name, b.Name, b.Table, b.Seconds)
		}
	}
}

func writeLatencySection(buf *bytes.Buffer, r *bench.Result) {
	for _, p := range r.Profiles {
		if len(p.Scenarios) == 0 {
			// Index application failed, no queries ran under this pass.
			continue
		}
		fmt.Fprintf(buf, "\n## Pass: %v\n\n", p.Name)
		if p.Cache {
			fmt.Fprintf(buf, "Query cache enabled: %d hits / %d misses.\n\n", p.CacheHits, p.CacheMisses)
		}
		buf.WriteString("| Scenario | Kind | Mean | Median | Stddev | Min | Max | P95 |\n")
		buf.WriteString("| ---- | ---- | ---- | ---- | ---- | ---- | ---- | ---- |\n")
		for _, s := range p.Scenarios {
			if s.Skipped {
				fmt.Fprintf(buf, "| %v | %v | skipped: %v | | | | | |\n", s.Name, s.Kind, s.Reason)
				continue
			}
			if s.Error != "" {
				fmt.Fprintf(buf, "| %v | %v | failed: %v | | | | | |\n", s.Name, s.Kind, s.Error)
				continue
			}
			sm := s.Summary
			fmt.Fprintf(buf, "| %v | %v | %.4f | %.4f | %.4f | %.4f | %.4f | %.4f |\n",
				s.Name, s.Kind, sm.Mean, sm.Median, sm.Stddev, sm.Min, sm.Max, sm.P95)
		}
	}
}

func writeComparisonSection(buf *bytes.Buffer, r *bench.Result) {
	if len(r.Comparisons) == 0 {
		return
	}
	buf.WriteString("\n## Comparison against baseline\n\n")
	buf.WriteString("| Scenario | Profile | Before (s) | After (s) | Speedup | Faster |\n")
	buf.WriteString("| ---- | ---- | ---- | ---- | ---- | ---- |\n")
	for _, c := range r.Comparisons {
		faster := "yes"
		if !c.Faster {
			faster = "no"
		}
		fmt.Fprintf(buf, "| %v | %v | %.4f | %.4f | %.2fx | %v |\n",
			c.Scenario, c.Profile, c.BaselineMean, c.ProfileMean, c.Speedup, faster)
	}
}

func writeDiagnosticsSection(buf *bytes.Buffer, r *bench.Result) {
	d := r.Diagnostics
	if d.AbortedPhase == "" && len(d.Errors) == 0 && len(d.SkippedScenarios) == 0 && d.Retries == 0 {
		return
	}
	buf.WriteString("\n## Diagnostics\n\n")
	if d.AbortedPhase != "" {
		fmt.Fprintf(buf, "- run aborted in phase %v\n", d.AbortedPhase)
	}
	if d.Retries > 0 {
		fmt.Fprintf(buf, "- %d query retries\n", d.Retries)
	}
	for _, s := range d.SkippedScenarios {
		fmt.Fprintf(buf, "- skipped: %v\n", s)
	}
	for _, e := range d.Errors {
		fmt.Fprintf(buf, "- error: %v\n", e)
	}
}
