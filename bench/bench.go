// Package bench is the core of the benchmark harness: it loads the fixed
// e-commerce dataset into a relational store, runs the query battery
// without indexes, applies index profiles, re-runs, and reports timings.
package bench

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/yilin0518/Advanced-DB/store"
)

// Phase is the orchestrator's position in the run lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSchemaReady
	PhaseLoaded
	PhaseQueriedBaseline
	PhaseIndexApplied
	PhaseQueriedIndexed
	PhaseReported
)

var phaseNameMap = map[Phase]string{
	PhaseIdle:            "Idle",
	PhaseSchemaReady:     "SchemaReady",
	PhaseLoaded:          "Loaded",
	PhaseQueriedBaseline: "QueriedBaseline",
	PhaseIndexApplied:    "IndexApplied",
	PhaseQueriedIndexed:  "QueriedIndexed",
	PhaseReported:        "Reported",
}

func (p Phase) String() string { return phaseNameMap[p] }

// Connection wait loop bounds, matching a store still booting in a
// sibling container.
const (
	connectAttempts = 10
	connectDelay    = 5 * time.Second
)

// Orchestrator drives one complete benchmark run. It owns the run's only
// store connection and releases it on every exit path.
type Orchestrator struct {
	opts  Options
	phase Phase
}

func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{opts: opts, phase: PhaseIdle}
}

// Phase returns the current lifecycle position.
func (o *Orchestrator) Phase() Phase { return o.phase }

func (o *Orchestrator) setPhase(p Phase) {
	o.phase = p
	fmt.Printf("[bench] phase %v\n", p)
}

// Run executes the whole lifecycle. On a fatal error the phase reached is
// stamped into the partial result, which is still written when possible,
// and the partial result is returned alongside the error.
func (o *Orchestrator) Run() (*Result, error) {
	seed := o.opts.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	result := &Result{Seed: seed, StartedAt: time.Now()}

	abort := func(err error) (*Result, error) {
		result.Diagnostics.AbortedPhase = o.phase.String()
		result.Diagnostics.Errors = append(result.Diagnostics.Errors, err.Error())
		result.FinishedAt = time.Now()
		if o.opts.ReportDir != "" {
			if werr := WriteResult(o.opts.ReportDir, result); werr != nil {
				fmt.Printf("[bench] could not write partial result: %v\n", werr)
			}
		}
		return result, err
	}

	conn, err := store.WaitAndConnect(o.opts.Store, connectAttempts, connectDelay)
	if err != nil {
		return abort(err)
	}
	defer func() {
		_ = conn.Close()
		o.setPhase(PhaseIdle)
	}()
	result.Store = StoreInfo{
		Dialect: conn.Dialect().Name(),
		Version: conn.Version(),
		DB:      conn.Opt().DB,
		Label:   conn.Opt().Label,
	}
	fmt.Printf("[bench] connected to %v %v (seed %v)\n", result.Store.Dialect, result.Store.Version, seed)

	loader := NewLoader(conn, o.opts.Load)
	if err := ValidateOrder(tableNames(loader.SelectedTables())); err != nil {
		return abort(err)
	}

	have, err := loader.Present()
	if err != nil {
		return abort(err)
	}
	needLoad := o.opts.Load.Auto
	for _, t := range loader.SelectedTables() {
		if !have[t.Name] {
			needLoad = true
		}
	}

	if needLoad {
		if err := loader.EnsureSchema(); err != nil {
			return abort(err)
		}
		o.setPhase(PhaseSchemaReady)
		stats, err := loader.Run(o.opts.Load.DatasetDir)
		if err != nil {
			result.Load = stats
			return abort(err)
		}
		result.Load = stats
		if have, err = loader.Present(); err != nil {
			return abort(err)
		}
	} else {
		if err := loader.VerifySchema(); err != nil {
			return abort(err)
		}
		o.setPhase(PhaseSchemaReady)
		fmt.Printf("[bench] reusing loaded data (set load.auto to force a reload)\n")
		result.Load = &LoadStats{Reused: true}
	}
	o.setPhase(PhaseLoaded)

	if result.Integrity, err = loader.Integrity(have); err != nil {
		return abort(err)
	}
	for _, c := range result.Integrity {
		if c.Dangling > 0 {
			fmt.Printf("[bench] integrity: %v.%v has %v values missing from %v.%v\n",
				c.Table, c.Column, c.Dangling, c.RefTable, c.RefColumn)
		}
	}

	runner := NewRunner(conn, o.opts.Run, rng)
	scenarios := SelectScenarios(o.opts.Run.Scenarios, o.opts.Run.Kinds)

	pr, errs := runner.RunPass(Profile{Name: BaselineProfile}, scenarios, have)
	result.Profiles = append(result.Profiles, *pr)
	o.collectScenarioErrors(result, errs)
	o.setPhase(PhaseQueriedBaseline)

	im := NewIndexManager(conn)
	for _, p := range o.opts.EffectiveProfiles() {
		builds, err := im.Apply(p, have)
		if err != nil {
			// The pass's queries are lost but the baseline and earlier
			// passes stand, and builds that finished keep their timings.
			result.Diagnostics.Errors = append(result.Diagnostics.Errors,
				fmt.Sprintf("profile %v: %v", p.Name, err))
			fmt.Printf("[bench] skipping profile %v: %v\n", p.Name, err)
			partial := ProfileResult{Name: p.Name, Cache: p.Cache, IndexBuilds: builds}
			for _, b := range builds {
				partial.IndexSeconds += b.Seconds
			}
			result.Profiles = append(result.Profiles, partial)
			if cerr := im.Clear(); cerr != nil {
				return abort(cerr)
			}
			continue
		}
		o.setPhase(PhaseIndexApplied)

		pr, errs := runner.RunPass(p, scenarios, have)
		pr.IndexBuilds = builds
		for _, b := range builds {
			pr.IndexSeconds += b.Seconds
		}
		result.Profiles = append(result.Profiles, *pr)
		o.collectScenarioErrors(result, errs)
		o.setPhase(PhaseQueriedIndexed)

		if err := im.Clear(); err != nil {
			return abort(err)
		}
	}

	result.BuildComparisons()
	result.FinishedAt = time.Now()
	if o.opts.ReportDir != "" {
		if err := WriteResult(o.opts.ReportDir, result); err != nil {
			return abort(err)
		}
		fmt.Printf("[bench] result written to %v/%v\n", o.opts.ReportDir, ResultFile)
	}
	o.setPhase(PhaseReported)
	return result, nil
}

func (o *Orchestrator) collectScenarioErrors(result *Result, errs []error) {
	for _, err := range errs {
		result.Diagnostics.Errors = append(result.Diagnostics.Errors, err.Error())
	}
	for _, p := range result.Profiles[len(result.Profiles)-1:] {
		for _, s := range p.Scenarios {
			result.Diagnostics.Retries += s.Retries
			if s.Skipped {
				result.Diagnostics.SkippedScenarios = appendUnique(
					result.Diagnostics.SkippedScenarios, p.Name+"/"+s.Name)
			}
		}
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
