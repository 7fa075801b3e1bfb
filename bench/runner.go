package bench

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/store"
)

// Runner executes the query battery against one store, one profile at a
// time. Scenarios run strictly sequentially; the measured interval spans
// submission to full materialization of the result set.
type Runner struct {
	conn store.Conn
	opts RunOptions
	rng  *rand.Rand
}

func NewRunner(conn store.Conn, opts RunOptions, rng *rand.Rand) *Runner {
	return &Runner{conn: conn, opts: opts, rng: rng}
}

// RunPass executes every runnable scenario under the given profile and
// returns the pass result plus the scenario-level errors it survived.
func (r *Runner) RunPass(p Profile, scenarios []Scenario, have map[string]bool) (*ProfileResult, []error) {
	pr := &ProfileResult{Name: p.Name, Cache: p.Cache}
	var cache *queryCache
	if p.Cache {
		cache = newQueryCache(r.conn.Dialect().Name(), time.Duration(r.opts.CacheTTL)*time.Second)
		cache.Flush()
	}
	var errs []error
	fmt.Printf("[bench] pass %v: %d scenarios x %d repetitions\n", p.Name, len(scenarios), r.opts.Repetitions)
	for _, s := range scenarios {
		sr, err := r.runScenario(p.Name, s, have, cache)
		pr.Scenarios = append(pr.Scenarios, sr)
		if err != nil {
			errs = append(errs, err)
		}
	}
	if cache != nil {
		pr.CacheHits = cache.Hits()
		pr.CacheMisses = cache.Misses()
		fmt.Printf("[bench] pass %v cache: %d hits / %d misses\n", p.Name, pr.CacheHits, pr.CacheMisses)
	}
	return pr, errs
}

func (r *Runner) runScenario(profile string, s Scenario, have map[string]bool, cache *queryCache) (ScenarioResult, error) {
	sr := ScenarioResult{Name: s.Name, Kind: s.Kind.String()}
	if !s.Runnable(have) {
		sr.Skipped = true
		sr.Reason = "required table not loaded"
		fmt.Printf("[bench]   %v: skipped (%v)\n", s.Name, sr.Reason)
		return sr, nil
	}
	sql := s.Build(r.conn.Dialect())
	sr.SQL = sql

	var pool []interface{}
	if s.Sample != nil {
		var err error
		pool, err = r.samplePool(s.Sample)
		if err != nil {
			sr.Error = err.Error()
			return sr, &ScenarioExecutionError{Scenario: s.Name, Profile: profile, Attempts: 1, Err: err}
		}
		if len(pool) == 0 {
			sr.Skipped = true
			sr.Reason = fmt.Sprintf("no values to sample from %v.%v", s.Sample.Table, s.Sample.Column)
			fmt.Printf("[bench]   %v: skipped (%v)\n", s.Name, sr.Reason)
			return sr, nil
		}
	}

	draw := func() []interface{} {
		if s.Sample == nil {
			return s.Args
		}
		return []interface{}{pool[r.rng.Intn(len(pool))]}
	}

	samples := make([]time.Duration, 0, r.opts.Repetitions)
	for i := 0; i < r.opts.Repetitions; i++ {
		elapsed, err := r.timeOnce(sql, draw(), cache)
		if err != nil {
			// One retry with a freshly drawn parameter, then give up on
			// the scenario and keep what was measured so far.
			sr.Retries++
			elapsed, err = r.timeOnce(sql, draw(), cache)
			if err != nil {
				sr.Samples = toSeconds(samples)
				sr.Summary = Summarize(samples)
				sr.Error = err.Error()
				return sr, &ScenarioExecutionError{Scenario: s.Name, Profile: profile, Attempts: 2, Err: err}
			}
		}
		samples = append(samples, elapsed)
	}
	sr.Samples = toSeconds(samples)
	sr.Summary = Summarize(samples)
	fmt.Printf("[bench]   %v: mean %.4fs over %d reps\n", s.Name, sr.Summary.Mean, sr.Summary.Count)
	return sr, nil
}

// timeOnce measures one execution end to end. With a cache the interval
// covers the whole cache-aside path, hit or miss.
func (r *Runner) timeOnce(sql string, args []interface{}, cache *queryCache) (time.Duration, error) {
	begin := time.Now()
	if cache != nil {
		key := cache.Key(sql, args)
		if _, ok := cache.Get(key); ok {
			return time.Since(begin), nil
		}
		rows, err := r.materialize(sql, args)
		if err != nil {
			return 0, err
		}
		cache.Put(key, rows)
		return time.Since(begin), nil
	}
	if _, err := r.materialize(sql, args); err != nil {
		return 0, err
	}
	return time.Since(begin), nil
}

// materialize runs the query and drains the whole result set, so timing
// includes transfer and scan, not just server latency to first row.
func (r *Runner) materialize(sql string, args []interface{}) ([][]interface{}, error) {
	rows, err := r.conn.Query(sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Trace(err)
	}
	var out [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Trace(err)
		}
		out = append(out, vals)
	}
	return out, errors.Trace(rows.Err())
}

// samplePool scans the leading rows of the sampled column and draws the
// parameter pool from them without replacement.
func (r *Runner) samplePool(s *Sampler) ([]interface{}, error) {
	d := r.conn.Dialect()
	pfx, sfx := d.Limit(r.opts.SampleScan)
	q := fmt.Sprintf("SELECT %v%v FROM %v%v", pfx, d.QuoteIdent(s.Column), d.QuoteIdent(s.Table), sfx)
	rows, err := r.conn.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var all []interface{}
	for rows.Next() {
		var v interface{}
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Trace(err)
		}
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		if v != nil {
			all = append(all, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	k := r.opts.SamplePool
	if k > len(all) {
		k = len(all)
	}
	pool := make([]interface{}, 0, k)
	for _, idx := range r.rng.Perm(len(all))[:k] {
		pool = append(pool, all[idx])
	}
	return pool, nil
}

func toSeconds(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.Seconds()
	}
	return out
}
