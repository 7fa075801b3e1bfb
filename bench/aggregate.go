package bench

import (
	"math"
	"sort"
	"time"
)

// Summary condenses one scenario's latency samples. All values are
// seconds.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Stddev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Summarize computes count, mean, median, sample standard deviation
// (N-1, zero for fewer than two samples), min, max and tail percentiles.
func Summarize(samples []time.Duration) Summary {
	n := len(samples)
	if n == 0 {
		return Summary{}
	}
	secs := make([]float64, n)
	sum := 0.0
	for i, d := range samples {
		secs[i] = d.Seconds()
		sum += secs[i]
	}
	sort.Float64s(secs)

	mean := sum / float64(n)
	variance := 0.0
	if n > 1 {
		for _, v := range secs {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(n - 1)
	}
	var median float64
	if n%2 == 1 {
		median = secs[n/2]
	} else {
		median = (secs[n/2-1] + secs[n/2]) / 2
	}
	return Summary{
		Count:  n,
		Mean:   mean,
		Median: median,
		Stddev: math.Sqrt(variance),
		Min:    secs[0],
		Max:    secs[n-1],
		P90:    percentile(secs, 0.90),
		P95:    percentile(secs, 0.95),
		P99:    percentile(secs, 0.99),
	}
}

// percentile reads the q-quantile from an ascending slice.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Speedup is baseline mean over indexed mean; 4.0 means the indexed run
// finished in a quarter of the baseline time. Zero when indexed is zero.
func Speedup(baseline, indexed float64) float64 {
	if indexed <= 0 {
		return 0
	}
	return baseline / indexed
}
