package report

import (
	"fmt"
	"os"
	"path"

	"github.com/pingcap/errors"
	"github.com/yilin0518/Advanced-DB/bench"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func absDir(dir string) (string, error) {
	if path.IsAbs(dir) {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Trace(err)
	}
	return path.Join(wd, dir), nil
}

// chartScenarios picks the axis: the baseline pass's measured scenarios,
// falling back to the first pass present.
func chartScenarios(r *bench.Result) []string {
	ps := r.Profiles
	if len(ps) == 0 {
		return nil
	}
	src := ps[0]
	if p, ok := r.Profile(bench.BaselineProfile); ok {
		src = *p
	}
	var names []string
	for _, s := range src.Scenarios {
		if !s.Skipped && s.Error == "" {
			names = append(names, s.Name)
		}
	}
	return names
}

// DrawLatencyBars renders mean latency per scenario, one bar group per
// profile, and returns the png path ("" when there is nothing to draw).
func DrawLatencyBars(dir string, r *bench.Result) (string, error) {
	names := chartScenarios(r)
	if len(names) == 0 {
		return "", nil
	}
	p := plot.New()
	p.Title.Text = "mean latency per scenario"
	p.Y.Label.Text = "seconds"
	fontSize := vg.Length(11)
	p.Title.TextStyle.Font.Size = vg.Length(14)
	p.X.Tick.Label.Font.Size = fontSize
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = -0.9
	p.Y.Tick.Label.Font.Size = fontSize
	p.Y.Label.TextStyle.Font.Size = fontSize

	const w = 16.0
	for idx, pass := range r.Profiles {
		if len(pass.Scenarios) == 0 {
			continue
		}
		means := map[string]float64{}
		for _, s := range pass.Scenarios {
			if !s.Skipped && s.Error == "" {
				means[s.Name] = s.Summary.Mean
			}
		}
		vals := make(plotter.Values, len(names))
		for i, n := range names {
			vals[i] = means[n]
		}
		bar, err := plotter.NewBarChart(vals, vg.Points(w))
		if err != nil {
			return "", errors.Trace(err)
		}
		bar.Color = plotutil.Color(idx)
		bar.Offset = vg.Points(float64(idx-(len(r.Profiles)/2)) * w)
		p.Add(bar)
		p.Legend.Add(pass.Name, bar)
	}
	p.Legend.Top = true
	p.NominalX(names...)

	prefix, err := absDir(dir)
	if err != nil {
		return "", err
	}
	pngPath := path.Join(prefix, "latency-bar.png")
	return pngPath, errors.Trace(p.Save(vg.Points(w*float64(len(names)*(len(r.Profiles)+2))), 4*vg.Inch, pngPath))
}

// repPoints plots one pass's samples against their repetition number, so
// warm-up effects show as a falling left edge.
type repPoints []float64

func (r repPoints) Len() int                { return len(r) }
func (r repPoints) XY(k int) (x, y float64) { return float64(k + 1), r[k] }

// DrawSampleScatters renders one repetition scatter per scenario and
// returns the png paths.
func DrawSampleScatters(dir string, r *bench.Result) ([]string, error) {
	names := chartScenarios(r)
	prefix, err := absDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, name := range names {
		p := plot.New()
		p.Title.Text = name + " per repetition"
		p.X.Label.Text = "repetition"
		p.Y.Label.Text = "seconds"
		drew := false
		for idx, pass := range r.Profiles {
			var samples []float64
			for _, s := range pass.Scenarios {
				if s.Name == name && !s.Skipped && s.Error == "" {
					samples = s.Samples
				}
			}
			if len(samples) == 0 {
				continue
			}
			sc, err := plotter.NewScatter(repPoints(samples))
			if err != nil {
				return out, errors.Trace(err)
			}
			sc.GlyphStyle.Radius = 3
			sc.GlyphStyle.Color = plotutil.DarkColors[idx%len(plotutil.DarkColors)]
			sc.GlyphStyle.Shape = plotutil.DefaultGlyphShapes[idx%len(plotutil.DefaultGlyphShapes)]
			p.Add(sc)
			p.Legend.Add(pass.Name, sc)
			drew = true
		}
		if !drew {
			continue
		}
		p.Legend.Top = true
		pngPath := path.Join(prefix, fmt.Sprintf("%v-reps.png", name))
		if err := p.Save(5*vg.Inch, 3*vg.Inch, pngPath); err != nil {
			return out, errors.Trace(err)
		}
		out = append(out, pngPath)
	}
	return out, nil
}
