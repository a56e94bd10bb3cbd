package isingpost

import (
	"fmt"
	"math"
	"sort"
)

// Tuning-parameter studies: how tau and the cost per effectively independent
// sample respond to the multigrid knobs (smoothing sweeps, cycle depth).
// These reproduce the smoothing-sweep, level-count and heatmap analyses of
// the original study; all of them consume only multilevel runs plus a
// single-level baseline for the reference lines.

// Baseline carries the single-level reference a tuning study is compared
// against: the HMC tau and the HMC tick time at the same lattice.
type Baseline struct {
	Tau      TauEstimate
	TickTime float64
}

// FindBaseline picks the first single-level run carrying a tau estimate for
// the observable. Returns false when the batch has no usable HMC reference.
func FindBaseline(runs []*Run, observable string) (Baseline, bool) {
	for _, run := range runs {
		if run.Class() != ClassSingleLevel {
			continue
		}
		if tau, ok := run.Tau(observable); ok {
			return Baseline{Tau: tau, TickTime: run.TickTime}, true
		}
	}
	return Baseline{}, false
}

// SweepStudy groups multilevel runs by their level-1 pre-smoothing count and
// exposes, per group, tau, tick time and cost (tau·tick) against the level-1
// post-smoothing count. Error bars follow the original study convention for
// these plots: statistical error plus bias.
type SweepStudy struct {
	// Tau maps nu_pre -> series of (nu_post, tau, stat+bias).
	Tau map[int]Series

	// TickTime maps nu_pre -> series of (nu_post, tick time); no error bars.
	TickTime map[int]Series

	// Cost maps nu_pre -> series of (nu_post, tau·tick, (stat+bias)·tick).
	Cost map[int]Series
}

// AggregateBySweep builds the smoothing-sweep study for the observable.
// Runs without a second level or without a tau estimate are skipped.
// Returns ErrNoRuns when nothing contributed.
func AggregateBySweep(runs []*Run, observable string) (*SweepStudy, error) {
	study := &SweepStudy{
		Tau:      make(map[int]Series),
		TickTime: make(map[int]Series),
		Cost:     make(map[int]Series),
	}

	for _, run := range runs {
		level1, ok := run.LevelAt(1)
		if !ok {
			continue
		}
		tau, ok := run.Tau(observable)
		if !ok {
			continue
		}

		x := float64(level1.NuPost)
		errBar := tau.StatError + tau.Bias

		appendPoint(study.Tau, level1.NuPre, fmt.Sprintf("nu pre=%d", level1.NuPre),
			Point{X: x, Y: tau.Time, Err: errBar})
		appendPoint(study.TickTime, level1.NuPre, fmt.Sprintf("nu pre=%d", level1.NuPre),
			Point{X: x, Y: run.TickTime})
		appendPoint(study.Cost, level1.NuPre, fmt.Sprintf("nu pre=%d", level1.NuPre),
			Point{X: x, Y: tau.Time * run.TickTime, Err: errBar * run.TickTime})
	}

	if len(study.Tau) == 0 {
		return nil, fmt.Errorf("%w: no multilevel run has observable %q", ErrNoRuns, observable)
	}
	for _, groups := range []map[int]Series{study.Tau, study.TickTime, study.Cost} {
		for key, series := range groups {
			series.sortByX()
			groups[key] = series
		}
	}
	return study, nil
}

func appendPoint(groups map[int]Series, key int, label string, p Point) {
	series := groups[key]
	if series.Label == "" {
		series.Label = label
	}
	series.Points = append(series.Points, p)
	groups[key] = series
}

// LevelStudy is the cycle-depth analysis: tau, tick time and cost against
// the total number of grid levels.
type LevelStudy struct {
	Tau      Series
	TickTime Series
	Cost     Series
}

// AggregateByLevelCount assembles the level-count study from the multilevel
// runs in the batch. X is the total level count (base level included); the
// tau error bars are stat+bias, as in the sweep study.
func AggregateByLevelCount(runs []*Run, observable string) (*LevelStudy, error) {
	study := &LevelStudy{
		Tau:      Series{Label: "tau"},
		TickTime: Series{Label: "tick time"},
		Cost:     Series{Label: "tau * tick"},
	}

	for _, run := range runs {
		if run.Class() != ClassMultilevel {
			continue
		}
		tau, ok := run.Tau(observable)
		if !ok {
			continue
		}
		x := float64(len(run.Levels))
		errBar := tau.StatError + tau.Bias
		study.Tau.Points = append(study.Tau.Points, Point{X: x, Y: tau.Time, Err: errBar})
		study.TickTime.Points = append(study.TickTime.Points, Point{X: x, Y: run.TickTime})
		study.Cost.Points = append(study.Cost.Points,
			Point{X: x, Y: tau.Time * run.TickTime, Err: errBar * run.TickTime})
	}

	if len(study.Tau.Points) == 0 {
		return nil, fmt.Errorf("%w: no multilevel run has observable %q", ErrNoRuns, observable)
	}
	study.Tau.sortByX()
	study.TickTime.sortByX()
	study.Cost.sortByX()
	return study, nil
}

// Heatmap is a dense grid over the distinct level-1 (nu_pre, nu_post)
// values observed in a batch. Cells with no corresponding run hold NaN.
// Rows follow PreSweeps, columns PostSweeps, both ascending.
type Heatmap struct {
	PreSweeps  []int
	PostSweeps []int
	Tau        [][]float64
	TickTime   [][]float64
	Cost       [][]float64
}

// BuildHeatmap assembles the (nu_pre, nu_post) heatmaps of tau, tick time
// and cost for the observable. When several runs land on the same cell the
// last one wins, matching the one-run-per-configuration layout of the study
// directories.
func BuildHeatmap(runs []*Run, observable string) (*Heatmap, error) {
	type cell struct{ pre, post int }
	values := make(map[cell]*Run)
	preSet := make(map[int]bool)
	postSet := make(map[int]bool)

	for _, run := range runs {
		level1, ok := run.LevelAt(1)
		if !ok {
			continue
		}
		if _, ok := run.Tau(observable); !ok {
			continue
		}
		values[cell{level1.NuPre, level1.NuPost}] = run
		preSet[level1.NuPre] = true
		postSet[level1.NuPost] = true
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no multilevel run has observable %q", ErrNoRuns, observable)
	}

	hm := &Heatmap{
		PreSweeps:  sortedKeys(preSet),
		PostSweeps: sortedKeys(postSet),
	}
	hm.Tau = nanGrid(len(hm.PreSweeps), len(hm.PostSweeps))
	hm.TickTime = nanGrid(len(hm.PreSweeps), len(hm.PostSweeps))
	hm.Cost = nanGrid(len(hm.PreSweeps), len(hm.PostSweeps))

	for i, pre := range hm.PreSweeps {
		for j, post := range hm.PostSweeps {
			run, ok := values[cell{pre, post}]
			if !ok {
				continue
			}
			tau, _ := run.Tau(observable)
			hm.Tau[i][j] = tau.Time
			hm.TickTime[i][j] = run.TickTime
			hm.Cost[i][j] = tau.Time * run.TickTime
		}
	}
	return hm, nil
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func nanGrid(rows, cols int) [][]float64 {
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = make([]float64, cols)
		for j := range grid[i] {
			grid[i][j] = math.NaN()
		}
	}
	return grid
}
