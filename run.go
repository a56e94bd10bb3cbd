package isingpost

import "math"

// Level holds the per-level smoothing configuration of a multigrid cycle:
// the number of pre- and post-smoothing HMC sweeps applied on that level.
type Level struct {
	NuPre  int
	NuPost int
}

// Run is the immutable record of one simulation: the coupling it ran at, the
// lattice it ran on, the multigrid tuning parameters, the wall-clock cost per
// update, and the measured observables. Constructed once by the loader (or by
// tests) and only read afterwards.
type Run struct {
	// Path is the source file the run was loaded from, for diagnostics.
	Path string

	// Beta is the inverse-temperature-defining coupling.
	Beta float64

	// GridSize is the lattice site count (side^2 for a square lattice).
	GridSize int

	// Gamma is the cycle-type parameter: 1 = V-cycle, >1 = W-cycle.
	Gamma int

	// TickTime is the wall-clock time per update, in seconds.
	TickTime float64

	// InterpolationType names the coarse-to-fine interpolation stencil.
	InterpolationType string

	// Levels holds the smoothing configuration per grid level; Levels[0] is
	// the base (finest) grid. A run with only the base level is plain HMC.
	Levels []Level

	// Observables maps observable name to its measured record.
	Observables map[string]Observable
}

// Class partitions runs by sampling algorithm.
type Class string

const (
	// ClassSingleLevel marks plain HMC runs (no grid levels beyond the base).
	ClassSingleLevel Class = "HMC"

	// ClassMultilevel marks MLHMC runs (at least one additional level).
	ClassMultilevel Class = "MLHMC"
)

// Class returns the algorithm class of the run. The cycle-type parameter
// gamma never changes the class, only the label.
func (r *Run) Class() Class {
	if len(r.Levels) > 1 {
		return ClassMultilevel
	}
	return ClassSingleLevel
}

// CycleLabel returns the display label of the run, refining the multilevel
// class by traversal pattern: gamma = 1 is a V-cycle, gamma > 1 a W-cycle.
func (r *Run) CycleLabel() string {
	if r.Class() == ClassSingleLevel {
		return "HMC"
	}
	if r.Gamma > 1 {
		return "MLHMC W-cycle"
	}
	return "MLHMC V-cycle"
}

// SideLength returns the linear system size l = sqrt(site count), the
// independent variable of the volume-scaling study.
func (r *Run) SideLength() float64 {
	return math.Sqrt(float64(r.GridSize))
}

// Observable looks up a measured observable by name.
func (r *Run) Observable(name string) (Observable, bool) {
	obs, ok := r.Observables[name]
	return obs, ok
}

// Tau returns the integrated-autocorrelation-time estimate of the named
// observable, if the run recorded one.
func (r *Run) Tau(name string) (TauEstimate, bool) {
	obs, ok := r.Observables[name]
	if !ok || obs.Tau == nil {
		return TauEstimate{}, false
	}
	return *obs.Tau, true
}

// LevelAt returns the smoothing configuration of grid level i, or false when
// the run has no such level.
func (r *Run) LevelAt(i int) (Level, bool) {
	if i < 0 || i >= len(r.Levels) {
		return Level{}, false
	}
	return r.Levels[i], true
}
