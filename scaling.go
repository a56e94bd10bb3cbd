package isingpost

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Errors reported by the aggregation and fitting pipeline. Fit failures name
// the offending group via fmt.Errorf("%w", ...) wrapping so a batch can drop
// one fit and keep the rest.
var (
	// ErrTooFewPoints indicates a fit group with fewer than 3 points; the
	// two-parameter power law would be ill-conditioned or exactly determined.
	ErrTooFewPoints = errors.New("isingpost: power-law fit needs at least 3 points")

	// ErrZeroErrorBar indicates a point with yerr == 0 (or non-finite),
	// which makes the 1/yerr weighting meaningless.
	ErrZeroErrorBar = errors.New("isingpost: power-law fit requires finite nonzero error bars")

	// ErrSingularFit indicates singular normal equations (e.g. all points at
	// the same x), surfaced instead of returning nonsense coefficients.
	ErrSingularFit = errors.New("isingpost: power-law fit normal equations are singular")

	// ErrNoRuns indicates that no usable run contributed to a required
	// comparison.
	ErrNoRuns = errors.New("isingpost: no usable runs")
)

// Point is one (x, y, yerr) triple of a fit group.
type Point struct {
	X   float64
	Y   float64
	Err float64
}

// Series is an ordered set of points sharing a label, ready for fitting or
// for handing to a rendering collaborator.
type Series struct {
	Label  string
	Points []Point
}

// sortByX orders the points by the independent variable.
func (s *Series) sortByX() {
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].X < s.Points[j].X })
}

// AggregateConfig controls how runs are partitioned into fit groups. The
// cutoffs are study-specific constants, so they are injected rather than
// hard-coded; the defaults reproduce the published volume-exponent study.
type AggregateConfig struct {
	// Observable names the observable whose tau estimate is aggregated.
	Observable string

	// SingleLevelMaxSites excludes single-level runs at or above this site
	// count from the scaling fit.
	SingleLevelMaxSites int

	// MultilevelMaxSites excludes multilevel runs at or above this site
	// count from the scaling fit.
	MultilevelMaxSites int

	// BiasCorrected selects tau + bias instead of the raw point estimate as
	// the dependent variable.
	BiasCorrected bool
}

// DefaultAggregateConfig returns the cutoffs of the observed study
// configuration: single-level points below 33x33 sites, multilevel points
// below 5x5.
func DefaultAggregateConfig(observable string) AggregateConfig {
	return AggregateConfig{
		Observable:          observable,
		SingleLevelMaxSites: 33 * 33,
		MultilevelMaxSites:  5 * 5,
	}
}

// maxSites returns the size cutoff for the given class.
func (cfg AggregateConfig) maxSites(class Class) int {
	if class == ClassMultilevel {
		return cfg.MultilevelMaxSites
	}
	return cfg.SingleLevelMaxSites
}

// AggregateBySize partitions runs into algorithm classes and assembles the
// (sqrt(sites), tau, yerr) series for the volume-scaling fit. Runs missing
// the observable or its tau estimate are skipped, not fatal; runs at or
// above the per-class size cutoff are excluded. Returns ErrNoRuns when no
// run contributed a single point.
func AggregateBySize(runs []*Run, cfg AggregateConfig) (map[Class]Series, error) {
	groups := make(map[Class]Series)
	for _, run := range runs {
		tau, ok := run.Tau(cfg.Observable)
		if !ok {
			continue
		}
		class := run.Class()
		if run.GridSize >= cfg.maxSites(class) {
			continue
		}

		y := tau.Time
		if cfg.BiasCorrected {
			y = tau.Corrected()
		}

		group := groups[class]
		if group.Label == "" {
			group.Label = string(class)
		}
		group.Points = append(group.Points, Point{
			X:   run.SideLength(),
			Y:   y,
			Err: tau.StatError,
		})
		groups[class] = group
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: observable %q in %d runs", ErrNoRuns, cfg.Observable, len(runs))
	}
	for class, group := range groups {
		group.sortByX()
		groups[class] = group
	}
	return groups, nil
}

// FitResult holds the fitted power-law coefficients for one group.
//
// The model is y = Amplitude · x^Exponent; Cov is the 2x2 coefficient
// covariance (amplitude first), scaled by the residual variance the way
// standard nonlinear least-squares routines report it, and ReducedChiSquare
// is the weighted residual sum of squares over (points - 2).
type FitResult struct {
	Label            string
	Amplitude        float64
	Exponent         float64
	AmplitudeErr     float64
	ExponentErr      float64
	Cov              [2][2]float64
	ReducedChiSquare float64
	Points           int
}

// Eval returns the fitted model value a·x^z.
func (f FitResult) Eval(x float64) float64 {
	return f.Amplitude * math.Pow(x, f.Exponent)
}

// Curve samples the fitted model on n evenly spaced x values in [lo, hi],
// for overlaying on the measured points.
func (f FitResult) Curve(lo, hi float64, n int) Series {
	if n < 2 {
		n = 2
	}
	step := (hi - lo) / float64(n-1)
	s := Series{Label: f.Label + " fit"}
	for i := 0; i < n; i++ {
		x := lo + float64(i)*step
		s.Points = append(s.Points, Point{X: x, Y: f.Eval(x)})
	}
	return s
}

// fitMaxIter bounds the Gauss-Newton refinement. The seed from the log-log
// regression is close for power-law-like data, so convergence is fast.
const fitMaxIter = 200

// fitStepTol terminates the refinement once the relative parameter update
// falls below it.
const fitStepTol = 1e-12

// FitPowerLaw fits y = a·x^z to the series by nonlinear least squares with
// per-point weighting 1/yerr, minimizing
//
//	chi^2(a, z) = sum_i ((y_i - a·x_i^z) / yerr_i)^2
//
// The seed comes from an ordinary least-squares line through (ln x, ln y);
// Gauss-Newton iterations with step halving refine it. Degenerate input is
// an error, never a silent nonsense result: fewer than 3 points returns
// ErrTooFewPoints, a zero or non-finite error bar returns ErrZeroErrorBar,
// and singular normal equations return ErrSingularFit.
func FitPowerLaw(s Series) (FitResult, error) {
	n := len(s.Points)
	if n < 3 {
		return FitResult{}, fmt.Errorf("%w: group %q has %d", ErrTooFewPoints, s.Label, n)
	}
	for _, p := range s.Points {
		if p.Err == 0 || math.IsNaN(p.Err) || math.IsInf(p.Err, 0) {
			return FitResult{}, fmt.Errorf("%w: group %q at x=%g", ErrZeroErrorBar, s.Label, p.X)
		}
		if p.X <= 0 {
			return FitResult{}, fmt.Errorf("%w: group %q has non-positive x=%g", ErrSingularFit, s.Label, p.X)
		}
	}

	a, z := seedPowerLaw(s.Points)
	chi2 := weightedSSR(s.Points, a, z)

	for iter := 0; iter < fitMaxIter; iter++ {
		da, dz, ok := gaussNewtonStep(s.Points, a, z)
		if !ok {
			return FitResult{}, fmt.Errorf("%w: group %q", ErrSingularFit, s.Label)
		}

		// Step halving keeps chi^2 monotone when the full step overshoots.
		stepA, stepZ := da, dz
		improved := false
		for halving := 0; halving < 30; halving++ {
			trial := weightedSSR(s.Points, a+stepA, z+stepZ)
			if trial <= chi2 {
				a, z, chi2 = a+stepA, z+stepZ, trial
				improved = true
				break
			}
			stepA /= 2
			stepZ /= 2
		}
		if !improved {
			break
		}
		if math.Abs(stepA) <= fitStepTol*(math.Abs(a)+fitStepTol) &&
			math.Abs(stepZ) <= fitStepTol*(math.Abs(z)+fitStepTol) {
			break
		}
	}

	cov, ok := covariance(s.Points, a, z, chi2)
	if !ok {
		return FitResult{}, fmt.Errorf("%w: group %q", ErrSingularFit, s.Label)
	}

	return FitResult{
		Label:            s.Label,
		Amplitude:        a,
		Exponent:         z,
		AmplitudeErr:     math.Sqrt(cov[0][0]),
		ExponentErr:      math.Sqrt(cov[1][1]),
		Cov:              cov,
		ReducedChiSquare: chi2 / float64(n-2),
		Points:           n,
	}, nil
}

// seedPowerLaw estimates (a, z) from an unweighted line through
// (ln x, ln y). Non-positive y values are skipped; if nothing remains the
// seed falls back to (1, 1) and Gauss-Newton does the rest.
func seedPowerLaw(points []Point) (a, z float64) {
	var sx, sy, sxx, sxy, cnt float64
	for _, p := range points {
		if p.Y <= 0 {
			continue
		}
		lx, ly := math.Log(p.X), math.Log(p.Y)
		sx += lx
		sy += ly
		sxx += lx * lx
		sxy += lx * ly
		cnt++
	}
	det := cnt*sxx - sx*sx
	if cnt < 2 || math.Abs(det) < 1e-12 {
		return 1, 1
	}
	z = (cnt*sxy - sx*sy) / det
	a = math.Exp((sy - z*sx) / cnt)
	return a, z
}

// weightedSSR is the weighted residual sum of squares at (a, z).
func weightedSSR(points []Point, a, z float64) float64 {
	var ssr float64
	for _, p := range points {
		r := (p.Y - a*math.Pow(p.X, z)) / p.Err
		ssr += r * r
	}
	return ssr
}

// gaussNewtonStep solves the 2x2 normal equations (JtJ)·d = Jt·r via
// Cramer's rule, with J the weighted Jacobian of the model at (a, z).
// Returns ok=false on a singular system.
func gaussNewtonStep(points []Point, a, z float64) (da, dz float64, ok bool) {
	var jaa, jaz, jzz, ra, rz float64
	for _, p := range points {
		pow := math.Pow(p.X, z)
		f := a * pow
		// Weighted partials d f/d a and d f/d z.
		ja := pow / p.Err
		jz := a * pow * math.Log(p.X) / p.Err
		res := (p.Y - f) / p.Err

		jaa += ja * ja
		jaz += ja * jz
		jzz += jz * jz
		ra += ja * res
		rz += jz * res
	}

	det := jaa*jzz - jaz*jaz
	if math.IsNaN(det) || math.Abs(det) <= singularRel*jaa*jzz {
		return 0, 0, false
	}
	da = (ra*jzz - jaz*rz) / det
	dz = (jaa*rz - ra*jaz) / det
	return da, dz, true
}

// singularRel is the relative determinant threshold below which the normal
// matrix is treated as singular. Exactly collinear Jacobian columns (all
// points at one x) leave only float noise in the determinant, orders of
// magnitude below this.
const singularRel = 1e-12

// covariance inverts the normal matrix at the optimum and scales it by the
// residual variance chi^2/(n-2), matching the convention of standard
// curve-fitting routines when absolute errors are not asserted.
func covariance(points []Point, a, z, chi2 float64) ([2][2]float64, bool) {
	var jaa, jaz, jzz float64
	for _, p := range points {
		pow := math.Pow(p.X, z)
		ja := pow / p.Err
		jz := a * pow * math.Log(p.X) / p.Err
		jaa += ja * ja
		jaz += ja * jz
		jzz += jz * jz
	}
	det := jaa*jzz - jaz*jaz
	if math.IsNaN(det) || math.Abs(det) <= singularRel*jaa*jzz {
		return [2][2]float64{}, false
	}

	scale := 1.0
	if n := len(points); n > 2 {
		scale = chi2 / float64(n-2)
	}
	inv := [2][2]float64{
		{jzz / det, -jaz / det},
		{-jaz / det, jaa / det},
	}
	for i := range inv {
		for j := range inv[i] {
			inv[i][j] *= scale
		}
	}
	return inv, true
}

// TemperatureSeries assembles the measured observable against the inverse
// temperature 1/beta, for overlaying on the exact thermodynamic-limit curve.
// Runs missing the observable are skipped; sanitized sentinel values are
// excluded so the series never carries an unusable measurement. Returns
// ErrNoRuns when nothing contributed.
func TemperatureSeries(runs []*Run, observable string) (Series, error) {
	s := Series{Label: observable}
	for _, run := range runs {
		obs, ok := run.Observable(observable)
		if !ok {
			continue
		}
		value, stderr := obs.Sanitized()
		if !Usable(value) {
			continue
		}
		s.Points = append(s.Points, Point{X: 1 / run.Beta, Y: value, Err: stderr})
	}
	if len(s.Points) == 0 {
		return Series{}, fmt.Errorf("%w: observable %q in %d runs", ErrNoRuns, observable, len(runs))
	}
	s.sortByX()
	return s, nil
}

// FitScaling fits every class group and keys the results by class. A failing
// group is reported, naming the class and observable, without aborting the
// remaining fits; the joined error carries one entry per failed group.
func FitScaling(groups map[Class]Series, observable string) (map[Class]FitResult, error) {
	fits := make(map[Class]FitResult, len(groups))
	var errs []error
	for class, series := range groups {
		fit, err := FitPowerLaw(series)
		if err != nil {
			errs = append(errs, fmt.Errorf("fit %s/%s: %w", class, observable, err))
			continue
		}
		fits[class] = fit
	}
	return fits, errors.Join(errs...)
}
