package isingpost

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateBySize_Partition(t *testing.T) {
	runs := []*Run{
		singleLevelRun(16*16, TauEstimate{Time: 30, StatError: 1}),
		singleLevelRun(24*24, TauEstimate{Time: 60, StatError: 2}),
		multilevelRun(3*3, 1, 1, 1, TauEstimate{Time: 2, StatError: 0.1}),
		multilevelRun(4*4, 3, 1, 1, TauEstimate{Time: 2.5, StatError: 0.1}),
	}

	groups, err := AggregateBySize(runs, DefaultAggregateConfig("magnetization"))
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Len(t, groups[ClassSingleLevel].Points, 2)
	assert.Len(t, groups[ClassMultilevel].Points, 2)

	// x is the linear system size, points ordered by x.
	hmc := groups[ClassSingleLevel].Points
	assert.InDelta(t, 16, hmc[0].X, 1e-12)
	assert.InDelta(t, 24, hmc[1].X, 1e-12)
	assert.Equal(t, 30.0, hmc[0].Y)
	assert.Equal(t, 1.0, hmc[0].Err)
}

func TestAggregateBySize_Cutoffs(t *testing.T) {
	runs := []*Run{
		singleLevelRun(32*32, TauEstimate{Time: 100, StatError: 1}), // below 33x33, kept
		singleLevelRun(33*33, TauEstimate{Time: 110, StatError: 1}), // at cutoff, dropped
		multilevelRun(4*4, 1, 1, 1, TauEstimate{Time: 2, StatError: 0.1}),  // below 5x5, kept
		multilevelRun(5*5, 1, 1, 1, TauEstimate{Time: 2.2, StatError: 0.1}), // at cutoff, dropped
	}

	groups, err := AggregateBySize(runs, DefaultAggregateConfig("magnetization"))
	require.NoError(t, err)
	assert.Len(t, groups[ClassSingleLevel].Points, 1)
	assert.Len(t, groups[ClassMultilevel].Points, 1)

	// Cutoffs are injected configuration, not constants.
	cfg := DefaultAggregateConfig("magnetization")
	cfg.SingleLevelMaxSites = 50 * 50
	cfg.MultilevelMaxSites = 50 * 50
	groups, err = AggregateBySize(runs, cfg)
	require.NoError(t, err)
	assert.Len(t, groups[ClassSingleLevel].Points, 2)
	assert.Len(t, groups[ClassMultilevel].Points, 2)
}

func TestAggregateBySize_BiasCorrected(t *testing.T) {
	runs := []*Run{
		singleLevelRun(16*16, TauEstimate{Time: 30, Bias: 3, StatError: 1}),
	}

	cfg := DefaultAggregateConfig("magnetization")
	cfg.BiasCorrected = true
	groups, err := AggregateBySize(runs, cfg)
	require.NoError(t, err)
	assert.Equal(t, 33.0, groups[ClassSingleLevel].Points[0].Y)
}

func TestAggregateBySize_SkipsRunsWithoutObservable(t *testing.T) {
	withTau := singleLevelRun(16*16, TauEstimate{Time: 30, StatError: 1})
	without := singleLevelRun(24*24, TauEstimate{})
	without.Observables = map[string]Observable{}

	groups, err := AggregateBySize([]*Run{withTau, without}, DefaultAggregateConfig("magnetization"))
	require.NoError(t, err)
	assert.Len(t, groups[ClassSingleLevel].Points, 1)
}

func TestAggregateBySize_NoUsableRuns(t *testing.T) {
	_, err := AggregateBySize(nil, DefaultAggregateConfig("magnetization"))
	assert.ErrorIs(t, err, ErrNoRuns)

	bare := singleLevelRun(16*16, TauEstimate{})
	bare.Observables = map[string]Observable{}
	_, err = AggregateBySize([]*Run{bare}, DefaultAggregateConfig("magnetization"))
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestFitPowerLaw_RoundTrip(t *testing.T) {
	// y = 3 * x^1.5 with zero noise: the fit must recover the coefficients
	// and a vanishing chi-square.
	s := Series{Label: "synthetic"}
	for _, x := range []float64{2, 4, 8, 16, 32} {
		s.Points = append(s.Points, Point{X: x, Y: 3 * math.Pow(x, 1.5), Err: 0.5})
	}

	fit, err := FitPowerLaw(s)
	require.NoError(t, err)
	AssertFitRecovers(t, fit, 3, 1.5, 1e-6)
	assert.Less(t, fit.ReducedChiSquare, 1e-10)
	assert.Equal(t, 5, fit.Points)

	// Covariance is symmetric and the diagonal matches the reported errors.
	assert.Equal(t, fit.Cov[0][1], fit.Cov[1][0])
	assert.InDelta(t, fit.AmplitudeErr, math.Sqrt(fit.Cov[0][0]), 1e-15)
}

func TestFitPowerLaw_Eval(t *testing.T) {
	fit := FitResult{Label: "HMC", Amplitude: 2, Exponent: 1}
	assert.InDelta(t, 8.0, fit.Eval(4), 1e-12)

	curve := fit.Curve(1, 10, 10)
	assert.Len(t, curve.Points, 10)
	assert.Equal(t, "HMC fit", curve.Label)
	assert.InDelta(t, 2.0, curve.Points[0].Y, 1e-12)
	assert.InDelta(t, 20.0, curve.Points[9].Y, 1e-12)
}

func TestFitPowerLaw_DegenerateInput(t *testing.T) {
	two := Series{Label: "short", Points: []Point{
		{X: 2, Y: 4, Err: 1}, {X: 3, Y: 9, Err: 1},
	}}
	_, err := FitPowerLaw(two)
	assert.ErrorIs(t, err, ErrTooFewPoints)

	zeroErr := Series{Label: "zero", Points: []Point{
		{X: 2, Y: 4, Err: 1}, {X: 3, Y: 9, Err: 0}, {X: 4, Y: 16, Err: 1},
	}}
	_, err = FitPowerLaw(zeroErr)
	assert.ErrorIs(t, err, ErrZeroErrorBar)

	// All points at one x: singular normal equations, reported not returned.
	collinear := Series{Label: "flat", Points: []Point{
		{X: 4, Y: 3.9, Err: 0.1}, {X: 4, Y: 4.0, Err: 0.1}, {X: 4, Y: 4.1, Err: 0.1},
	}}
	_, err = FitPowerLaw(collinear)
	assert.ErrorIs(t, err, ErrSingularFit)
}

func TestFitPowerLaw_ErrorNamesGroup(t *testing.T) {
	s := Series{Label: "MLHMC", Points: []Point{{X: 2, Y: 4, Err: 1}}}
	_, err := FitPowerLaw(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MLHMC")
}

func TestFitScaling_PartialFailure(t *testing.T) {
	groups := map[Class]Series{
		ClassSingleLevel: {Label: "HMC", Points: []Point{
			{X: 4, Y: 8, Err: 0.1}, {X: 8, Y: 16, Err: 0.1}, {X: 16, Y: 32, Err: 0.1},
		}},
		ClassMultilevel: {Label: "MLHMC", Points: []Point{{X: 2, Y: 2, Err: 0.1}}},
	}

	fits, err := FitScaling(groups, "magnetization")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooFewPoints)
	assert.Contains(t, err.Error(), "MLHMC/magnetization")

	// The healthy group still fit.
	require.Contains(t, fits, ClassSingleLevel)
	AssertFitRecovers(t, fits[ClassSingleLevel], 2, 1, 1e-6)
}

// TestScalingPipeline_EndToEnd drives runs -> aggregation -> fit with
// tau = 2*l and a few percent of multiplicative noise; the fitted exponent
// must land within 10% of 1.
func TestScalingPipeline_EndToEnd(t *testing.T) {
	sides := []float64{16, 24, 32, 40, 48}
	noise := []float64{1.02, 0.99, 1.01, 0.98, 1.00}

	var runs []*Run
	for i, l := range sides {
		tau := 2 * l * noise[i]
		runs = append(runs, singleLevelRun(int(l*l), TauEstimate{
			Time:      tau,
			StatError: 0.05 * tau,
		}))
	}

	cfg := DefaultAggregateConfig("magnetization")
	cfg.SingleLevelMaxSites = 50 * 50 // admit the full size range of this study
	groups, err := AggregateBySize(runs, cfg)
	require.NoError(t, err)

	fits, err := FitScaling(groups, cfg.Observable)
	require.NoError(t, err)

	fit := fits[ClassSingleLevel]
	assert.InDelta(t, 1.0, fit.Exponent, 0.1)
	assert.InDelta(t, 2.0, fit.Amplitude, 0.4)
	assert.Greater(t, fit.ExponentErr, 0.0)
}

func TestTemperatureSeries(t *testing.T) {
	good := singleLevelRun(16*16, TauEstimate{})
	good.Beta = 0.5
	good.Observables["magnetization"] = Observable{
		Name: "magnetization",
		Base: Estimate{Mean: 0.9, Variance: 0.0001},
	}

	// Sentinel-valued measurements are excluded from the series.
	broken := singleLevelRun(24*24, TauEstimate{})
	broken.Beta = 0.4
	broken.Observables["magnetization"] = Observable{
		Name: "magnetization",
		Base: Estimate{Mean: math.Inf(1), Variance: 0.0001},
	}

	s, err := TemperatureSeries([]*Run{good, broken}, "magnetization")
	require.NoError(t, err)
	require.Len(t, s.Points, 1)
	assert.InDelta(t, 2.0, s.Points[0].X, 1e-12)
	assert.Equal(t, 0.9, s.Points[0].Y)
	AssertUsable(t, s.Points[0].Y, s.Points[0].Err)

	_, err = TemperatureSeries([]*Run{broken}, "magnetization")
	assert.True(t, errors.Is(err, ErrNoRuns))
}
