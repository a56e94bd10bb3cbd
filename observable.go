package isingpost

import (
	"math"
	"sort"
)

// Sentinel values for unusable bootstrap statistics.
//
// Bootstrap estimation over too few samples occasionally blows up and the
// run files then carry Inf/NaN attributes. Those must never reach a fit or a
// plot, so sanitization replaces them with deliberately out-of-range
// sentinels that downstream consumers can detect and exclude (a physical
// observable of this model lies in [-2, 2], an error bar is non-negative
// and small).
const (
	// SentinelValue replaces a mean that is infinite or beyond SanityLimit.
	SentinelValue = -42.0

	// SentinelError replaces a standard error whose variance is infinite,
	// NaN, or beyond SanityLimit.
	SentinelError = 42.0

	// SanityLimit is the magnitude above which a bootstrap statistic is
	// treated as an estimation failure even when finite.
	SanityLimit = 1e200
)

// Sanitize converts a raw bootstrap (mean, variance) pair into a safe
// (value, stderr) pair.
//
//	value  = mean            unless mean is Inf or |mean| > SanityLimit -> SentinelValue
//	stderr = sqrt(variance)  unless variance is Inf, NaN or > SanityLimit -> SentinelError
//
// A NaN mean also maps to SentinelValue: it is as unusable as an infinity.
func Sanitize(mean, variance float64) (value, stderr float64) {
	value = mean
	if math.IsInf(mean, 0) || math.IsNaN(mean) || math.Abs(mean) > SanityLimit {
		value = SentinelValue
	}

	stderr = SentinelError
	if !math.IsInf(variance, 0) && !math.IsNaN(variance) && variance <= SanityLimit && variance >= 0 {
		stderr = math.Sqrt(variance)
	}
	return value, stderr
}

// Usable reports whether a sanitized value is a real measurement rather than
// the sentinel.
func Usable(value float64) bool {
	return value != SentinelValue
}

// Estimate is a bootstrap mean/variance pair for one observable.
type Estimate struct {
	Mean     float64
	Variance float64
}

// Sanitized returns the estimate as a safe (value, stderr) pair.
func (e Estimate) Sanitized() (value, stderr float64) {
	return Sanitize(e.Mean, e.Variance)
}

// Checkpoint identifies a partial-run bootstrap estimate by the sample range
// it was computed over: samples [First, Last) of the chain.
type Checkpoint struct {
	First int
	Last  int
}

// Span is the number of samples the checkpoint covers.
func (c Checkpoint) Span() int { return c.Last - c.First }

// TauEstimate is the integrated autocorrelation time of one observable:
// the point estimate, its finite-sample truncation bias, and its statistical
// error.
type TauEstimate struct {
	Time      float64
	Bias      float64
	StatError float64
}

// Corrected returns the bias-corrected autocorrelation time.
func (t TauEstimate) Corrected() float64 { return t.Time + t.Bias }

// Observable is a named scalar measured quantity attached to one run. The
// base estimate is the full-chain bootstrap result; Checkpoints holds
// partial-run variants keyed by their sample range. Tau and the raw
// autocorrelation sequence are optional.
type Observable struct {
	Name        string
	Base        Estimate
	Checkpoints map[Checkpoint]Estimate
	Tau         *TauEstimate
	AutoCorr    []float64
}

// Best returns the preferred estimate: the checkpoint with the largest
// declared sample range (ties broken by the larger end index), falling back
// to the unsuffixed base estimate when no checkpoint exists.
func (o Observable) Best() Estimate {
	best := o.Base
	var bestKey Checkpoint
	found := false
	for key, est := range o.Checkpoints {
		if !found || key.Span() > bestKey.Span() ||
			(key.Span() == bestKey.Span() && key.Last > bestKey.Last) {
			best, bestKey, found = est, key, true
		}
	}
	return best
}

// Sanitized returns the preferred estimate as a safe (value, stderr) pair.
func (o Observable) Sanitized() (value, stderr float64) {
	return o.Best().Sanitized()
}

// AutoCorrWindow returns the raw lag-indexed autocorrelation sequence
// truncated to lags [0, maxLag). maxLag <= 0 or beyond the recorded length
// returns the full sequence. The slice aliases the stored data; callers must
// not mutate it.
func (o Observable) AutoCorrWindow(maxLag int) []float64 {
	if maxLag <= 0 || maxLag > len(o.AutoCorr) {
		return o.AutoCorr
	}
	return o.AutoCorr[:maxLag]
}

// CheckpointKeys returns the recorded checkpoints ordered by span, smallest
// first. Useful for plotting how the tau estimate drifts as the chain grows.
func (o Observable) CheckpointKeys() []Checkpoint {
	keys := make([]Checkpoint, 0, len(o.Checkpoints))
	for key := range o.Checkpoints {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Span() != keys[j].Span() {
			return keys[i].Span() < keys[j].Span()
		}
		return keys[i].Last < keys[j].Last
	})
	return keys
}
