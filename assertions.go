package isingpost

import (
	"math"
	"testing"
)

// Test helpers for analysis suites built on this package. Exported so
// downstream studies can assert the same properties this repository's own
// tests rely on.

// AssertWithinTolerance fails the test when got deviates from want by more
// than tol.
func AssertWithinTolerance(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s: got %g, want %g (tol %g)", name, got, want, tol)
	}
}

// AssertFitRecovers verifies a fit reproduced known coefficients to a
// relative tolerance.
func AssertFitRecovers(t *testing.T, fit FitResult, amplitude, exponent, relTol float64) {
	t.Helper()
	if math.Abs(fit.Amplitude-amplitude) > relTol*math.Abs(amplitude) {
		t.Errorf("fit %s: amplitude %g, want %g within %g%%",
			fit.Label, fit.Amplitude, amplitude, relTol*100)
	}
	if math.Abs(fit.Exponent-exponent) > relTol*math.Abs(exponent) {
		t.Errorf("fit %s: exponent %g, want %g within %g%%",
			fit.Label, fit.Exponent, exponent, relTol*100)
	}
}

// AssertUsable fails when a sanitized (value, stderr) pair carries a
// sentinel.
func AssertUsable(t *testing.T, value, stderr float64) {
	t.Helper()
	if !Usable(value) {
		t.Errorf("value is the unusable-measurement sentinel %g", value)
	}
	if stderr == SentinelError {
		t.Errorf("stderr is the unusable-error sentinel %g", stderr)
	}
}
