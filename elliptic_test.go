package isingpost

import (
	"math"
	"testing"
)

// TestEllipticK_TabulatedValues pins the parameter convention: the argument
// is m = k^2, so K(0.5) must match the A&S table for parameter 1/2, not for
// modulus 1/2.
func TestEllipticK_TabulatedValues(t *testing.T) {
	AssertWithinTolerance(t, "K(0)", EllipticK(0), math.Pi/2, 1e-15)
	AssertWithinTolerance(t, "K(0.5)", EllipticK(0.5), 1.8540746773013719, 1e-12)
	AssertWithinTolerance(t, "K(0.9)", EllipticK(0.9), 2.5780921133481731, 1e-8)

	if !math.IsInf(EllipticK(1), 1) {
		t.Errorf("K(1): expected +Inf, got %g", EllipticK(1))
	}
}

func TestEllipticE_TabulatedValues(t *testing.T) {
	AssertWithinTolerance(t, "E(0)", EllipticE(0), math.Pi/2, 1e-15)
	AssertWithinTolerance(t, "E(0.5)", EllipticE(0.5), 1.3506438810476755, 1e-12)
	AssertWithinTolerance(t, "E(1)", EllipticE(1), 1, 0)
}

// TestElliptic_LegendreRelation checks the identity
// E(m)K(1-m) + E(1-m)K(m) - K(m)K(1-m) = pi/2, which any consistent
// (K, E) pair must satisfy regardless of convention.
func TestElliptic_LegendreRelation(t *testing.T) {
	for _, m := range []float64{0.1, 0.3, 0.5, 0.75, 0.99} {
		got := EllipticE(m)*EllipticK(1-m) + EllipticE(1-m)*EllipticK(m) -
			EllipticK(m)*EllipticK(1-m)
		AssertWithinTolerance(t, "Legendre relation", got, math.Pi/2, 1e-11)
	}
}

func TestElliptic_Monotonicity(t *testing.T) {
	// K increases with m, E decreases with m.
	prevK, prevE := EllipticK(0), EllipticE(0)
	for m := 0.05; m < 1; m += 0.05 {
		k, e := EllipticK(m), EllipticE(m)
		if k <= prevK {
			t.Errorf("K not increasing at m=%g: %g <= %g", m, k, prevK)
		}
		if e >= prevE {
			t.Errorf("E not decreasing at m=%g: %g >= %g", m, e, prevE)
		}
		prevK, prevE = k, e
	}
}

func TestElliptic_DomainErrors(t *testing.T) {
	for _, m := range []float64{-0.1, 1.1, math.NaN()} {
		if !math.IsNaN(EllipticK(m)) {
			t.Errorf("K(%g): expected NaN, got %g", m, EllipticK(m))
		}
		if !math.IsNaN(EllipticE(m)) {
			t.Errorf("E(%g): expected NaN, got %g", m, EllipticE(m))
		}
	}
}
