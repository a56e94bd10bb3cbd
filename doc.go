// Package isingpost post-processes lattice Monte-Carlo simulation output.
//
// # Overview
//
// isingpost reads per-run result records produced by Hybrid Monte Carlo (HMC)
// and Multilevel HMC (MLHMC) simulations of the 2D Ising model, extracts
// scalar observables with their bootstrap statistics, compares measured
// values against the closed-form thermodynamic-limit solutions, and fits
// power laws to the scaling of the integrated autocorrelation time.
//
// # Architecture
//
// The package components (one file per concern):
//
//   - exact.go      - Onsager closed-form observables (magnetization, energy, specific heat)
//   - elliptic.go   - complete elliptic integrals (AGM, squared-modulus convention)
//   - observable.go - bootstrap statistics, sentinel sanitization, checkpoint selection
//   - run.go        - run records, algorithm-class partition, autocorrelation windows
//   - scaling.go    - (x, y, yerr) aggregation and weighted power-law fitting
//   - sweep.go      - smoothing-sweep, level-count and (nu_pre, nu_post) heatmap studies
//   - loader.go     - directory loader for out_*.json run files
//   - report.go     - plain-text fit reports and exact-curve tables
//   - verify.go     - reference-value self-checks against tabulated Onsager values
//   - config.go     - externally injected cutoffs and study parameters
//
// # Quick Start
//
// Load a directory of runs, fit the autocorrelation-time scaling, and print
// the report:
//
//	runs, err := isingpost.LoadDir("volume_exponent", slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := isingpost.DefaultAggregateConfig("magnetization")
//	groups, err := isingpost.AggregateBySize(runs, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fits, err := isingpost.FitScaling(groups, cfg.Observable)
//	if err != nil {
//	    log.Printf("partial fit failure: %v", err)
//	}
//	isingpost.WriteFitReport(os.Stdout, cfg.Observable, fits, nil)
//
// # The scaling fit
//
// The integrated autocorrelation time tau grows with the linear system size l
// as a power law near criticality:
//
//	tau(l) = a · l^z
//
// Where:
//   - l: linear system size, sqrt(lattice site count)
//   - z: dynamical critical exponent (≈ 2 for single-level HMC,
//     ideally ≈ 0 for multilevel sampling)
//   - a: non-universal amplitude
//
// FitPowerLaw minimizes sum(((y_i - a·x_i^z)/yerr_i)^2) over (a, z) and
// reports the coefficient covariance and the reduced chi-square.
//
// # Exact solutions
//
// The thermodynamic-limit curves overlaid on measured data come from the
// Onsager solution at zero external field. The elliptic integrals involved
// take the parameter m = k^2 (squared modulus), matching the convention the
// reference tables use; see elliptic.go before porting values from other
// libraries, since conventions disagree.
//
// # Sentinels
//
// Bootstrap estimation can fail and produce non-finite statistics. Those are
// never propagated: an unusable mean becomes SentinelValue (-42) and an
// unusable error bar becomes SentinelError (42). Both are deliberately
// out-of-range so downstream consumers can detect and exclude them.
//
// # See Also
//
//   - cmd/isingpost - the command-line front end (scaling, curves, autocorr, verify)
//   - examples/     - working code samples
package isingpost
