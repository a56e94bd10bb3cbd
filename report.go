package isingpost

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
)

// Plain-text outputs: the fit report in the line format the study's
// downstream tooling greps for, per-class run summaries, and CSV tables of
// curves for the rendering collaborator.

// ClassSummary aggregates the wall-clock and autocorrelation statistics of
// all runs in one algorithm class.
type ClassSummary struct {
	Class          Class
	Runs           int
	MeanTickTime   float64
	StdDevTickTime float64
	MedianTau      float64
}

// SummarizeClasses computes a ClassSummary per algorithm class present in
// the batch, restricted to runs carrying a tau estimate for the observable.
func SummarizeClasses(runs []*Run, observable string) ([]ClassSummary, error) {
	ticks := make(map[Class][]float64)
	taus := make(map[Class][]float64)
	for _, run := range runs {
		tau, ok := run.Tau(observable)
		if !ok {
			continue
		}
		class := run.Class()
		ticks[class] = append(ticks[class], run.TickTime)
		taus[class] = append(taus[class], tau.Time)
	}
	if len(ticks) == 0 {
		return nil, fmt.Errorf("%w: observable %q", ErrNoRuns, observable)
	}

	classes := make([]Class, 0, len(ticks))
	for class := range ticks {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	summaries := make([]ClassSummary, 0, len(classes))
	for _, class := range classes {
		mean, err := stats.Mean(ticks[class])
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", class, err)
		}
		sd, err := stats.StandardDeviation(ticks[class])
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", class, err)
		}
		median, err := stats.Median(taus[class])
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", class, err)
		}
		summaries = append(summaries, ClassSummary{
			Class:          class,
			Runs:           len(ticks[class]),
			MeanTickTime:   mean,
			StdDevTickTime: sd,
			MedianTau:      median,
		})
	}
	return summaries, nil
}

// WriteFitReport writes the scaling-fit results as plain text, one line per
// class in the historical format:
//
//	HMC magnetization a = 2.031 +- 0.052 z = 1.018 +- 0.031 chi2 = 0.974
//
// followed by one summary line per class when summaries are supplied.
// Classes are emitted in lexical order so the report is deterministic.
func WriteFitReport(w io.Writer, observable string, fits map[Class]FitResult, summaries []ClassSummary) error {
	classes := make([]Class, 0, len(fits))
	for class := range fits {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	for _, class := range classes {
		fit := fits[class]
		_, err := fmt.Fprintf(w, "%s %s a = %g +- %g z = %g +- %g chi2 = %g\n",
			class, observable,
			fit.Amplitude, fit.AmplitudeErr,
			fit.Exponent, fit.ExponentErr,
			fit.ReducedChiSquare)
		if err != nil {
			return err
		}
	}

	for _, s := range summaries {
		_, err := fmt.Fprintf(w, "%s runs = %d tick = %g +- %g median tau = %g\n",
			s.Class, s.Runs, s.MeanTickTime, s.StdDevTickTime, s.MedianTau)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteCurveCSV writes exact-curve samples as a beta,inverse_beta,value
// table for the rendering collaborator.
func WriteCurveCSV(w io.Writer, points []CurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"beta", "inverse_beta", "value"}); err != nil {
		return err
	}
	for _, p := range points {
		record := []string{
			strconv.FormatFloat(p.Beta, 'g', -1, 64),
			strconv.FormatFloat(p.InverseBeta, 'g', -1, 64),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSeriesCSV writes a measured series as an x,y,yerr table.
func WriteSeriesCSV(w io.Writer, s Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y", "yerr"}); err != nil {
		return err
	}
	for _, p := range s.Points {
		record := []string{
			strconv.FormatFloat(p.X, 'g', -1, 64),
			strconv.FormatFloat(p.Y, 'g', -1, 64),
			strconv.FormatFloat(p.Err, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAutoCorrCSV writes a lag-indexed autocorrelation window as a
// lag,value table.
func WriteAutoCorrCSV(w io.Writer, curve []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"lag", "value"}); err != nil {
		return err
	}
	for lag, v := range curve {
		record := []string{
			strconv.Itoa(lag),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
