// Command isingpost post-processes MLHMC run directories: it fits the
// autocorrelation-time scaling, emits exact thermodynamic-limit curves,
// dumps autocorrelation windows, and verifies the closed-form numerics.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/hklemm/isingpost"
)

func init() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		}),
	))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("isingpost failed", "err", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	dataDir    string
	observable string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "isingpost",
		Short:         "Post-process lattice Monte-Carlo (HMC/MLHMC) run output",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "run directory (overrides config)")
	root.PersistentFlags().StringVar(&opts.observable, "observable", "", "observable name (overrides config)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	root.AddCommand(
		newScalingCmd(opts),
		newCurvesCmd(opts),
		newAutocorrCmd(opts),
		newVerifyCmd(),
	)
	return root
}

// load resolves the configuration and applies flag overrides.
func (o *options) load() (isingpost.Config, error) {
	cfg, err := isingpost.LoadConfig(o.configPath)
	if err != nil {
		return isingpost.Config{}, err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.observable != "" {
		cfg.Observable = o.observable
	}
	return cfg, cfg.Validate()
}

// openOutput returns the destination writer and a close function.
func (o *options) openOutput() (io.Writer, func() error, error) {
	if o.output == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(o.output)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newScalingCmd(opts *options) *cobra.Command {
	var biasCorrected bool

	cmd := &cobra.Command{
		Use:   "scaling",
		Short: "Fit tau = a * l^z per algorithm class and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if biasCorrected {
				cfg.BiasCorrected = true
			}

			runs, err := isingpost.LoadDir(cfg.DataDir, slog.Default())
			if err != nil {
				return err
			}
			slog.Info("loaded runs", "dir", cfg.DataDir, "count", len(runs))

			groups, err := isingpost.AggregateBySize(runs, cfg.Aggregate())
			if err != nil {
				return err
			}
			fits, fitErr := isingpost.FitScaling(groups, cfg.Observable)
			if fitErr != nil {
				slog.Warn("some fits failed", "err", fitErr)
			}
			if len(fits) == 0 {
				return fmt.Errorf("no fit group succeeded: %w", fitErr)
			}

			summaries, err := isingpost.SummarizeClasses(runs, cfg.Observable)
			if err != nil {
				return err
			}

			w, closeFn, err := opts.openOutput()
			if err != nil {
				return err
			}
			defer closeFn()
			return isingpost.WriteFitReport(w, cfg.Observable, fits, summaries)
		},
	}
	cmd.Flags().BoolVar(&biasCorrected, "bias-corrected", false, "fit tau + bias instead of the raw estimate")
	return cmd
}

func newCurvesCmd(opts *options) *cobra.Command {
	var which string

	cmd := &cobra.Command{
		Use:   "curves",
		Short: "Emit an exact thermodynamic-limit curve as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			var points []isingpost.CurvePoint
			switch which {
			case "magnetization":
				points = isingpost.MagnetizationCurve(cfg.BetaMin, cfg.BetaMax, cfg.BetaSteps)
			case "magnetization-squared":
				slog.Warn("magnetization-squared curve is the squared exact curve, not an independent closed form")
				points = isingpost.MagnetizationSquaredCurve(cfg.BetaMin, cfg.BetaMax, cfg.BetaSteps)
			case "energy":
				points = isingpost.InternalEnergyCurve(cfg.BetaMin, cfg.BetaMax, cfg.BetaSteps)
			case "specific-heat":
				points = isingpost.SpecificHeatCurve(cfg.BetaMin, cfg.BetaMax, cfg.BetaSteps)
			default:
				return fmt.Errorf("unknown curve %q (magnetization, magnetization-squared, energy, specific-heat)", which)
			}

			w, closeFn, err := opts.openOutput()
			if err != nil {
				return err
			}
			defer closeFn()
			return isingpost.WriteCurveCSV(w, points)
		},
	}
	cmd.Flags().StringVar(&which, "curve", "magnetization", "which curve to emit")
	return cmd
}

func newAutocorrCmd(opts *options) *cobra.Command {
	var runPath string

	cmd := &cobra.Command{
		Use:   "autocorr",
		Short: "Dump the lag-indexed autocorrelation window of one run as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if runPath == "" {
				return fmt.Errorf("--run is required")
			}

			run, err := isingpost.LoadRun(runPath)
			if err != nil {
				return err
			}
			obs, ok := run.Observable(cfg.Observable)
			if !ok {
				return fmt.Errorf("run %s has no observable %q", runPath, cfg.Observable)
			}
			curve := obs.AutoCorrWindow(cfg.MaxLag)
			if len(curve) == 0 {
				return fmt.Errorf("run %s recorded no autocorrelation for %q", runPath, cfg.Observable)
			}

			w, closeFn, err := opts.openOutput()
			if err != nil {
				return err
			}
			defer closeFn()
			return isingpost.WriteAutoCorrCSV(w, curve)
		},
	}
	cmd.Flags().StringVar(&runPath, "run", "", "path to a single out_*.json run file")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the exact-solution library against tabulated reference values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := isingpost.VerifyExact(); err != nil {
				return err
			}
			for _, check := range isingpost.ReferenceChecks() {
				slog.Info("reference check passed", "name", check.Name, "got", check.Got)
			}
			return nil
		},
	}
}
