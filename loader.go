package isingpost

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Loader for run-result files. One JSON document per run, named out_*.json,
// mirroring the attribute layout the simulator writes (the hierarchical
// container format itself is a collaborator concern; this loader consumes
// the already-flattened export).
//
// Resource discipline: every file is opened, decoded and closed before the
// next one is touched, with the close deferred inside a helper so a decode
// error can never leak a descriptor across a large study directory.

// runPrefix and runSuffix select run files during a directory scan.
const (
	runPrefix = "out_"
	runSuffix = ".json"
)

// flexFloat decodes a JSON number that may also arrive as the strings
// "inf", "-inf" or "nan": bootstrap estimation failures are recorded that
// way because JSON itself cannot carry non-finite numbers. Sanitization
// downstream turns them into sentinels.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(s) {
		case "inf", "+inf", "infinity":
			*f = flexFloat(math.Inf(1))
		case "-inf", "-infinity":
			*f = flexFloat(math.Inf(-1))
		case "nan":
			*f = flexFloat(math.NaN())
		default:
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid float %q", s)
			}
			*f = flexFloat(v)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// On-disk schema of one run file.
type runFile struct {
	Beta              float64     `json:"beta"`
	Gamma             int         `json:"gamma"`
	TickTime          float64     `json:"tick_time"`
	InterpolationType string      `json:"inter_type"`
	GridSize          int         `json:"grid_size"`
	Levels            []levelFile `json:"levels"`

	Measurements map[string]measurementFile `json:"measurements"`
}

type levelFile struct {
	NuPre  int `json:"nu_pre"`
	NuPost int `json:"nu_post"`
}

type measurementFile struct {
	BootstrapMean     flexFloat               `json:"bootstrap_mean"`
	BootstrapVariance flexFloat               `json:"bootstrap_variance"`
	Checkpoints       map[string]estimateFile `json:"checkpoints"`
	Tau               *tauFile                `json:"int_auto_correlation_time"`
	AutoCorr          []float64               `json:"auto_correlation"`
}

type estimateFile struct {
	Mean     flexFloat `json:"bootstrap_mean"`
	Variance flexFloat `json:"bootstrap_variance"`
}

type tauFile struct {
	Time      float64 `json:"time"`
	Bias      float64 `json:"bias"`
	StatError float64 `json:"stat_error"`
}

// LoadDir scans dir for out_*.json run files and loads each one. Malformed
// or unreadable files are logged with their path and skipped; the batch
// continues. Returns ErrNoRuns when the scan yields no usable run at all.
// A nil logger suppresses the skip diagnostics.
func LoadDir(dir string, log *slog.Logger) ([]*Run, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan run directory: %w", err)
	}

	var runs []*Run
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, runPrefix) || !strings.HasSuffix(name, runSuffix) {
			continue
		}
		path := filepath.Join(dir, name)
		run, err := LoadRun(path)
		if err != nil {
			log.Warn("skipping run file", "path", path, "err", err)
			continue
		}
		log.Debug("loaded run", "path", path, "class", run.Class(), "sites", run.GridSize)
		runs = append(runs, run)
	}

	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: directory %s", ErrNoRuns, dir)
	}
	return runs, nil
}

// LoadRun reads a single run file. The handle is closed before returning,
// error or not.
func LoadRun(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw runFile
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buildRun(path, raw)
}

// buildRun converts the on-disk schema into the immutable Run record.
func buildRun(path string, raw runFile) (*Run, error) {
	if raw.GridSize <= 0 {
		return nil, fmt.Errorf("%s: grid_size must be positive, got %d", path, raw.GridSize)
	}
	if len(raw.Levels) == 0 {
		return nil, fmt.Errorf("%s: at least the base level must be declared", path)
	}

	run := &Run{
		Path:              path,
		Beta:              raw.Beta,
		Gamma:             raw.Gamma,
		TickTime:          raw.TickTime,
		InterpolationType: raw.InterpolationType,
		GridSize:          raw.GridSize,
		Levels:            make([]Level, len(raw.Levels)),
		Observables:       make(map[string]Observable, len(raw.Measurements)),
	}
	for i, lv := range raw.Levels {
		run.Levels[i] = Level{NuPre: lv.NuPre, NuPost: lv.NuPost}
	}

	for name, m := range raw.Measurements {
		obs := Observable{
			Name:     name,
			Base:     Estimate{Mean: float64(m.BootstrapMean), Variance: float64(m.BootstrapVariance)},
			AutoCorr: m.AutoCorr,
		}
		if len(m.Checkpoints) > 0 {
			obs.Checkpoints = make(map[Checkpoint]Estimate, len(m.Checkpoints))
			for key, est := range m.Checkpoints {
				cp, err := parseCheckpoint(key)
				if err != nil {
					return nil, fmt.Errorf("%s: observable %s: %w", path, name, err)
				}
				obs.Checkpoints[cp] = Estimate{Mean: float64(est.Mean), Variance: float64(est.Variance)}
			}
		}
		if m.Tau != nil {
			obs.Tau = &TauEstimate{Time: m.Tau.Time, Bias: m.Tau.Bias, StatError: m.Tau.StatError}
		}
		run.Observables[name] = obs
	}
	return run, nil
}

// parseCheckpoint parses a "first_last" sample-range key, e.g. "10000_100000".
func parseCheckpoint(key string) (Checkpoint, error) {
	first, last, found := strings.Cut(key, "_")
	if !found {
		return Checkpoint{}, fmt.Errorf("malformed checkpoint key %q", key)
	}
	lo, err := strconv.Atoi(first)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("malformed checkpoint key %q: %w", key, err)
	}
	hi, err := strconv.Atoi(last)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("malformed checkpoint key %q: %w", key, err)
	}
	if hi < lo {
		return Checkpoint{}, fmt.Errorf("checkpoint key %q: range end before start", key)
	}
	return Checkpoint{First: lo, Last: hi}, nil
}
