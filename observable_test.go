package isingpost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name       string
		mean       float64
		variance   float64
		wantValue  float64
		wantStderr float64
	}{
		{"clean estimate", 0.5, 0.04, 0.5, 0.2},
		{"infinite mean", math.Inf(1), 0.04, SentinelValue, 0.2},
		{"negative infinite mean", math.Inf(-1), 0.04, SentinelValue, 0.2},
		{"oversized mean", 2e200, 0.04, SentinelValue, 0.2},
		{"nan mean", math.NaN(), 0.04, SentinelValue, 0.2},
		{"nan variance", 0.5, math.NaN(), 0.5, SentinelError},
		{"infinite variance", 0.5, math.Inf(1), 0.5, SentinelError},
		{"oversized variance", 0.5, 2e200, 0.5, SentinelError},
		{"negative variance", 0.5, -1, 0.5, SentinelError},
		{"both unusable", math.Inf(1), math.NaN(), SentinelValue, SentinelError},
		{"zero variance", 0.5, 0, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, stderr := Sanitize(tt.mean, tt.variance)
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantStderr, stderr)
		})
	}
}

func TestUsable(t *testing.T) {
	assert.False(t, Usable(SentinelValue))
	assert.True(t, Usable(0.5))
	assert.True(t, Usable(0))
}

func TestObservable_Best_CheckpointSelection(t *testing.T) {
	obs := Observable{
		Name: "magnetization",
		Base: Estimate{Mean: 0.1, Variance: 1},
		Checkpoints: map[Checkpoint]Estimate{
			{First: 50000, Last: 100000}: {Mean: 0.2, Variance: 2},
			{First: 10000, Last: 100000}: {Mean: 0.3, Variance: 3},
			{First: 30000, Last: 100000}: {Mean: 0.4, Variance: 4},
		},
	}

	// Largest declared sample range wins.
	best := obs.Best()
	assert.Equal(t, 0.3, best.Mean)

	// Ties on span break toward the later range.
	obs.Checkpoints[Checkpoint{First: 20000, Last: 110000}] = Estimate{Mean: 0.5, Variance: 5}
	assert.Equal(t, 0.5, obs.Best().Mean)
}

func TestObservable_Best_FallsBackToBase(t *testing.T) {
	obs := Observable{Name: "energy", Base: Estimate{Mean: -1.4, Variance: 0.01}}
	assert.Equal(t, -1.4, obs.Best().Mean)

	value, stderr := obs.Sanitized()
	assert.Equal(t, -1.4, value)
	assert.InDelta(t, 0.1, stderr, 1e-12)
}

func TestObservable_AutoCorrWindow(t *testing.T) {
	obs := Observable{AutoCorr: []float64{1, 0.8, 0.6, 0.4, 0.2}}

	assert.Len(t, obs.AutoCorrWindow(3), 3)
	assert.Equal(t, []float64{1, 0.8, 0.6}, obs.AutoCorrWindow(3))

	// Zero, negative, and oversized windows return the full sequence.
	assert.Len(t, obs.AutoCorrWindow(0), 5)
	assert.Len(t, obs.AutoCorrWindow(-1), 5)
	assert.Len(t, obs.AutoCorrWindow(6000), 5)
}

func TestObservable_CheckpointKeys_Ordered(t *testing.T) {
	obs := Observable{
		Checkpoints: map[Checkpoint]Estimate{
			{First: 90000, Last: 100000}: {},
			{First: 10000, Last: 100000}: {},
			{First: 50000, Last: 100000}: {},
		},
	}
	keys := obs.CheckpointKeys()
	assert.Equal(t, []Checkpoint{
		{First: 90000, Last: 100000},
		{First: 50000, Last: 100000},
		{First: 10000, Last: 100000},
	}, keys)
}

func TestTauEstimate_Corrected(t *testing.T) {
	tau := TauEstimate{Time: 12.5, Bias: 1.5, StatError: 0.3}
	assert.Equal(t, 14.0, tau.Corrected())
}
