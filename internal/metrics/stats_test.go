package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func TestMean(t *testing.T) {
	tests := []struct {
		name   string
		input  []float64
		expect float64
	}{
		{"empty", nil, 0},
		{"single", []float64{5.0}, 5.0},
		{"multiple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"negative", []float64{-2, 0, 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expect, Mean(tt.input), epsilon)
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name      string
		input     []float64
		mean, sd  float64
		low, high float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"single", []float64{5.0}, 5, 0, 5, 5},
		{"uniform", []float64{3, 3, 3}, 3, 0, 3, 3},
		{"simple", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 5, 2, 5 - 1.96*2.138089935299395/2.8284271247461903, 5 + 1.96*2.138089935299395/2.8284271247461903},
		// mean=5, sampleSD=sqrt(2), margin=1.96*sqrt(2)/sqrt(2)=1.96
		{"two_values", []float64{4, 6}, 5, 1, 5 - 1.96, 5 + 1.96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.input)
			assert.Equal(t, len(tt.input), got.N)
			assert.InDelta(t, tt.mean, got.Mean, epsilon)
			assert.InDelta(t, tt.sd, got.StdDev, epsilon)
			assert.InDelta(t, tt.low, got.CILow, 1e-6)
			assert.InDelta(t, tt.high, got.CIHigh, 1e-6)
		})
	}
}
