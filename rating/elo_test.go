package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChange_EqualAverages(t *testing.T) {
	for _, r := range []float64{0, 1000, 1543.25, -200} {
		dw, dl := Change(r, r)
		assert.InDelta(t, 16.0, dw, 1e-9, "winner delta at %v", r)
		assert.InDelta(t, -16.0, dl, 1e-9, "loser delta at %v", r)
		assert.InDelta(t, 0.0, dw+dl, 1e-9)
	}
}

func TestChange_FavouriteWins(t *testing.T) {
	tests := []struct {
		name      string
		winnerAvg float64
		loserAvg  float64
	}{
		{"small gap", 1016, 1000},
		{"large gap", 1800, 1000},
		{"huge gap", 4000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dw, dl := Change(tt.winnerAvg, tt.loserAvg)
			assert.GreaterOrEqual(t, dw, 0.0)
			assert.Less(t, dw, 16.0)
			assert.LessOrEqual(t, dl, 0.0)

			expectedLoser := Expected(tt.loserAvg, tt.winnerAvg)
			assert.InDelta(t, -KFactor*expectedLoser, dl, 1e-9)
			assert.InDelta(t, 0.0, dw+dl, 1e-9)
		})
	}
}

func TestChange_UnderdogWins(t *testing.T) {
	dw, dl := Change(1000, 1400)
	assert.Greater(t, dw, 16.0)
	assert.LessOrEqual(t, dw, KFactor)
	assert.Less(t, dl, -16.0)
}

func TestExpected_IsComplementary(t *testing.T) {
	pairs := [][2]float64{{1000, 1000}, {1200, 1000}, {950.5, 1333.3}}
	for _, p := range pairs {
		sum := Expected(p[0], p[1]) + Expected(p[1], p[0])
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestChange_Deterministic(t *testing.T) {
	dw1, dl1 := Change(1103.7, 987.1)
	dw2, dl2 := Change(1103.7, 987.1)
	assert.Equal(t, dw1, dw2)
	assert.Equal(t, dl1, dl2)
	assert.False(t, math.IsNaN(dw1) || math.IsNaN(dl1))
}

func TestAverage(t *testing.T) {
	assert.Equal(t, 0.0, Average())
	assert.Equal(t, 1000.0, Average(1000, 1000))
	assert.InDelta(t, 1008.0, Average(1016, 1000), 1e-12)
}
