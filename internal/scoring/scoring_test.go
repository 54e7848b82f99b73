package scoring

import (
	"math"
	"testing"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	s := models.TeamStat{CorsiPct: 52.0, FenwickPct: 51.0, ShotsDiff: 150, PDO: 100.5}

	// 104 + 102 + 1.5 + 10.05
	assert.InDelta(t, 217.55, Score(s, false), 1e-9)
	assert.InDelta(t, 218.05, Score(s, true), 1e-9)
	assert.Equal(t, HomeIceBonus, Score(models.TeamStat{}, true))
	assert.Equal(t, 0.0, Score(models.TeamStat{}, false))
}

func TestSoftmax(t *testing.T) {
	pairs := [][2]float64{
		{1, 0},
		{0.5, 0.49},
		{218.05, 210.3},
		{-3, -7},
		{1e6, 1e6 - 1},
	}

	for _, p := range pairs {
		a, b := Softmax(p[0], p[1])
		require.False(t, math.IsNaN(a) || math.IsNaN(b), "softmax(%v, %v) produced NaN", p[0], p[1])
		assert.Greater(t, a, 50.0)
		assert.InDelta(t, 100.0, a+b, 1e-9)
	}

	a, b := Softmax(2, 2)
	assert.InDelta(t, 50.0, a, 1e-9)
	assert.InDelta(t, 50.0, b, 1e-9)

	// e^1 / (e^1 + e^0)
	a, _ = Softmax(1, 0)
	assert.InDelta(t, math.E/(math.E+1)*100, a, 1e-9)
}

func TestPredict(t *testing.T) {
	same := models.TeamStat{CorsiPct: 0.5, FenwickPct: 0.5, ShotsDiff: 0, PDO: 1}

	p := Predict(same, same)
	assert.Greater(t, p.HomeWinPct, p.AwayWinPct, "home ice breaks a tie")
	assert.InDelta(t, 100.0, p.HomeWinPct+p.AwayWinPct, 1e-9)
	assert.InDelta(t, 0.5, p.HomeScore-p.AwayScore, 1e-9)
}

func TestClassify(t *testing.T) {
	v := func(f float64) *float64 { return &f }

	tests := []struct {
		name  string
		win   float64
		opp   float64
		value *float64
		want  Classification
	}{
		{"zero value", 55, 45, v(0), NoBet},
		{"negative value", 55, 45, v(-3), NoBet},
		{"missing value", 55, 45, nil, NoBet},
		{"favourite with value", 55, 45, v(5), StrongBet},
		{"underdog with value", 45, 55, v(5), SmartBet},
		{"coin flip with value", 50, 50, v(1), SmartBet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.win, tt.opp, tt.value))
		})
	}
}

func TestClassificationLabels(t *testing.T) {
	assert.Equal(t, "No Bet", NoBet.String())
	assert.Equal(t, "Strong Bet", StrongBet.String())
	assert.Equal(t, "Smart Bet", SmartBet.String())
	assert.Equal(t, "🚫", NoBet.Emoji())
	assert.Equal(t, "✅", StrongBet.Emoji())
	assert.Equal(t, "💡", SmartBet.Emoji())
}

func TestCompare(t *testing.T) {
	p := Prediction{HomeWinPct: 65, AwayWinPct: 35}

	c := Compare(p, -150, 150)

	assert.InDelta(t, 60.0, c.Home.ImpliedPct, 1e-9)
	assert.InDelta(t, 40.0, c.Away.ImpliedPct, 1e-9)
	assert.InDelta(t, 5.0, c.Home.Value, 1e-9)
	assert.InDelta(t, -5.0, c.Away.Value, 1e-9)
	assert.Equal(t, StrongBet, c.Home.Classification)
	assert.Equal(t, NoBet, c.Away.Classification)
	assert.Equal(t, -150.0, c.Home.Odds)

	c = Compare(Prediction{HomeWinPct: 45, AwayWinPct: 55}, 150, -150)
	assert.Equal(t, SmartBet, c.Home.Classification)
	assert.Equal(t, NoBet, c.Away.Classification)
}
