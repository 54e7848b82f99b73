package scoring

import (
	"math"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
)

// HomeIceBonus is added to the home team's score
const HomeIceBonus = 0.5

// Score maps a team's analytics to an unbounded additive rating:
// 2*corsi + 2*fenwick + shots_diff/100 + pdo/10, plus the home-ice bonus.
func Score(s models.TeamStat, isHome bool) float64 {
	score := 2*s.CorsiPct +
		2*s.FenwickPct +
		s.ShotsDiff/100 +
		s.PDO/10
	if isHome {
		score += HomeIceBonus
	}
	return score
}

// Softmax turns two scores into win percentages that sum to 100.
// The larger score is subtracted first so huge inputs do not overflow.
func Softmax(a, b float64) (pctA, pctB float64) {
	m := math.Max(a, b)
	ea := math.Exp(a - m)
	eb := math.Exp(b - m)
	total := ea + eb
	return ea / total * 100, eb / total * 100
}

// Prediction is the estimated outcome of one game
type Prediction struct {
	HomeScore  float64
	AwayScore  float64
	HomeWinPct float64
	AwayWinPct float64
}

// Predict scores both teams and normalizes the pair
func Predict(home, away models.TeamStat) Prediction {
	hs := Score(home, true)
	as := Score(away, false)
	hp, ap := Softmax(hs, as)
	return Prediction{HomeScore: hs, AwayScore: as, HomeWinPct: hp, AwayWinPct: ap}
}
