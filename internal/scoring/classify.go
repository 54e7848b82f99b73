package scoring

import "github.com/rubenfigueroaa/nhl-bets-automation/internal/odds"

// Classification is the bet recommendation for one side of a game
type Classification int

const (
	NoBet Classification = iota
	StrongBet
	SmartBet
)

// String returns the label persisted in the bets table
func (c Classification) String() string {
	switch c {
	case StrongBet:
		return "Strong Bet"
	case SmartBet:
		return "Smart Bet"
	default:
		return "No Bet"
	}
}

// Emoji returns the console marker for the classification
func (c Classification) Emoji() string {
	switch c {
	case StrongBet:
		return "✅"
	case SmartBet:
		return "💡"
	default:
		return "🚫"
	}
}

// Classify applies the decision table in order:
// no value or value <= 0 is No Bet, positive value on the model favourite is
// Strong Bet, positive value on the underdog (or a coin flip) is Smart Bet.
func Classify(winPct, oppWinPct float64, value *float64) Classification {
	if value == nil || *value <= 0 {
		return NoBet
	}
	if winPct > oppWinPct {
		return StrongBet
	}
	return SmartBet
}

// SideValue is the market comparison for one side
type SideValue struct {
	Odds           float64
	ImpliedPct     float64
	Value          float64
	Classification Classification
}

// Comparison is the market comparison for both sides at one bookmaker
type Comparison struct {
	Home SideValue
	Away SideValue
}

// Compare prices a prediction against a bookmaker's two-sided moneyline
func Compare(p Prediction, homeOdds, awayOdds float64) Comparison {
	home := side(p.HomeWinPct, p.AwayWinPct, homeOdds)
	away := side(p.AwayWinPct, p.HomeWinPct, awayOdds)
	return Comparison{Home: home, Away: away}
}

func side(winPct, oppWinPct, price float64) SideValue {
	implied := odds.ImpliedProbability(price)
	value := winPct - implied
	return SideValue{
		Odds:           price,
		ImpliedPct:     implied,
		Value:          value,
		Classification: Classify(winPct, oppWinPct, &value),
	}
}
