package models

// Analytics attribute names read from the team totals element
const (
	AttrCorsiPct   = "corsi_pct"
	AttrFenwickPct = "fenwick_pct"
	AttrShotsDiff  = "on_ice_shots_differential"
	AttrPDO        = "pdo"
)

// TeamStat holds the four analytics inputs of the scoring model for one team
type TeamStat struct {
	Name       string  `json:"name"`
	CorsiPct   float64 `json:"corsi_pct"`
	FenwickPct float64 `json:"fenwick_pct"`
	ShotsDiff  float64 `json:"shots_diff"`
	PDO        float64 `json:"pdo"`

	// Defaulted lists attributes that were absent or unparsable and scored as 0.0
	Defaulted []string `json:"defaulted,omitempty"`
}
