package models

// Game represents one scheduled NHL contest on the slate
type Game struct {
	HomeID   string `json:"home_id"`
	HomeName string `json:"home_name"`
	AwayID   string `json:"away_id"`
	AwayName string `json:"away_name"`
	Date     string `json:"date"` // YYYY-MM-DD, taken from the schedule request path
}

// Side identifies the home or away team of a game
type Side string

const (
	Home Side = "Home"
	Away Side = "Away"
)

// Team returns the id and display name of the given side
func (g Game) Team(side Side) (id, name string) {
	if side == Home {
		return g.HomeID, g.HomeName
	}
	return g.AwayID, g.AwayName
}
