package odds

import (
	"testing"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Boston Bruins", "bostonbruins"},
		{"St. Louis Blues", "st.louisblues"},
		{"Montréal Canadiens", "montréalcanadiens"},
		{"Tampa-Bay  Lightning", "tampabaylightning"},
		{"Utah Hockey Club", "utahhockeyclub"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}

	// Only spaces and hyphens are stripped
	assert.Equal(t, Normalize("St. Louis Blues"), Normalize("st.louisblues"))
	assert.NotEqual(t, Normalize("St. Louis Blues"), Normalize("St Louis Blues"))
	assert.NotEqual(t, Normalize("Tim_Hortons"), Normalize("TimHortons"))
}

func TestNewMatchupKey_OrderIndependent(t *testing.T) {
	a := NewMatchupKey("Boston Bruins", "Chicago Blackhawks")
	b := NewMatchupKey("chicago-blackhawks", "BOSTON BRUINS")
	assert.Equal(t, a, b)
	assert.Equal(t, "bostonbruins|chicagoblackhawks", a.String())
}

func h2h(book, home, away string, homePrice, awayPrice *float64) models.OddsRecord {
	return models.OddsRecord{
		HomeTeam:       home,
		AwayTeam:       away,
		BookmakerTitle: book,
		MarketKey:      MarketHeadToHead,
		Outcomes: []models.OddsOutcome{
			{Name: home, Price: homePrice},
			{Name: away, Price: awayPrice},
		},
	}
}

func TestBuildLookup(t *testing.T) {
	records := []models.OddsRecord{
		h2h("FanDuel", "Boston Bruins", "Chicago Blackhawks", price(-150), price(130)),
		h2h("Bet365", "Boston Bruins", "Chicago Blackhawks", price(-145), price(125)),
		h2h("DraftKings", "Boston Bruins", "Chicago Blackhawks", price(-160), price(140)),
	}

	lookup := BuildLookup(records, DefaultBookmakers)
	require.Len(t, lookup, 1)

	books := lookup.Books("Chicago Blackhawks", "Boston Bruins")
	require.Len(t, books, 2)
	assert.Equal(t, map[string]float64{"bostonbruins": -150, "chicagoblackhawks": 130}, books["fanduel"])
	assert.NotContains(t, books, "draftkings")

	home, away, ok := lookup.Prices("Boston Bruins", "Chicago Blackhawks", "bet365")
	require.True(t, ok)
	assert.Equal(t, -145.0, home)
	assert.Equal(t, 125.0, away)
}

func TestBuildLookup_DropsPartialEntries(t *testing.T) {
	three := h2h("FanDuel", "A", "B", price(100), price(100))
	three.Outcomes = append(three.Outcomes, models.OddsOutcome{Name: "Draw", Price: price(300)})

	sameName := h2h("FanDuel", "A", "B", price(100), price(100))
	sameName.Outcomes[1].Name = "a"

	nameless := h2h("FanDuel", "A", "B", price(100), price(100))
	nameless.Outcomes[1].Name = ""

	totals := h2h("FanDuel", "A", "B", price(100), price(100))
	totals.MarketKey = "totals"

	records := []models.OddsRecord{
		h2h("FanDuel", "A", "B", price(-110), nil),
		three,
		sameName,
		nameless,
		totals,
	}

	lookup := BuildLookup(records, DefaultBookmakers)
	assert.Empty(t, lookup)

	_, _, ok := lookup.Prices("A", "B", "fanduel")
	assert.False(t, ok)
}

func TestBuildLookup_MismatchedScheduleName(t *testing.T) {
	lookup := BuildLookup([]models.OddsRecord{
		h2h("FanDuel", "Utah Hockey Club", "Seattle Kraken", price(110), price(-130)),
	}, nil)

	// Same pair key, but the schedule calls the team something else
	_, _, ok := lookup.Prices("Utah Mammoth", "Seattle Kraken", "fanduel")
	assert.False(t, ok)

	_, _, ok = lookup.Prices("Utah Hockey Club", "Seattle Kraken", "fanduel")
	assert.True(t, ok)
}

func TestImpliedProbability(t *testing.T) {
	tests := []struct {
		name string
		odds float64
		want float64
	}{
		{"Underdog +150", 150, 40.0},
		{"Favorite -150", -150, 60.0},
		{"Even money +100", 100, 50.0},
		{"Even money -100", -100, 50.0},
		{"Standard -110", -110, 52.381},
		{"Big underdog +300", 300, 25.0},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ImpliedProbability(tt.odds), 0.001)
		})
	}
}
