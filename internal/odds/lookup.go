package odds

import (
	"strings"

	"github.com/rubenfigueroaa/nhl-bets-automation/internal/models"
)

// MarketHeadToHead is the odds API key of the moneyline market
const MarketHeadToHead = "h2h"

// DefaultBookmakers are the books compared against when none are configured
var DefaultBookmakers = []string{"bet365", "fanduel"}

// BookmakerOddsLookup maps matchup -> bookmaker -> normalized team name -> American price.
// Built once per run and read-only afterwards.
type BookmakerOddsLookup map[MatchupKey]map[string]map[string]float64

// BuildLookup keeps only complete two-sided head-to-head prices from the given books.
// Book names are compared lowercased; partial markets are dropped silently.
func BuildLookup(records []models.OddsRecord, books []string) BookmakerOddsLookup {
	if len(books) == 0 {
		books = DefaultBookmakers
	}
	wanted := make(map[string]bool, len(books))
	for _, b := range books {
		wanted[strings.ToLower(b)] = true
	}

	lookup := make(BookmakerOddsLookup)
	for _, rec := range records {
		title := strings.ToLower(rec.BookmakerTitle)
		if !wanted[title] || rec.MarketKey != MarketHeadToHead || len(rec.Outcomes) != 2 {
			continue
		}

		prices := make(map[string]*float64, 2)
		for _, o := range rec.Outcomes {
			if o.Name == "" {
				continue
			}
			prices[Normalize(o.Name)] = o.Price
		}
		if len(prices) != 2 {
			continue
		}

		complete := make(map[string]float64, 2)
		for name, p := range prices {
			if p == nil {
				break
			}
			complete[name] = *p
		}
		if len(complete) != 2 {
			continue
		}

		key := NewMatchupKey(rec.HomeTeam, rec.AwayTeam)
		if lookup[key] == nil {
			lookup[key] = make(map[string]map[string]float64)
		}
		lookup[key][title] = complete
	}

	return lookup
}

// Books returns the bookmakers priced for a matchup, nil if none
func (l BookmakerOddsLookup) Books(homeName, awayName string) map[string]map[string]float64 {
	return l[NewMatchupKey(homeName, awayName)]
}

// Prices returns the home and away prices a book offers on a matchup.
// ok is false when the book is absent or either side's name does not match.
func (l BookmakerOddsLookup) Prices(homeName, awayName, book string) (home, away float64, ok bool) {
	byName, found := l.Books(homeName, awayName)[strings.ToLower(book)]
	if !found {
		return 0, 0, false
	}

	home, okHome := byName[Normalize(homeName)]
	away, okAway := byName[Normalize(awayName)]
	if !okHome || !okAway {
		return 0, 0, false
	}
	return home, away, true
}
