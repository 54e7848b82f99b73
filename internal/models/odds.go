package models

// OddsOutcome is one priced side of a market. Price is nil when the feed
// sent null, a non-number, or nothing at all.
type OddsOutcome struct {
	Name  string
	Price *float64
}

// OddsRecord is a single (game, bookmaker, market) triple flattened out of the
// odds API payload. It only lives long enough to build the lookup.
type OddsRecord struct {
	HomeTeam       string
	AwayTeam       string
	BookmakerTitle string
	MarketKey      string
	Outcomes       []OddsOutcome
}

// OddsRecordsFromPayload flattens the loosely-typed odds API response.
// Entries with an unexpected shape are skipped rather than reported.
func OddsRecordsFromPayload(payload []interface{}) []OddsRecord {
	var records []OddsRecord

	for _, rawGame := range payload {
		game, ok := rawGame.(map[string]interface{})
		if !ok {
			continue
		}

		home, okHome := game["home_team"].(string)
		away, okAway := game["away_team"].(string)
		books, okBooks := game["bookmakers"].([]interface{})
		if !okHome || !okAway || !okBooks {
			continue
		}

		for _, rawBook := range books {
			book, ok := rawBook.(map[string]interface{})
			if !ok {
				continue
			}
			title, ok := book["title"].(string)
			if !ok {
				continue
			}
			markets, _ := book["markets"].([]interface{})

			for _, rawMarket := range markets {
				market, ok := rawMarket.(map[string]interface{})
				if !ok {
					continue
				}
				key, _ := market["key"].(string)
				outcomes, _ := market["outcomes"].([]interface{})

				records = append(records, OddsRecord{
					HomeTeam:       home,
					AwayTeam:       away,
					BookmakerTitle: title,
					MarketKey:      key,
					Outcomes:       outcomesFromPayload(outcomes),
				})
			}
		}
	}

	return records
}

func outcomesFromPayload(raw []interface{}) []OddsOutcome {
	out := make([]OddsOutcome, 0, len(raw))
	for _, r := range raw {
		var o OddsOutcome
		if m, ok := r.(map[string]interface{}); ok {
			o.Name, _ = m["name"].(string)
			if p, ok := m["price"].(float64); ok {
				price := p
				o.Price = &price
			}
		}
		out = append(out, o)
	}
	return out
}
