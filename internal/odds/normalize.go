package odds

import "strings"

var nameStripper = strings.NewReplacer(" ", "", "-", "")

// Normalize canonicalizes a team display name so odds-feed names and
// schedule-feed names can be joined: lowercase, spaces and hyphens removed.
// Every other character, punctuation included, is kept.
func Normalize(name string) string {
	return nameStripper.Replace(strings.ToLower(name))
}

// MatchupKey identifies a game independent of which side is home
type MatchupKey struct {
	First  string
	Second string
}

// NewMatchupKey builds the order-independent key for two team names
func NewMatchupKey(teamA, teamB string) MatchupKey {
	a, b := Normalize(teamA), Normalize(teamB)
	if b < a {
		a, b = b, a
	}
	return MatchupKey{First: a, Second: b}
}

// String renders the key for logging
func (k MatchupKey) String() string {
	return k.First + "|" + k.Second
}
