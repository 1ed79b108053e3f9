package match

import "github.com/maxviazov/volleyball-scoreboard/internal/model"

// MVPScore weights a stat line: points + 2*(aces+attacks+blocks) + digs - errors.
func MVPScore(l model.StatLine) int {
	return l.Points + 2*l.Aces + 2*l.Attacks + 2*l.Blocks + l.Digs - l.Errors
}

// SelectMVP returns the player with the highest MVPScore. Ties go to the player
// that appears first in order, which callers fill in roster submission order.
func SelectMVP(order []string, stats map[string]model.StatLine) (string, bool) {
	best, found := "", false
	bestScore := 0
	for _, name := range order {
		line, ok := stats[name]
		if !ok {
			continue
		}
		if score := MVPScore(line); !found || score > bestScore {
			best, bestScore, found = name, score, true
		}
	}
	return best, found
}
