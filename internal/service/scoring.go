package service

// Scoring maps a team placement (1 = best) to points. Tournament rules vary,
// so the table is supplied by the surrounding configuration rather than
// fixed inside the engine.
type Scoring func(placement int) int

var defaultPlacementPoints = map[int]int{
	1: 10,
	2: 6,
	3: 5,
	4: 4,
	5: 3,
	6: 2,
	7: 1,
	8: 1,
}

// DefaultScoring is the SUPER-style placement table used when a tournament
// supplies no table of its own.
func DefaultScoring(placement int) int {
	return defaultPlacementPoints[placement]
}

// TableScoring adapts an explicit placement table; placements outside the
// table score zero.
func TableScoring(table map[int]int) Scoring {
	return func(placement int) int {
		return table[placement]
	}
}
