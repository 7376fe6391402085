// Package scoring holds the pure match-scoring primitives: win evaluation,
// the per-match event log, and the effective rule set. No I/O, no storage.
package scoring

// Side identifies one of the two competing sides of a match.
// Side A is captained by player 1, side B by player 2.
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Evaluate decides whether the given score ends the match and, if so, which
// side won. It is pure and idempotent.
//
// The three rules are checked in order, first match wins, side A before
// side B within each rule:
//  1. deuce disabled: score >= pointsToWin and lead > 1
//  2. deuce enabled: score >= pointsToWin and lead >= 2
//  3. fallback regardless of deuce: score >= pointsToWin and lead >= 2
//
// Rules 1 and 3 can only agree today, but the precedence is part of the
// product contract and is pinned by tests; do not collapse the rules.
func Evaluate(scoreA, scoreB, pointsToWin int, deuceEnabled bool) (Side, bool) {
	if !deuceEnabled {
		if scoreA >= pointsToWin && scoreA > scoreB+1 {
			return SideA, true
		}
		if scoreB >= pointsToWin && scoreB > scoreA+1 {
			return SideB, true
		}
	}

	if deuceEnabled {
		if scoreA >= pointsToWin && scoreA >= scoreB+2 {
			return SideA, true
		}
		if scoreB >= pointsToWin && scoreB >= scoreA+2 {
			return SideB, true
		}
	}

	// Win-by-2 fallback, kept last.
	if scoreA >= pointsToWin && scoreA >= scoreB+2 {
		return SideA, true
	}
	if scoreB >= pointsToWin && scoreB >= scoreA+2 {
		return SideB, true
	}

	return "", false
}
