// Package gamification derives XP, levels, streaks, and achievement-unlock
// state from a student's progress and activity history. It owns the
// gamification-state map persisted under the record store; all other data it
// consumes arrives as plain values through accessor functions.
package gamification

import "math"

// Level is one row of the level table. Ranges are ordered, contiguous, and
// half-open: a student is at this level while MinXP <= totalXP < MaxXP.
type Level struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	MinXP  int    `json:"min_xp"`
	MaxXP  int    `json:"max_xp"`
}

// IsFinal returns true for the last (unbounded) level.
func (l Level) IsFinal() bool {
	return l.MaxXP == math.MaxInt
}

// levelTable is the fixed level ladder. Level 1 starts at XP 0; the final
// level is unbounded.
var levelTable = []Level{
	{Number: 1, Title: "Newcomer", MinXP: 0, MaxXP: 100},
	{Number: 2, Title: "Learner", MinXP: 100, MaxXP: 250},
	{Number: 3, Title: "Scholar", MinXP: 250, MaxXP: 500},
	{Number: 4, Title: "Achiever", MinXP: 500, MaxXP: 900},
	{Number: 5, Title: "Specialist", MinXP: 900, MaxXP: 1400},
	{Number: 6, Title: "Expert", MinXP: 1400, MaxXP: 2000},
	{Number: 7, Title: "Mentor", MinXP: 2000, MaxXP: 2800},
	{Number: 8, Title: "Master", MinXP: 2800, MaxXP: 3800},
	{Number: 9, Title: "Luminary", MinXP: 3800, MaxXP: 5000},
	{Number: 10, Title: "Legend", MinXP: 5000, MaxXP: math.MaxInt},
}

// Levels returns a copy of the level table.
func Levels() []Level {
	out := make([]Level, len(levelTable))
	copy(out, levelTable)
	return out
}

// LevelForXP locates the level whose [MinXP, MaxXP) range contains the
// given XP. Negative XP maps to level 1.
func LevelForXP(xp int) Level {
	if xp < 0 {
		return levelTable[0]
	}
	for _, l := range levelTable {
		if xp >= l.MinXP && xp < l.MaxXP {
			return l
		}
	}
	return levelTable[len(levelTable)-1]
}

// ProgressToNext returns the fraction of the way from the current level to
// the next, clamped to [0, 1]. At the final level progress saturates at 1.
func ProgressToNext(xp int) float64 {
	current := LevelForXP(xp)
	if current.IsFinal() {
		return 1
	}

	span := current.MaxXP - current.MinXP
	if span <= 0 {
		return 1
	}

	p := float64(xp-current.MinXP) / float64(span)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
