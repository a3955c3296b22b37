package gamification

import (
	"math"
	"strconv"

	"ecg-practice-service/internal/domain"
)

// AttemptXP converts one scored attempt into an XP award.
//
// The order of operations is load-bearing for parity with historical
// totals: floor the base, multiply by the difficulty multiplier, floor
// again, then add the perfect bonus after the multiplier. Changing the
// order produces different totals for fractional cases.
func AttemptXP(score int, difficulty domain.Difficulty, cfg Config) (int, error) {
	if score < 0 || score > 100 {
		return 0, &domain.InvalidArgumentError{Argument: "score", Value: strconv.Itoa(score)}
	}
	multiplier, ok := cfg.DifficultyMultipliers[difficulty]
	if !ok {
		return 0, &domain.InvalidArgumentError{Argument: "difficulty", Value: string(difficulty)}
	}

	base := cfg.XPPerECGBase + int(math.Floor(float64(score)*cfg.XPPerScorePoint))
	xp := int(math.Floor(float64(base) * multiplier))
	if score == 100 {
		xp += cfg.XPPerfectBonus
	}
	return xp, nil
}

// LevelFromXP maps cumulative XP to a level on the geometric curve.
// Completing level n costs floor(base * growth^(n-1)) XP; thresholds
// accumulate until the next one would exceed totalXP or maxLevel is
// reached. The function is pure and recomputable from totalXP alone,
// which is what makes it safe to use for backfill and reconciliation.
func LevelFromXP(totalXP int, cfg Config) int {
	if totalXP <= 0 {
		return 1
	}
	level := 1
	cumulative := 0
	for level < cfg.MaxLevel {
		required := int(math.Floor(float64(cfg.XPPerLevelBase) * math.Pow(cfg.XPPerLevelGrowth, float64(level-1))))
		cumulative += required
		if totalXP < cumulative {
			break
		}
		level++
	}
	return level
}

// XPForNextLevel returns the cumulative XP needed to finish the given
// level, or 0 when the level cap is reached. Used for progress display.
func XPForNextLevel(level int, cfg Config) int {
	if level >= cfg.MaxLevel {
		return 0
	}
	cumulative := 0
	for n := 1; n <= level; n++ {
		cumulative += int(math.Floor(float64(cfg.XPPerLevelBase) * math.Pow(cfg.XPPerLevelGrowth, float64(n-1))))
	}
	return cumulative
}
