package gamification

import "ecg-practice-service/internal/domain"

// Config carries the tunable gamification constants. It is an immutable
// snapshot passed into every computation; nothing here reads ambient or
// global state, so concurrent requests can never observe a half-updated
// config.
type Config struct {
	XPPerECGBase          int
	XPPerScorePoint       float64
	DifficultyMultipliers map[domain.Difficulty]float64
	XPPerfectBonus        int
	XPPerLevelBase        int
	XPPerLevelGrowth      float64
	MaxLevel              int
	StreakGraceDays       int
}

// DefaultConfig returns the production defaults. Administrators override
// individual values through the configuration store.
func DefaultConfig() Config {
	return Config{
		XPPerECGBase:    10,
		XPPerScorePoint: 0.5,
		DifficultyMultipliers: map[domain.Difficulty]float64{
			domain.DifficultyEasy:   0.75,
			domain.DifficultyMedium: 1.0,
			domain.DifficultyHard:   1.5,
		},
		XPPerfectBonus:   25,
		XPPerLevelBase:   100,
		XPPerLevelGrowth: 1.2,
		MaxLevel:         50,
		StreakGraceDays:  1,
	}
}
