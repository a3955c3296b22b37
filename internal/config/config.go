package config

import (
	"os"
	"time"

	"ecg-practice-service/internal/domain"
	"ecg-practice-service/internal/gamification"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	Gamification GamificationOverrides `yaml:"gamification"`
}

// GamificationOverrides holds optional admin-tuned constants. Zero values
// mean "keep the default"; the resolved snapshot is built once at startup
// and passed into every computation as an immutable value.
type GamificationOverrides struct {
	XPPerECGBase          int                `yaml:"xpPerEcgBase"`
	XPPerScorePoint       float64            `yaml:"xpPerScorePoint"`
	DifficultyMultipliers map[string]float64 `yaml:"difficultyMultipliers"`
	XPPerfectBonus        int                `yaml:"xpPerfectBonus"`
	XPPerLevelBase        int                `yaml:"xpPerLevelBase"`
	XPPerLevelGrowth      float64            `yaml:"xpPerLevelGrowth"`
	MaxLevel              int                `yaml:"maxLevel"`
	StreakGraceDays       int                `yaml:"streakGraceDays"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GamificationConfig resolves the overrides against the defaults.
func (c Config) GamificationConfig() gamification.Config {
	resolved := gamification.DefaultConfig()
	o := c.Gamification
	if o.XPPerECGBase > 0 {
		resolved.XPPerECGBase = o.XPPerECGBase
	}
	if o.XPPerScorePoint > 0 {
		resolved.XPPerScorePoint = o.XPPerScorePoint
	}
	for key, multiplier := range o.DifficultyMultipliers {
		resolved.DifficultyMultipliers[domain.Difficulty(key)] = multiplier
	}
	if o.XPPerfectBonus > 0 {
		resolved.XPPerfectBonus = o.XPPerfectBonus
	}
	if o.XPPerLevelBase > 0 {
		resolved.XPPerLevelBase = o.XPPerLevelBase
	}
	if o.XPPerLevelGrowth > 0 {
		resolved.XPPerLevelGrowth = o.XPPerLevelGrowth
	}
	if o.MaxLevel > 0 {
		resolved.MaxLevel = o.MaxLevel
	}
	if o.StreakGraceDays > 0 {
		resolved.StreakGraceDays = o.StreakGraceDays
	}
	return resolved
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
