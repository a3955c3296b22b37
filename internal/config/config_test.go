package config

import (
	"os"
	"path/filepath"
	"testing"

	"ecg-practice-service/internal/domain"
)

func TestGamificationConfigOverrides(t *testing.T) {
	raw := `
server:
  port: "9090"
gamification:
  xpPerEcgBase: 20
  difficultyMultipliers:
    hard: 2.0
  maxLevel: 10
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	resolved := cfg.GamificationConfig()
	if resolved.XPPerECGBase != 20 {
		t.Fatalf("expected overridden base 20, got %d", resolved.XPPerECGBase)
	}
	if resolved.MaxLevel != 10 {
		t.Fatalf("expected overridden max level 10, got %d", resolved.MaxLevel)
	}
	if resolved.DifficultyMultipliers[domain.DifficultyHard] != 2.0 {
		t.Fatalf("expected hard multiplier 2.0, got %v", resolved.DifficultyMultipliers[domain.DifficultyHard])
	}
	// Untouched values keep their defaults.
	if resolved.XPPerfectBonus != 25 || resolved.DifficultyMultipliers[domain.DifficultyMedium] != 1.0 {
		t.Fatalf("expected defaults preserved, got %+v", resolved)
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("5m", 0); d.Minutes() != 5 {
		t.Fatalf("expected 5m, got %v", d)
	}
	if d := TTLDuration("", 42); d != 42 {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("garbage", 42); d != 42 {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
}
