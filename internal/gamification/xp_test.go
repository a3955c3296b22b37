package gamification_test

import (
	"errors"
	"testing"

	"ecg-practice-service/internal/domain"
	"ecg-practice-service/internal/gamification"
)

func TestAttemptXPPerfectMediumScenario(t *testing.T) {
	cfg := gamification.DefaultConfig()

	// base = 10 + floor(100*0.5) = 60; floor(60*1.0) = 60; +25 perfect bonus.
	xp, err := gamification.AttemptXP(100, domain.DifficultyMedium, cfg)
	if err != nil {
		t.Fatalf("attempt xp failed: %v", err)
	}
	if xp != 85 {
		t.Fatalf("expected 85 XP, got %d", xp)
	}
}

func TestAttemptXPFloorsAfterMultiplier(t *testing.T) {
	cfg := gamification.DefaultConfig()

	// base = 10 + floor(91*0.5) = 55; floor(55*0.75) = floor(41.25) = 41.
	xp, err := gamification.AttemptXP(91, domain.DifficultyEasy, cfg)
	if err != nil {
		t.Fatalf("attempt xp failed: %v", err)
	}
	if xp != 41 {
		t.Fatalf("expected 41 XP, got %d", xp)
	}
}

func TestAttemptXPPerfectBonusAppliedAfterMultiplier(t *testing.T) {
	cfg := gamification.DefaultConfig()

	// base = 60; floor(60*1.5) = 90; bonus added after the multiplier = 115.
	// Multiplying the bonus too would give 127.
	xp, err := gamification.AttemptXP(100, domain.DifficultyHard, cfg)
	if err != nil {
		t.Fatalf("attempt xp failed: %v", err)
	}
	if xp != 115 {
		t.Fatalf("expected 115 XP, got %d", xp)
	}
}

func TestAttemptXPMonotonicInScore(t *testing.T) {
	cfg := gamification.DefaultConfig()

	prev := -1
	for score := 0; score <= 100; score++ {
		xp, err := gamification.AttemptXP(score, domain.DifficultyHard, cfg)
		if err != nil {
			t.Fatalf("attempt xp failed at score %d: %v", score, err)
		}
		if xp < prev {
			t.Fatalf("xp decreased from %d to %d at score %d", prev, xp, score)
		}
		prev = xp
	}
}

func TestAttemptXPRejectsUnknownDifficulty(t *testing.T) {
	cfg := gamification.DefaultConfig()

	_, err := gamification.AttemptXP(50, domain.Difficulty("nightmare"), cfg)
	var ierr *domain.InvalidArgumentError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}
	if ierr.Argument != "difficulty" {
		t.Fatalf("expected difficulty argument, got %q", ierr.Argument)
	}
}

func TestAttemptXPRejectsOutOfRangeScore(t *testing.T) {
	cfg := gamification.DefaultConfig()

	for _, score := range []int{-1, 101} {
		_, err := gamification.AttemptXP(score, domain.DifficultyMedium, cfg)
		var ierr *domain.InvalidArgumentError
		if !errors.As(err, &ierr) {
			t.Fatalf("expected InvalidArgumentError for score %d, got %v", score, err)
		}
	}
}

func TestLevelFromXPThresholds(t *testing.T) {
	cfg := gamification.DefaultConfig()

	// Level 1 completes at 100, level 2 at 100+floor(100*1.2)=220,
	// level 3 at 220+floor(100*1.44)=364.
	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{-50, 1},
		{99, 1},
		{100, 2},
		{219, 2},
		{220, 3},
		{363, 3},
		{364, 4},
	}
	for _, tc := range cases {
		if got := gamification.LevelFromXP(tc.xp, cfg); got != tc.level {
			t.Fatalf("expected level %d at %d XP, got %d", tc.level, tc.xp, got)
		}
	}
}

func TestLevelFromXPCapsAtMaxLevel(t *testing.T) {
	cfg := gamification.DefaultConfig()

	if got := gamification.LevelFromXP(1<<40, cfg); got != cfg.MaxLevel {
		t.Fatalf("expected max level %d for huge XP, got %d", cfg.MaxLevel, got)
	}
}

func TestLevelFromXPMonotonic(t *testing.T) {
	cfg := gamification.DefaultConfig()
	cfg.MaxLevel = 10

	prev := 0
	for xp := 0; xp <= 5000; xp += 7 {
		level := gamification.LevelFromXP(xp, cfg)
		if level < prev {
			t.Fatalf("level decreased from %d to %d at %d XP", prev, level, xp)
		}
		prev = level
	}
}

func TestXPForNextLevel(t *testing.T) {
	cfg := gamification.DefaultConfig()

	if got := gamification.XPForNextLevel(1, cfg); got != 100 {
		t.Fatalf("expected 100 XP to finish level 1, got %d", got)
	}
	if got := gamification.XPForNextLevel(2, cfg); got != 220 {
		t.Fatalf("expected 220 cumulative XP to finish level 2, got %d", got)
	}
	if got := gamification.XPForNextLevel(cfg.MaxLevel, cfg); got != 0 {
		t.Fatalf("expected 0 at the level cap, got %d", got)
	}
}
