package gamification

import (
	"sort"
	"time"
)

// StreakResult holds the two derived streak counters.
type StreakResult struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// StreakStatus is the derived state of a user's streak. It is always
// recomputed from timestamps, never persisted.
type StreakStatus string

const (
	StreakNone   StreakStatus = "no-streak"
	StreakActive StreakStatus = "active"
	StreakAtRisk StreakStatus = "at-risk"
	StreakBroken StreakStatus = "broken"
)

// RecalculateStreak derives both streak counters from the full attempt
// history. Attempts are reduced to distinct calendar days in now's
// location; a gap of exactly one day continues a run, any larger gap
// breaks it. The current streak is zero when the user missed both today
// and yesterday.
//
// The function is idempotent and side-effect free, so it serves both as
// the incremental updater after each attempt and as the batch
// reconciliation tool that detects drift in stored counters.
func RecalculateStreak(attempts []time.Time, now time.Time) StreakResult {
	days := distinctDays(attempts, now.Location())
	if len(days) == 0 {
		return StreakResult{}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	today := dayOrdinal(now, now.Location())
	last := days[len(days)-1]
	if today-last <= 1 {
		current = 1
		for i := len(days) - 1; i > 0; i-- {
			if days[i]-days[i-1] != 1 {
				break
			}
			current++
		}
	}

	return StreakResult{CurrentStreak: current, LongestStreak: longest}
}

// Status classifies a streak by how long ago the last active day was:
// same day is active, within the grace window is at-risk, beyond it is
// broken.
func Status(lastActivity *time.Time, now time.Time, graceDays int) StreakStatus {
	if lastActivity == nil {
		return StreakNone
	}
	gap := dayOrdinal(now, now.Location()) - dayOrdinal(*lastActivity, now.Location())
	switch {
	case gap <= 0:
		return StreakActive
	case gap <= graceDays:
		return StreakAtRisk
	default:
		return StreakBroken
	}
}

// distinctDays reduces timestamps to sorted unique day ordinals in loc.
func distinctDays(attempts []time.Time, loc *time.Location) []int {
	seen := make(map[int]struct{}, len(attempts))
	for _, t := range attempts {
		seen[dayOrdinal(t, loc)] = struct{}{}
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// dayOrdinal counts whole days since the Unix epoch for the calendar day
// containing t in loc. Building the midnight instant in UTC keeps the
// division exact across DST transitions.
func dayOrdinal(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
