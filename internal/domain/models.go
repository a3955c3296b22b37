package domain

import "time"

// Difficulty tags a case and scales its XP reward.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Axis is the cardiac electrical axis category.
type Axis string

const (
	AxisNormal         Axis = "normal"
	AxisLeftDeviation  Axis = "left"
	AxisRightDeviation Axis = "right"
	AxisExtreme        Axis = "extreme"
)

// IntervalCategory classifies a measured interval (PR, QRS, QT).
type IntervalCategory string

const (
	IntervalShort     IntervalCategory = "short"
	IntervalNormal    IntervalCategory = "normal"
	IntervalProlonged IntervalCategory = "prolonged"
)

// RateBucket is the clinically-equivalent heart rate class.
// Exact bpm matching is not clinically meaningful; scoring compares buckets.
type RateBucket string

const (
	RateBradycardia RateBucket = "bradycardia"
	RateNormal      RateBucket = "normal"
	RateTachycardia RateBucket = "tachycardia"
)

// BucketForRate maps a bpm value to its rate bucket using the fixed
// breakpoints <60, 60-100, >100.
func BucketForRate(bpm int) RateBucket {
	switch {
	case bpm < 60:
		return RateBradycardia
	case bpm <= 100:
		return RateNormal
	default:
		return RateTachycardia
	}
}

// Report is one structured ECG interpretation. The official report is the
// answer key owned by the case; a user report is a single immutable
// submission of the same shape.
type Report struct {
	Rhythm        []string         `json:"rhythm"`
	HeartRate     int              `json:"heartRate"`
	Axis          Axis             `json:"axis"`
	PRInterval    IntervalCategory `json:"prInterval"`
	QRSDuration   IntervalCategory `json:"qrsDuration"`
	QTInterval    IntervalCategory `json:"qtInterval"`
	Findings      []string         `json:"findings"`
	ElectrodeSwap []string         `json:"electrodeSwap,omitempty"`
}

// Case is an ECG image plus its official answer key.
type Case struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	ImageURL   string     `json:"imageUrl"`
	Difficulty Difficulty `json:"difficulty"`
	Official   Report     `json:"official"`
}

// FieldComparison explains one scored field of an attempt.
type FieldComparison struct {
	Field        string `json:"field"`
	Label        string `json:"label"`
	UserValue    string `json:"userValue"`
	CorrectValue string `json:"correctValue"`
	IsCorrect    bool   `json:"isCorrect"`
	Points       int    `json:"points"`
	MaxPoints    int    `json:"maxPoints"`
}

// ScoringResult is the outcome of comparing a user report against the
// official one. Score equals round(100 * sum(points) / sum(maxPoints)),
// rounded exactly once.
type ScoringResult struct {
	Score       int               `json:"score"`
	Comparisons []FieldComparison `json:"comparisons"`
}

// Attempt is one recorded submission: the scoring outcome plus the XP it
// earned. Persisted by the attempt history store.
type Attempt struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"userId"`
	CaseID     string     `json:"caseId"`
	Score      int        `json:"score"`
	Difficulty Difficulty `json:"difficulty"`
	XPAwarded  int        `json:"xpAwarded"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// UserStats is the per-user gamification record. CurrentLevel is always
// derivable from TotalXP; streaks are always derivable from attempt
// timestamps. Both are stored for cheap reads and reconciled in batch.
type UserStats struct {
	UserID           string     `json:"userId"`
	TotalXP          int        `json:"totalXp"`
	CurrentLevel     int        `json:"currentLevel"`
	CurrentStreak    int        `json:"currentStreak"`
	LongestStreak    int        `json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
	TotalAttempts    int        `json:"totalAttempts"`
	TotalPerfect     int        `json:"totalPerfect"`
}

// ProgressEntry is a snapshot-friendly view of one user on a cohort board.
type ProgressEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	TotalXP     int    `json:"totalXp"`
	Level       int    `json:"level"`
	Streak      int    `json:"streak"`
}

// ProgressBoard captures the ordered XP scoreboard for a practice cohort.
type ProgressBoard struct {
	CohortID  string          `json:"cohortId"`
	Entries   []ProgressEntry `json:"entries"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ReconciliationFix records one corrected stats drift found by a batch run.
type ReconciliationFix struct {
	UserID         string `json:"userId"`
	StoredLevel    int    `json:"storedLevel"`
	ComputedLevel  int    `json:"computedLevel"`
	StoredStreak   int    `json:"storedStreak"`
	ComputedStreak int    `json:"computedStreak"`
}
