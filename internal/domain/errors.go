package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCaseNotFound indicates the case content could not be loaded.
	ErrCaseNotFound = errors.New("case not found")
	// ErrBoardNotFound is returned when a cohort board has not been initialized.
	ErrBoardNotFound = errors.New("progress board not found")
	// ErrParticipantNotFound is returned when a user acts before joining a board.
	ErrParticipantNotFound = errors.New("participant not found on board")
	// ErrStatsNotFound indicates no stats record exists for the user yet.
	ErrStatsNotFound = errors.New("user stats not found")
)

// ValidationError reports an incomplete report submitted for scoring.
// Scoring fails fast on the first missing required field; no partial
// result is produced.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("report validation failed: missing required field %q", e.Field)
}

// InvalidArgumentError reports an out-of-range or unknown input to a
// gamification computation, such as an unrecognized difficulty tag.
// Unknown keys fail loudly instead of defaulting; silent fallbacks have
// historically masked data-entry mistakes upstream.
type InvalidArgumentError struct {
	Argument string
	Value    string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Argument, e.Value)
}
