package scoring_test

import (
	"errors"
	"testing"

	"ecg-practice-service/internal/domain"
	"ecg-practice-service/internal/scoring"
)

func baselineReport() domain.Report {
	return domain.Report{
		Rhythm:      []string{"sinus"},
		HeartRate:   72,
		Axis:        domain.AxisNormal,
		PRInterval:  domain.IntervalNormal,
		QRSDuration: domain.IntervalNormal,
		QTInterval:  domain.IntervalNormal,
		Findings:    []string{},
	}
}

func TestPerfectMatchScoresFull(t *testing.T) {
	official := baselineReport()

	result, err := scoring.Score(official, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("expected 100 for a report scored against itself, got %d", result.Score)
	}
	if len(result.Comparisons) != 8 {
		t.Fatalf("expected 8 comparisons, got %d", len(result.Comparisons))
	}
	for _, c := range result.Comparisons {
		if !c.IsCorrect || c.Points != c.MaxPoints {
			t.Fatalf("expected full marks on %s, got %+v", c.Field, c)
		}
	}
}

func TestComparisonOrderIsStable(t *testing.T) {
	want := []string{"rhythm", "heartRate", "axis", "prInterval", "qrsDuration", "qtInterval", "findings", "electrodeSwap"}

	result, err := scoring.Score(baselineReport(), baselineReport())
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	for i, c := range result.Comparisons {
		if c.Field != want[i] {
			t.Fatalf("expected field %q at position %d, got %q", want[i], i, c.Field)
		}
	}
}

func TestFindingsMismatchScenario(t *testing.T) {
	official := baselineReport()
	user := baselineReport()
	user.Findings = []string{"lvh"}

	result, err := scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	incorrect := 0
	maxTotal, findingsWeight := 0, 0
	for _, c := range result.Comparisons {
		maxTotal += c.MaxPoints
		if !c.IsCorrect {
			incorrect++
			if c.Field != "findings" {
				t.Fatalf("expected only findings to be wrong, got %s", c.Field)
			}
			findingsWeight = c.MaxPoints
		}
	}
	if incorrect != 1 {
		t.Fatalf("expected exactly one incorrect field, got %d", incorrect)
	}
	// round(100 * (maxTotal - findingsWeight) / maxTotal) with the fixed table
	want := 80
	if 100*(maxTotal-findingsWeight)%maxTotal != 0 {
		t.Fatalf("fixture drifted: expected an exact ratio with the current weight table")
	}
	if result.Score != want {
		t.Fatalf("expected score %d, got %d", want, result.Score)
	}
}

func TestRoundsOnceOnFinalRatio(t *testing.T) {
	official := baselineReport()
	official.ElectrodeSwap = []string{"la-ra"}

	// Correct on rhythm (4) and axis (1) only: 5/15 of the points.
	user := domain.Report{
		Rhythm:      []string{"sinus"},
		HeartRate:   130,
		Axis:        domain.AxisNormal,
		PRInterval:  domain.IntervalProlonged,
		QRSDuration: domain.IntervalProlonged,
		QTInterval:  domain.IntervalProlonged,
		Findings:    []string{"lvh"},
	}

	result, err := scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}

	// Final-ratio rounding: round(100*5/15) = 33. Rounding each field's
	// share separately would give round(26.67)+round(6.67) = 34, so the two
	// policies diverge on this input.
	if result.Score != 33 {
		t.Fatalf("expected 33 (single final rounding), got %d", result.Score)
	}
}

func TestScoreBounds(t *testing.T) {
	official := baselineReport()
	user := domain.Report{
		Rhythm:      []string{"afib"},
		HeartRate:   40,
		Axis:        domain.AxisLeftDeviation,
		PRInterval:  domain.IntervalShort,
		QRSDuration: domain.IntervalProlonged,
		QTInterval:  domain.IntervalProlonged,
		Findings:    []string{"lvh"},
		ElectrodeSwap: []string{
			"la-ra",
		},
	}

	result, err := scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Score != 0 {
		t.Fatalf("expected 0 for an entirely wrong report, got %d", result.Score)
	}
}

func TestHeartRateComparedByBucket(t *testing.T) {
	official := baselineReport()
	official.HeartRate = 95

	user := baselineReport()
	user.HeartRate = 62 // different bpm, same normal bucket

	result, err := scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("expected bucket match to count as correct, got %d", result.Score)
	}

	user.HeartRate = 59 // bradycardia vs normal
	result, err = scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	for _, c := range result.Comparisons {
		if c.Field == "heartRate" && c.IsCorrect {
			t.Fatalf("expected bucket mismatch to be incorrect, got %+v", c)
		}
	}
}

func TestSetFieldsAreAtomic(t *testing.T) {
	official := baselineReport()
	official.Rhythm = []string{"sinus", "pvc"}

	// Partial overlap earns nothing for the field.
	user := baselineReport()
	user.Rhythm = []string{"sinus"}
	result, err := scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Comparisons[0].Points != 0 {
		t.Fatalf("expected zero points for partial rhythm overlap, got %d", result.Comparisons[0].Points)
	}

	// Order and duplicates do not matter.
	user.Rhythm = []string{"pvc", "sinus", "pvc"}
	result, err = scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if !result.Comparisons[0].IsCorrect {
		t.Fatalf("expected reordered duplicate set to match, got %+v", result.Comparisons[0])
	}
}

func TestValidationFailsFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.Report)
		field  string
	}{
		{"missing rhythm", func(r *domain.Report) { r.Rhythm = nil }, "rhythm"},
		{"missing heart rate", func(r *domain.Report) { r.HeartRate = 0 }, "heartRate"},
		{"missing axis", func(r *domain.Report) { r.Axis = "" }, "axis"},
		{"missing pr interval", func(r *domain.Report) { r.PRInterval = "" }, "prInterval"},
		{"missing qrs duration", func(r *domain.Report) { r.QRSDuration = "" }, "qrsDuration"},
		{"missing qt interval", func(r *domain.Report) { r.QTInterval = "" }, "qtInterval"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := baselineReport()
			tc.mutate(&user)

			_, err := scoring.Score(user, baselineReport())
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
		})
	}

	// An incomplete official report is rejected the same way.
	official := baselineReport()
	official.Rhythm = nil
	var verr *domain.ValidationError
	if _, err := scoring.Score(baselineReport(), official); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for incomplete official report, got %v", err)
	}
}

func TestNilFindingsIsEmptySet(t *testing.T) {
	official := baselineReport()
	official.Findings = []string{}

	user := baselineReport()
	user.Findings = nil

	result, err := scoring.Score(user, official)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Score != 100 {
		t.Fatalf("expected nil findings to equal the empty set, got %d", result.Score)
	}
}
