package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ecg-practice-service/internal/domain"
)

// Field weights are a fixed configuration table, not computed. Rhythm and
// findings carry the most clinical significance and are weighted heaviest;
// interval categories the least.
const (
	weightRhythm        = 4
	weightFindings      = 3
	weightHeartRate     = 2
	weightElectrodeSwap = 2
	weightAxis          = 1
	weightPRInterval    = 1
	weightQRSDuration   = 1
	weightQTInterval    = 1
)

type fieldSpec struct {
	name    string
	label   string
	weight  int
	compare func(user, official domain.Report) (userValue, correctValue string, correct bool)
}

// scoredFields fixes the comparison order; results are always emitted in
// declaration order, never data-dependent.
var scoredFields = []fieldSpec{
	{
		name:   "rhythm",
		label:  "Rhythm",
		weight: weightRhythm,
		compare: func(u, o domain.Report) (string, string, bool) {
			return setValue(u.Rhythm), setValue(o.Rhythm), setsEqual(u.Rhythm, o.Rhythm)
		},
	},
	{
		name:   "heartRate",
		label:  "Heart Rate",
		weight: weightHeartRate,
		compare: func(u, o domain.Report) (string, string, bool) {
			ub, ob := domain.BucketForRate(u.HeartRate), domain.BucketForRate(o.HeartRate)
			return rateValue(u.HeartRate, ub), rateValue(o.HeartRate, ob), ub == ob
		},
	},
	{
		name:   "axis",
		label:  "Axis",
		weight: weightAxis,
		compare: func(u, o domain.Report) (string, string, bool) {
			return string(u.Axis), string(o.Axis), u.Axis == o.Axis
		},
	},
	{
		name:   "prInterval",
		label:  "PR Interval",
		weight: weightPRInterval,
		compare: func(u, o domain.Report) (string, string, bool) {
			return string(u.PRInterval), string(o.PRInterval), u.PRInterval == o.PRInterval
		},
	},
	{
		name:   "qrsDuration",
		label:  "QRS Duration",
		weight: weightQRSDuration,
		compare: func(u, o domain.Report) (string, string, bool) {
			return string(u.QRSDuration), string(o.QRSDuration), u.QRSDuration == o.QRSDuration
		},
	},
	{
		name:   "qtInterval",
		label:  "QT Interval",
		weight: weightQTInterval,
		compare: func(u, o domain.Report) (string, string, bool) {
			return string(u.QTInterval), string(o.QTInterval), u.QTInterval == o.QTInterval
		},
	},
	{
		name:   "findings",
		label:  "Findings",
		weight: weightFindings,
		compare: func(u, o domain.Report) (string, string, bool) {
			return setValue(u.Findings), setValue(o.Findings), setsEqual(u.Findings, o.Findings)
		},
	},
	{
		name:   "electrodeSwap",
		label:  "Electrode Swap",
		weight: weightElectrodeSwap,
		compare: func(u, o domain.Report) (string, string, bool) {
			return setValue(u.ElectrodeSwap), setValue(o.ElectrodeSwap), setsEqual(u.ElectrodeSwap, o.ElectrodeSwap)
		},
	},
}

// Score compares a user report against the official one field by field and
// returns the weighted result. It is a pure function: no I/O, no retries,
// and the only failure mode is an incomplete input report.
//
// Set-valued fields (rhythm, findings, electrodeSwap) are scored atomically:
// correctness is exact set equality with duplicates collapsed, and a partial
// overlap earns zero for the whole field. Heart rate is compared by clinical
// bucket, not exact bpm. Rounding is applied exactly once, on the final
// ratio.
func Score(user, official domain.Report) (domain.ScoringResult, error) {
	if err := validate(user); err != nil {
		return domain.ScoringResult{}, err
	}
	if err := validate(official); err != nil {
		return domain.ScoringResult{}, err
	}

	comparisons := make([]domain.FieldComparison, 0, len(scoredFields))
	awarded, maxTotal := 0, 0
	for _, f := range scoredFields {
		userValue, correctValue, correct := f.compare(user, official)
		points := 0
		if correct {
			points = f.weight
		}
		awarded += points
		maxTotal += f.weight
		comparisons = append(comparisons, domain.FieldComparison{
			Field:        f.name,
			Label:        f.label,
			UserValue:    userValue,
			CorrectValue: correctValue,
			IsCorrect:    correct,
			Points:       points,
			MaxPoints:    f.weight,
		})
	}

	return domain.ScoringResult{
		Score:       int(math.Round(100 * float64(awarded) / float64(maxTotal))),
		Comparisons: comparisons,
	}, nil
}

// validate checks that every required field is populated. Rhythm must carry
// at least one tag; findings and electrodeSwap may be empty sets.
func validate(r domain.Report) error {
	if len(r.Rhythm) == 0 {
		return &domain.ValidationError{Field: "rhythm"}
	}
	if r.HeartRate <= 0 {
		return &domain.ValidationError{Field: "heartRate"}
	}
	if r.Axis == "" {
		return &domain.ValidationError{Field: "axis"}
	}
	if r.PRInterval == "" {
		return &domain.ValidationError{Field: "prInterval"}
	}
	if r.QRSDuration == "" {
		return &domain.ValidationError{Field: "qrsDuration"}
	}
	if r.QTInterval == "" {
		return &domain.ValidationError{Field: "qtInterval"}
	}
	return nil
}

// setsEqual compares two tag sets order-independently with duplicates
// collapsed. Nil and empty are the same set.
func setsEqual(a, b []string) bool {
	as, bs := collapse(a), collapse(b)
	if len(as) != len(bs) {
		return false
	}
	for tag := range as {
		if _, ok := bs[tag]; !ok {
			return false
		}
	}
	return true
}

func collapse(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func setValue(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	set := collapse(tags)
	sorted := make([]string, 0, len(set))
	for tag := range set {
		sorted = append(sorted, tag)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func rateValue(bpm int, bucket domain.RateBucket) string {
	return fmt.Sprintf("%d bpm (%s)", bpm, bucket)
}
