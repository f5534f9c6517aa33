package duplicate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/ed-orders/internal/model"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func at(ago time.Duration) string {
	return now.Add(-ago).Format(time.RFC3339)
}

func rec(id, name string, ago time.Duration) model.TestRecord {
	return model.TestRecord{ID: id, PatientMRN: "MRN001", TestName: name, PerformedAt: at(ago)}
}

func TestDetectEmptyHistory(t *testing.T) {
	finding := Detect(DefaultPolicy(), nil, []string{"CBC", "BMP"}, now)

	assert.Empty(t, finding.DuplicateTestNames)
	assert.Empty(t, finding.MostRecentMatchID)
	assert.Nil(t, finding.MostRecentMatchAt)
	assert.False(t, finding.HasDuplicates())
}

func TestDetectDefaultWindow(t *testing.T) {
	tests := []struct {
		name      string
		ago       time.Duration
		duplicate bool
	}{
		{"inside window", 23 * time.Hour, true},
		{"outside window", 25 * time.Hour, false},
		{"exactly on boundary", 24 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []model.TestRecord{rec("r1", "CBC", tt.ago)}
			finding := Detect(DefaultPolicy(), history, []string{"CBC"}, now)
			assert.Equal(t, tt.duplicate, finding.HasDuplicates())
		})
	}
}

func TestDetectExtendedWindowForSpecialTests(t *testing.T) {
	history := []model.TestRecord{rec("r1", "Hemoglobin A1c", 70*time.Hour)}
	finding := Detect(DefaultPolicy(), history, []string{"Hemoglobin A1c"}, now)
	assert.Equal(t, []string{"Hemoglobin A1c"}, finding.DuplicateTestNames)

	history = []model.TestRecord{rec("r1", "Hemoglobin A1c", 80*time.Hour)}
	finding = Detect(DefaultPolicy(), history, []string{"Hemoglobin A1c"}, now)
	assert.Empty(t, finding.DuplicateTestNames)
}

func TestDetectSpecialMatchingIsSubstring(t *testing.T) {
	history := []model.TestRecord{rec("r1", "Blood Culture x2", 48*time.Hour)}

	finding := Detect(DefaultPolicy(), history, []string{"Blood Culture x2"}, now)
	assert.Equal(t, []string{"Blood Culture x2"}, finding.DuplicateTestNames)

	exact := DefaultPolicy()
	exact.ExactSpecialMatch = true
	finding = Detect(exact, history, []string{"Blood Culture x2"}, now)
	assert.Empty(t, finding.DuplicateTestNames)
}

func TestDetectMostRecentAcrossAllDuplicates(t *testing.T) {
	history := []model.TestRecord{
		rec("older", "CBC", 10*time.Hour),
		rec("newest", "BMP", 2*time.Hour),
		rec("cbc-mid", "CBC", 5*time.Hour),
	}
	finding := Detect(DefaultPolicy(), history, []string{"CBC", "BMP"}, now)

	assert.Equal(t, []string{"CBC", "BMP"}, finding.DuplicateTestNames)
	assert.Equal(t, "newest", finding.MostRecentMatchID)
	if assert.NotNil(t, finding.MostRecentMatchAt) {
		assert.True(t, finding.MostRecentMatchAt.Equal(now.Add(-2*time.Hour)))
	}
}

func TestDetectPreservesCandidateOrder(t *testing.T) {
	history := []model.TestRecord{
		rec("a", "Troponin", 1*time.Hour),
		rec("b", "Lactate", 3*time.Hour),
		rec("c", "CBC", 4*time.Hour),
	}
	candidates := []string{"CBC", "Magnesium", "Troponin", "Lactate", "CBC"}

	finding := Detect(DefaultPolicy(), history, candidates, now)
	assert.Equal(t, []string{"CBC", "Troponin", "Lactate"}, finding.DuplicateTestNames)
}

func TestDetectExactTestNameMatch(t *testing.T) {
	history := []model.TestRecord{rec("r1", "CBC with Differential", 1*time.Hour)}
	finding := Detect(DefaultPolicy(), history, []string{"CBC"}, now)
	assert.Empty(t, finding.DuplicateTestNames)
}

func TestDetectSkipsUnparsableTimestamps(t *testing.T) {
	history := []model.TestRecord{
		{ID: "bad", TestName: "CBC", PerformedAt: "yesterday-ish"},
		{ID: "empty", TestName: "CBC", PerformedAt: ""},
		rec("good", "BMP", 1*time.Hour),
	}
	finding := Detect(DefaultPolicy(), history, []string{"CBC", "BMP"}, now)

	assert.Equal(t, []string{"BMP"}, finding.DuplicateTestNames)
	assert.Equal(t, "good", finding.MostRecentMatchID)
	assert.ElementsMatch(t, []string{"bad", "empty"}, finding.Unparsable)
}

func TestDetectDerivesIDWhenRecordHasNone(t *testing.T) {
	history := []model.TestRecord{{TestName: "CBC", PerformedAt: at(2 * time.Hour)}}
	finding := Detect(DefaultPolicy(), history, []string{"CBC"}, now)

	expected := DerivedMatchID(now.Add(-2 * time.Hour))
	assert.Equal(t, expected, finding.MostRecentMatchID)
	assert.Equal(t, expected, Detect(DefaultPolicy(), history, []string{"CBC"}, now).MostRecentMatchID)
}

func TestDetectIsPure(t *testing.T) {
	history := []model.TestRecord{
		rec("r2", "BMP", 2*time.Hour),
		rec("r1", "CBC", 10*time.Hour),
	}
	candidates := []string{"CBC", "BMP"}
	historyCopy := append([]model.TestRecord(nil), history...)
	candidatesCopy := append([]string(nil), candidates...)

	first := Detect(DefaultPolicy(), history, candidates, now)
	second := Detect(DefaultPolicy(), history, candidates, now)

	assert.Equal(t, first, second)
	assert.Equal(t, historyCopy, history)
	assert.Equal(t, candidatesCopy, candidates)
}

func TestPolicyWindowFor(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, ExtendedWindow, p.WindowFor("Blood Culture"))
	assert.Equal(t, ExtendedWindow, p.WindowFor("Hemoglobin A1c"))
	assert.Equal(t, DefaultWindow, p.WindowFor("CBC"))
	assert.Equal(t, DefaultWindow, p.WindowFor(""))
}
