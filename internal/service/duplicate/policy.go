package duplicate

import (
	"strings"
	"time"
)

const (
	DefaultWindow  = 24 * time.Hour
	ExtendedWindow = 72 * time.Hour
)

// DefaultSpecialTests are tests with a long clinically meaningful
// turnaround; they get the extended window.
var DefaultSpecialTests = []string{
	"Blood Culture",
	"Hemoglobin A1c",
	"HbA1c",
	"Urine Culture",
}

// Policy holds the recency windows and the special-test allow-list.
type Policy struct {
	DefaultWindow  time.Duration
	ExtendedWindow time.Duration
	SpecialTests   []string
	// ExactSpecialMatch switches allow-list matching from substring
	// containment to exact equality.
	ExactSpecialMatch bool
}

func DefaultPolicy() Policy {
	special := make([]string, len(DefaultSpecialTests))
	copy(special, DefaultSpecialTests)
	return Policy{
		DefaultWindow:  DefaultWindow,
		ExtendedWindow: ExtendedWindow,
		SpecialTests:   special,
	}
}

// IsSpecial reports whether the candidate test gets the extended window.
// By default a candidate is special when it contains any allow-list entry,
// so "Blood Culture x2" matches "Blood Culture".
func (p Policy) IsSpecial(candidate string) bool {
	for _, entry := range p.SpecialTests {
		if entry == "" {
			continue
		}
		if p.ExactSpecialMatch {
			if candidate == entry {
				return true
			}
			continue
		}
		if strings.Contains(candidate, entry) {
			return true
		}
	}
	return false
}

// WindowFor returns the recency window that applies to candidate.
func (p Policy) WindowFor(candidate string) time.Duration {
	if p.IsSpecial(candidate) {
		return p.ExtendedWindow
	}
	return p.DefaultWindow
}
