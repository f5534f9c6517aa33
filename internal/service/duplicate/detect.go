package duplicate

import (
	"strconv"
	"time"

	"github.com/jwalitptl/ed-orders/internal/model"
)

// DerivedMatchID builds the navigation id for a record that carries no id
// of its own. The same timestamp always yields the same id.
func DerivedMatchID(ts time.Time) string {
	return "result-" + strconv.FormatInt(ts.UnixMilli(), 10)
}

// Detect returns the candidates already performed inside their recency
// window, in candidate order, together with the most recent matching record
// across all duplicates. It does not modify history or candidates.
func Detect(policy Policy, history []model.TestRecord, candidates []string, now time.Time) model.DuplicateFinding {
	finding := model.DuplicateFinding{DuplicateTestNames: []string{}}
	if len(history) == 0 || len(candidates) == 0 {
		return finding
	}

	parsed := make([]time.Time, len(history))
	valid := make([]bool, len(history))
	for i, rec := range history {
		parsed[i], valid[i] = model.ParseTimestamp(rec.PerformedAt)
		if !valid[i] {
			finding.Unparsable = append(finding.Unparsable, recordLabel(rec, i))
		}
	}

	var (
		best    = -1
		bestAt  time.Time
		matched = make(map[string]bool, len(candidates))
	)
	for _, candidate := range candidates {
		if matched[candidate] {
			continue
		}
		cutoff := now.Add(-policy.WindowFor(candidate))

		isDuplicate := false
		for i, rec := range history {
			if !valid[i] || rec.TestName != candidate {
				continue
			}
			if !parsed[i].After(cutoff) {
				continue
			}
			isDuplicate = true
			if best < 0 || parsed[i].After(bestAt) {
				best = i
				bestAt = parsed[i]
			}
		}
		if isDuplicate {
			matched[candidate] = true
			finding.DuplicateTestNames = append(finding.DuplicateTestNames, candidate)
		}
	}

	if best >= 0 {
		finding.MostRecentMatchAt = &bestAt
		finding.MostRecentMatchID = history[best].ID
		if finding.MostRecentMatchID == "" {
			finding.MostRecentMatchID = DerivedMatchID(bestAt)
		}
	}
	return finding
}

func recordLabel(rec model.TestRecord, index int) string {
	if rec.ID != "" {
		return rec.ID
	}
	return "#" + strconv.Itoa(index)
}
