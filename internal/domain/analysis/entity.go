package analysis

import "strings"

// Verdict is the orchestrator's overall performance rating
type Verdict string

const (
	VerdictStrong Verdict = "STRONG"
	VerdictMixed  Verdict = "MIXED"
	VerdictPoor   Verdict = "POOR"
)

// IsValid returns true if the verdict is a known rating
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictStrong, VerdictMixed, VerdictPoor:
		return true
	}
	return false
}

// ExtractVerdict pulls the performance rating out of a final summary.
// Ratings are matched case-sensitively in priority order, so a summary
// that argues through several ratings before settling still resolves
// to the one actually stated first.
func ExtractVerdict(text string) (Verdict, bool) {
	idx := -1
	var found Verdict
	for _, v := range []Verdict{VerdictStrong, VerdictMixed, VerdictPoor} {
		i := strings.Index(text, string(v))
		if i == -1 {
			continue
		}
		if idx == -1 || i < idx {
			idx = i
			found = v
		}
	}
	if idx == -1 {
		return "", false
	}
	return found, true
}
