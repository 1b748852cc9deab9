// Package confidence triages extracted spec items by confidence score and
// flags low-confidence content gaps for SME review.
package confidence

import "sort"

// Level is the discrete confidence bucket derived from a numeric score.
// The ordering is total: a higher score never maps to a lower level.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelVeryHigh
)

// Fixed breakpoints for the score → level mapping. Every value in [0,100]
// maps to exactly one level.
const (
	mediumBreak   = 50.0
	highBreak     = 70.0
	veryHighBreak = 85.0
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelVeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// LevelFor maps a confidence percentage onto its discrete level.
func LevelFor(score float64) Level {
	switch {
	case score >= veryHighBreak:
		return LevelVeryHigh
	case score >= highBreak:
		return LevelHigh
	case score >= mediumBreak:
		return LevelMedium
	default:
		return LevelLow
	}
}

// TriageResult is the outcome of partitioning identifiers by threshold.
type TriageResult struct {
	Threshold    float64  `json:"threshold"`
	TotalSpecs   int      `json:"total_specs"`
	AutoApproved []string `json:"auto_approved"`
	ReviewNeeded []string `json:"review_needed"`
}

// Triage partitions every identifier into exactly one bucket: scores at or
// above the threshold are auto-approved, the rest need review. No
// identifier is dropped or duplicated; both lists are sorted.
func Triage(scores map[string]float64, threshold float64) TriageResult {
	res := TriageResult{
		Threshold:    threshold,
		TotalSpecs:   len(scores),
		AutoApproved: []string{},
		ReviewNeeded: []string{},
	}
	for id, score := range scores {
		if score >= threshold {
			res.AutoApproved = append(res.AutoApproved, id)
		} else {
			res.ReviewNeeded = append(res.ReviewNeeded, id)
		}
	}
	sort.Strings(res.AutoApproved)
	sort.Strings(res.ReviewNeeded)
	return res
}
