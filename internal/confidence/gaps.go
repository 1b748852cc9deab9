package confidence

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks how badly a gap needs attention.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// GapType classifies why a content area was flagged.
type GapType string

const (
	GapLowConfidence  GapType = "low_confidence"
	GapMissingScore   GapType = "missing_score"
	GapMissingContent GapType = "missing_content"
)

// GapRecord flags a content area whose confidence falls short. Records are
// immutable after creation and feed SME question generation.
type GapRecord struct {
	Description      string   `json:"description"`
	Severity         Severity `json:"severity"`
	Confidence       float64  `json:"confidence"`
	AffectedSections []string `json:"affected_sections"`
	GapType          GapType  `json:"gap_type"`
}

// Severity bands for low-confidence gaps. Lower confidence means higher
// severity.
const (
	highSeverityBelow   = 30.0
	mediumSeverityBelow = 50.0
)

func severityFor(score float64) Severity {
	switch {
	case score < highSeverityBelow:
		return SeverityHigh
	case score < mediumSeverityBelow:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// AnalyzeGaps cross-references content sections against confidence scores.
// A section scores a gap when its confidence is below gapThreshold, when it
// has content but no score at all, or when it is scored but empty. Results
// are ordered by severity descending, then section identifier, so reports
// are reproducible.
func AnalyzeGaps(contents map[string]string, scores map[string]float64, gapThreshold float64) []GapRecord {
	var gaps []GapRecord

	for id, body := range contents {
		score, scored := scores[id]
		switch {
		case !scored:
			gaps = append(gaps, GapRecord{
				Description:      fmt.Sprintf("Section %q has content but no confidence score assigned", id),
				Severity:         SeverityHigh,
				Confidence:       0,
				AffectedSections: []string{id},
				GapType:          GapMissingScore,
			})
		case strings.TrimSpace(body) == "":
			gaps = append(gaps, GapRecord{
				Description:      fmt.Sprintf("Section %q is scored but contains no content", id),
				Severity:         SeverityMedium,
				Confidence:       score,
				AffectedSections: []string{id},
				GapType:          GapMissingContent,
			})
		case score < gapThreshold:
			gaps = append(gaps, GapRecord{
				Description: fmt.Sprintf("Section %q confidence %.1f is below the review threshold %.1f",
					id, score, gapThreshold),
				Severity:         severityFor(score),
				Confidence:       score,
				AffectedSections: []string{id},
				GapType:          GapLowConfidence,
			})
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Severity != gaps[j].Severity {
			return gaps[i].Severity > gaps[j].Severity
		}
		return gaps[i].AffectedSections[0] < gaps[j].AffectedSections[0]
	})
	return gaps
}

// SMEQuestions renders one follow-up question prompt per gap record, in gap
// order, for handing to a subject-matter expert.
func SMEQuestions(gaps []GapRecord) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		section := strings.Join(g.AffectedSections, ", ")
		var q string
		switch g.GapType {
		case GapMissingContent:
			q = fmt.Sprintf("[%s] What should section %s contain? It is currently empty.", g.Severity, section)
		case GapMissingScore:
			q = fmt.Sprintf("[%s] Can you verify section %s? It was never confidence-scored.", g.Severity, section)
		default:
			q = fmt.Sprintf("[%s] Can you confirm the values in section %s? Extraction confidence was only %.1f%%.",
				g.Severity, section, g.Confidence)
		}
		out = append(out, q)
	}
	return out
}
