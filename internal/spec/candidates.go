package spec

import (
	"regexp"
	"strings"

	"specdoc/internal/content"
)

// Candidate extraction scans section lines for "Label: value" and
// "Label - value" shapes. It is a deliberately simple front end: the real
// signal comes from confidence calibration and downstream triage, not from
// clever matching.

var (
	colonLine  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ()/%.-]{2,60}?)\s*:\s+(\S.*)$`)
	dashLine   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 ()/%.]{2,60}?)\s+[-–]\s+(\S.*)$`)
	numericRe  = regexp.MustCompile(`\d`)
	unitShapeRe = regexp.MustCompile(`\d[\d,.]*\s*[A-Za-z°%]`)
)

// ExtractCandidates walks the document tree and returns one Item per
// distinct label found, with a calibrated heuristic confidence. The first
// occurrence of a label wins; later duplicates are ignored.
func ExtractCandidates(doc *content.Document) []Item {
	var items []Item
	seen := make(map[string]bool)

	doc.Walk(func(s *content.Section) {
		for _, line := range s.Content {
			label, value, shape := splitCandidate(line)
			if label == "" {
				continue
			}
			if seen[label] {
				continue
			}
			seen[label] = true
			items = append(items, Item{
				SpecItem:   label,
				Value:      value,
				Confidence: calibrateConfidence(shape, label, value, s.Heading),
			})
		}
	})
	return items
}

func splitCandidate(line string) (label, value, shape string) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "• ")
	line = strings.TrimPrefix(line, "- ")
	if m := colonLine.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), "colon"
	}
	if m := dashLine.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), "dash"
	}
	return "", "", ""
}

// calibrateConfidence assigns a percentage score from the match shape plus
// adjustments for how value-like the extracted text looks.
func calibrateConfidence(shape, label, value, heading string) float64 {
	base := baseConfidence(shape)

	if unitShapeRe.MatchString(value) {
		base += 12
	} else if numericRe.MatchString(value) {
		base += 5
	} else {
		base -= 10
	}

	if len(value) > 80 {
		base -= 15
	}
	if len(strings.Fields(label)) > 6 {
		base -= 8
	}
	if heading != "" && strings.Contains(strings.ToLower(heading), "specification") {
		base += 6
	}

	return clamp(base, 5, 99)
}

func baseConfidence(shape string) float64 {
	switch shape {
	case "colon":
		return 72
	case "dash":
		return 60
	default:
		return 50
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
