// Package validate diffs extracted spec items against ground truth and
// computes coverage and accuracy metrics.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"specdoc/internal/spec"
)

// Report is the result of one validation run. It is derived data,
// recomputed fully each time and never incrementally updated.
type Report struct {
	GroundTruthCount int      `json:"ground_truth_count"`
	ExtractedCount   int      `json:"extracted_count"`
	MatchedCount     int      `json:"matched_count"`
	Missing          []string `json:"missing"`
	Extra            []string `json:"extra"`
	CoveragePct      float64  `json:"coverage_pct"`
	AccuracyPct      float64  `json:"accuracy_pct"`
}

// Compare diffs the two collections by spec_item key.
//
// Coverage is the share of ground-truth keys present in the extraction
// (0 when ground truth is empty). Accuracy is the share of matched keys
// whose values agree after trimming and case folding (0 when nothing
// matched). Items with empty extracted values count as present for
// coverage but never contribute to the accuracy numerator.
func Compare(extracted, groundTruth []spec.Item) Report {
	ext := spec.ByKey(extracted)
	gt := spec.ByKey(groundTruth)

	r := Report{
		GroundTruthCount: len(gt),
		ExtractedCount:   len(ext),
		Missing:          []string{},
		Extra:            []string{},
	}

	accurate := 0
	for key, want := range gt {
		got, ok := ext[key]
		if !ok {
			r.Missing = append(r.Missing, key)
			continue
		}
		r.MatchedCount++
		if strings.TrimSpace(got.Value) == "" {
			continue
		}
		if valuesEqual(got.Value, want.Value) {
			accurate++
		}
	}
	for key := range ext {
		if _, ok := gt[key]; !ok {
			r.Extra = append(r.Extra, key)
		}
	}
	sort.Strings(r.Missing)
	sort.Strings(r.Extra)

	if r.GroundTruthCount > 0 {
		r.CoveragePct = float64(r.MatchedCount) / float64(r.GroundTruthCount) * 100
	}
	if r.MatchedCount > 0 {
		r.AccuracyPct = float64(accurate) / float64(r.MatchedCount) * 100
	}
	return r
}

func valuesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Format renders the human-readable validation summary.
func (r Report) Format() string {
	var sb strings.Builder
	sb.WriteString("Quality Validation Report\n")
	sb.WriteString("=========================\n")
	fmt.Fprintf(&sb, "ground_truth_count: %d\n", r.GroundTruthCount)
	fmt.Fprintf(&sb, "extracted_count:    %d\n", r.ExtractedCount)
	fmt.Fprintf(&sb, "matched_count:      %d\n", r.MatchedCount)
	fmt.Fprintf(&sb, "coverage_pct:       %.1f\n", r.CoveragePct)
	fmt.Fprintf(&sb, "accuracy_pct:       %.1f\n", r.AccuracyPct)
	if len(r.Missing) > 0 {
		fmt.Fprintf(&sb, "missing:            %s\n", strings.Join(r.Missing, ", "))
	}
	if len(r.Extra) > 0 {
		fmt.Fprintf(&sb, "extra:              %s\n", strings.Join(r.Extra, ", "))
	}
	return sb.String()
}
