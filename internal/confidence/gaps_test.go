package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeGaps_SeverityScalesInverselyWithConfidence(t *testing.T) {
	contents := map[string]string{
		"Power":  "750 W",
		"Weight": "24.5 lbs",
		"Fans":   "6 hot-swap",
	}
	scores := map[string]float64{
		"Power":  20, // below 30 → High
		"Weight": 40, // below 50 → Medium
		"Fans":   65, // below threshold 70 → Low
	}

	gaps := AnalyzeGaps(contents, scores, 70)
	require.Len(t, gaps, 3)

	bySeverity := map[string]Severity{}
	for _, g := range gaps {
		bySeverity[g.AffectedSections[0]] = g.Severity
	}
	assert.Equal(t, SeverityHigh, bySeverity["Power"])
	assert.Equal(t, SeverityMedium, bySeverity["Weight"])
	assert.Equal(t, SeverityLow, bySeverity["Fans"])

	for _, g := range gaps {
		assert.Equal(t, GapLowConfidence, g.GapType)
	}
}

func TestAnalyzeGaps_AboveThresholdProducesNoGap(t *testing.T) {
	gaps := AnalyzeGaps(
		map[string]string{"Power": "750 W"},
		map[string]float64{"Power": 92},
		70,
	)
	assert.Empty(t, gaps)
}

func TestAnalyzeGaps_MissingScoreAndEmptyContent(t *testing.T) {
	contents := map[string]string{
		"Power":  "750 W",
		"Weight": "   ",
	}
	scores := map[string]float64{"Weight": 90}

	gaps := AnalyzeGaps(contents, scores, 70)
	require.Len(t, gaps, 2)

	byType := map[GapType]GapRecord{}
	for _, g := range gaps {
		byType[g.GapType] = g
	}
	require.Contains(t, byType, GapMissingScore)
	require.Contains(t, byType, GapMissingContent)
	assert.Equal(t, []string{"Power"}, byType[GapMissingScore].AffectedSections)
	assert.Equal(t, SeverityHigh, byType[GapMissingScore].Severity)
	assert.Equal(t, []string{"Weight"}, byType[GapMissingContent].AffectedSections)
}

func TestAnalyzeGaps_DeterministicOrder(t *testing.T) {
	contents := map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"}
	scores := map[string]float64{"a": 60, "b": 10, "c": 60, "d": 10}

	first := AnalyzeGaps(contents, scores, 70)
	second := AnalyzeGaps(contents, scores, 70)
	require.Equal(t, first, second)

	// High severity gaps come first, ties broken by section name.
	assert.Equal(t, []string{"b"}, first[0].AffectedSections)
	assert.Equal(t, []string{"d"}, first[1].AffectedSections)
	assert.Equal(t, []string{"a"}, first[2].AffectedSections)
	assert.Equal(t, []string{"c"}, first[3].AffectedSections)
}

func TestSMEQuestions_OnePerGap(t *testing.T) {
	gaps := AnalyzeGaps(
		map[string]string{"Heat dissipation": "4248.116 BTUs per hour"},
		map[string]float64{"Heat dissipation": 35},
		70,
	)
	require.Len(t, gaps, 1)

	questions := SMEQuestions(gaps)
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0], "Heat dissipation")
	assert.Contains(t, questions[0], "35.0")
}
