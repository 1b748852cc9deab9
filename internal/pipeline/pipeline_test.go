package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specdoc/internal/config"
	"specdoc/internal/spec"
)

const guideMarkdown = `# PowerEdge R750

## Technical Specifications

Heat dissipation: 4248.116 BTUs per hour
Chassis weight: 24.5 lbs
Depth: 5 in
`

func writeGuide(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(guideMarkdown), 0644))
	return path
}

func writeGroundTruth(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ground_truth.json")
	items := []spec.Item{
		{SpecItem: "Heat dissipation", Value: "4248.116 BTUs per hour", Confidence: 95},
		{SpecItem: "Chassis weight", Value: "24.5 LBS", Confidence: 95},
		{SpecItem: "Fans", Value: "6", Confidence: 95},
	}
	require.NoError(t, spec.SaveItems(path, items))
	return path
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	p := &Pipeline{Config: config.Default()}

	res, err := p.Run(context.Background(), writeGuide(t, dir), writeGroundTruth(t, dir), outDir)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.RunID)

	// All extracted candidates score above the triage threshold.
	assert.Equal(t, 3, res.Triage.TotalSpecs)
	assert.Contains(t, res.Triage.AutoApproved, "Heat dissipation")
	assert.Empty(t, res.Gaps)

	// Units learned from ground truth drive the templating.
	assert.Contains(t, res.Markdown, "{{Heat dissipation}} per hour")
	assert.Contains(t, res.Markdown, "{{Chassis weight}}")
	// No ground-truth item carries an inch value, so depth stays literal.
	assert.Contains(t, res.Markdown, "Depth: 5 in")

	require.NotNil(t, res.Quality)
	assert.InDelta(t, 66.7, res.Quality.CoveragePct, 0.1)
	assert.Equal(t, 100.0, res.Quality.AccuracyPct)
	assert.Equal(t, []string{"Fans"}, res.Quality.Missing)
	assert.Equal(t, []string{"Depth"}, res.Quality.Extra)

	for _, name := range []string{
		"extracted_specs.json",
		"triage.json",
		"unit_registry.json",
		"rules.yaml",
		"templated_content.json",
		"output.md",
		"gaps.json",
		"sme_questions.txt",
		"quality_report.txt",
		"pipeline_report.json",
	} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, "expected output file %s", name)
	}
}

func TestRun_WithoutGroundTruth(t *testing.T) {
	dir := t.TempDir()
	p := &Pipeline{Config: config.Default()}

	res, err := p.Run(context.Background(), writeGuide(t, dir), "", filepath.Join(dir, "out"))
	require.NoError(t, err)

	assert.Nil(t, res.Quality)
	// Units fall back to the document's own extracted values.
	assert.Contains(t, res.Markdown, "{{Depth}}")
}

func TestRun_UnsupportedDocumentFailsAtIngest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guide.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))

	p := &Pipeline{Config: config.Default()}
	_, err := p.Run(context.Background(), path, "", filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage ingest")

	// The stage report is written even when the run aborts.
	_, statErr := os.Stat(filepath.Join(dir, "out", "pipeline_report.json"))
	assert.NoError(t, statErr)
}

func TestRun_MalformedGroundTruthFails(t *testing.T) {
	dir := t.TempDir()
	gt := filepath.Join(dir, "ground_truth.json")
	require.NoError(t, os.WriteFile(gt, []byte("{not json"), 0644))

	p := &Pipeline{Config: config.Default()}
	_, err := p.Run(context.Background(), writeGuide(t, dir), gt, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage load_ground_truth")
}

func TestRun_HandRulesOverrideGenerated(t *testing.T) {
	dir := t.TempDir()
	handPath := filepath.Join(dir, "hand_rules.yaml")
	body := "rules:\n  - pattern: '(?i)\\bdual\\s+socket\\b'\n    placeholder: '{{Socket count}}'\n    priority: 900\n"
	require.NoError(t, os.WriteFile(handPath, []byte(body), 0644))

	docPath := filepath.Join(dir, "guide.md")
	require.NoError(t, os.WriteFile(docPath,
		[]byte("# Guide\n\n## Specs\n\nCPU: dual socket\n"), 0644))

	cfg := config.Default()
	cfg.Reference.Rules = handPath
	p := &Pipeline{Config: cfg}

	res, err := p.Run(context.Background(), docPath, "", filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Contains(t, res.Markdown, "CPU: {{Socket count}}")
}
