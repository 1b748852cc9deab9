// Package pipeline wires the extraction, scoring, templating, and
// validation stages into one run over a single document.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"specdoc/internal/confidence"
	"specdoc/internal/config"
	"specdoc/internal/ingest"
	"specdoc/internal/oracle"
	"specdoc/internal/render"
	"specdoc/internal/report"
	"specdoc/internal/rules"
	"specdoc/internal/spec"
	"specdoc/internal/storage"
	"specdoc/internal/template"
	"specdoc/internal/units"
	"specdoc/internal/validate"
)

// Pipeline runs the full document → templated Markdown flow. Store and
// Oracle are optional collaborators; a nil value disables persistence and
// vocabulary expansion respectively.
type Pipeline struct {
	Config config.Config
	Logger *slog.Logger
	Store  *storage.Store
	Oracle oracle.Oracle
}

// Result summarizes a completed run for the caller.
type Result struct {
	RunID    string
	Triage   confidence.TriageResult
	Gaps     []confidence.GapRecord
	Quality  *validate.Report
	Markdown string
}

// Run executes every stage in order and writes the boundary files into
// outDir. The first failing stage aborts the run; the returned error names
// that stage. The stage report is saved even on failure.
func (p *Pipeline) Run(ctx context.Context, docPath, groundTruthPath, outDir string) (*Result, error) {
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("stage init: create output dir: %w", err)
	}

	run := report.NewRun(docPath, outDir)
	defer func() {
		if err := run.Save(filepath.Join(outDir, "pipeline_report.json")); err != nil {
			p.Logger.Warn("failed to write pipeline report", "error", err)
		}
	}()

	fail := func(h report.StageHandle, stage string, err error) error {
		run.EndStage(h, nil, err)
		run.AddSignal(stage+"_failed", stage, "critical", err.Error(), 0)
		return fmt.Errorf("stage %s: %w", stage, err)
	}

	// Ingest the document into a content tree.
	h := run.BeginStage("ingest")
	pipe := ingest.New(ingest.Config{MaxFileSize: p.Config.Ingest.MaxFileSize, Logger: p.Logger})
	doc, err := pipe.Extract(ctx, docPath)
	if err != nil {
		return nil, fail(h, "ingest", err)
	}
	run.EndStage(h, map[string]float64{"sections": float64(len(doc.Sections))}, nil)

	// Extract spec candidates with heuristic confidence.
	h = run.BeginStage("extract")
	items := spec.ExtractCandidates(doc)
	if len(items) == 0 {
		run.AddSignal("no_candidates", "extract", "warning",
			"No spec candidates were found in the document.", 0)
	}
	if err := spec.SaveItems(filepath.Join(outDir, "extracted_specs.json"), items); err != nil {
		return nil, fail(h, "extract", err)
	}
	run.EndStage(h, map[string]float64{"candidates": float64(len(items))}, nil)

	// Triage by confidence threshold.
	h = run.BeginStage("triage")
	triage := confidence.Triage(spec.ConfidenceMap(items), p.Config.Thresholds.Triage)
	if err := writeJSON(filepath.Join(outDir, "triage.json"), triage); err != nil {
		return nil, fail(h, "triage", err)
	}
	run.EndStage(h, map[string]float64{
		"auto_approved": float64(len(triage.AutoApproved)),
		"review_needed": float64(len(triage.ReviewNeeded)),
	}, nil)

	// Ground truth, when provided, drives both the unit registry and the
	// quality report.
	var groundTruth []spec.Item
	if groundTruthPath != "" {
		h = run.BeginStage("load_ground_truth")
		groundTruth, err = spec.LoadItems(groundTruthPath)
		if err != nil {
			return nil, fail(h, "load_ground_truth", err)
		}
		run.EndStage(h, map[string]float64{"items": float64(len(groundTruth))}, nil)
	}

	// Build the unit registry and vocabulary.
	h = run.BeginStage("unit_registry")
	vocab := p.buildVocabulary(ctx, run)
	reg, fromRef := p.loadOrExtractRegistry(run, items, groundTruth, vocab)
	if err := reg.Save(filepath.Join(outDir, "unit_registry.json")); err != nil {
		return nil, fail(h, "unit_registry", err)
	}
	run.EndStage(h, map[string]float64{
		"units":         float64(len(reg.Units)),
		"from_reference": boolCounter(fromRef),
	}, nil)

	// Generate and persist the ranked rule set.
	h = run.BeginStage("rules")
	hand := p.loadHandRules(run)
	ruleSet, err := rules.Generate(reg, vocab, hand)
	if err != nil {
		return nil, fail(h, "rules", err)
	}
	if err := rules.SaveFile(filepath.Join(outDir, "rules.yaml"), ruleSet); err != nil {
		return nil, fail(h, "rules", err)
	}
	run.EndStage(h, map[string]float64{"rules": float64(len(ruleSet))}, nil)

	// Apply rules to the content tree.
	h = run.BeginStage("template")
	applier, err := template.New(ruleSet)
	if err != nil {
		return nil, fail(h, "template", err)
	}
	applier.Apply(doc)
	if err := doc.Save(filepath.Join(outDir, "templated_content.json")); err != nil {
		return nil, fail(h, "template", err)
	}
	run.EndStage(h, nil, nil)

	// Render Markdown.
	h = run.BeginStage("render")
	markdown := render.Markdown(doc)
	if err := os.WriteFile(filepath.Join(outDir, "output.md"), []byte(markdown), 0644); err != nil {
		return nil, fail(h, "render", err)
	}
	run.EndStage(h, map[string]float64{"bytes": float64(len(markdown))}, nil)

	// Gap analysis over the extracted items.
	h = run.BeginStage("gap_analysis")
	contents := make(map[string]string, len(items))
	for _, it := range items {
		contents[it.SpecItem] = it.Value
	}
	gaps := confidence.AnalyzeGaps(contents, spec.ConfidenceMap(items), p.Config.Thresholds.Gap)
	if err := writeJSON(filepath.Join(outDir, "gaps.json"), gaps); err != nil {
		return nil, fail(h, "gap_analysis", err)
	}
	questions := confidence.SMEQuestions(gaps)
	if err := os.WriteFile(filepath.Join(outDir, "sme_questions.txt"),
		[]byte(strings.Join(questions, "\n")+"\n"), 0644); err != nil {
		return nil, fail(h, "gap_analysis", err)
	}
	run.EndStage(h, map[string]float64{"gaps": float64(len(gaps))}, nil)

	res := &Result{RunID: run.RunID, Triage: triage, Gaps: gaps, Markdown: markdown}

	// Quality validation against ground truth.
	if groundTruth != nil {
		h = run.BeginStage("validate")
		quality := validate.Compare(items, groundTruth)
		if err := os.WriteFile(filepath.Join(outDir, "quality_report.txt"),
			[]byte(quality.Format()), 0644); err != nil {
			return nil, fail(h, "validate", err)
		}
		if quality.CoveragePct < 50 {
			run.AddSignal("low_coverage", "validate", "warning",
				"Less than half of the ground-truth spec items were extracted.", quality.CoveragePct)
		}
		run.EndStage(h, map[string]float64{
			"coverage_pct": quality.CoveragePct,
			"accuracy_pct": quality.AccuracyPct,
		}, nil)
		res.Quality = &quality
	}

	// Persist the run.
	if p.Store != nil {
		h = run.BeginStage("persist")
		if err := p.Store.SaveRun(run.RunID, docPath, items, triage, gaps); err != nil {
			return nil, fail(h, "persist", err)
		}
		run.EndStage(h, nil, nil)
	}

	return res, nil
}

// buildVocabulary starts from the default vocabulary and, when an oracle is
// configured, folds in synonym spellings. Oracle failures degrade to the
// default vocabulary with a warning; they never fail the run.
func (p *Pipeline) buildVocabulary(ctx context.Context, run *report.Run) *units.Vocabulary {
	vocab := units.DefaultVocabulary()
	if p.Oracle == nil {
		return vocab
	}
	for _, canonical := range vocab.Canonicals() {
		synonyms, err := p.Oracle.Synonyms(ctx, canonical)
		if err != nil {
			run.AddSignal("oracle_unavailable", "unit_registry", "warning",
				fmt.Sprintf("Synonym oracle failed for %q; continuing with the default vocabulary.", canonical), 0)
			return vocab
		}
		if len(synonyms) > 0 {
			vocab.Add(canonical, synonyms...)
		}
	}
	return vocab
}

// loadOrExtractRegistry prefers the configured reference file and falls
// back to extraction from ground truth (or, failing that, the extracted
// items themselves). A missing reference is a warning, not a failure.
func (p *Pipeline) loadOrExtractRegistry(run *report.Run, items, groundTruth []spec.Item, vocab *units.Vocabulary) (units.Registry, bool) {
	if p.Config.Reference.Registry != "" {
		reg, err := units.Load(p.Config.Reference.Registry)
		if err == nil {
			return reg, true
		}
		run.AddSignal("registry_reference_missing", "unit_registry", "warning",
			fmt.Sprintf("Unit registry reference unavailable (%v); extracting units from spec values.", err), 0)
	}
	source := groundTruth
	if len(source) == 0 {
		source = items
	}
	return units.Extract(source, vocab), false
}

// loadHandRules reads the configured hand-authored rule file. A missing
// file is a warning; generation continues with auto rules only.
func (p *Pipeline) loadHandRules(run *report.Run) []rules.Rule {
	if p.Config.Reference.Rules == "" {
		return nil
	}
	hand, err := rules.LoadFile(p.Config.Reference.Rules)
	if err != nil {
		run.AddSignal("rule_reference_missing", "rules", "warning",
			fmt.Sprintf("Hand-authored rule file unavailable (%v); using generated rules only.", err), 0)
		return nil
	}
	return hand
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func boolCounter(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
