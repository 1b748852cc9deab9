package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"specdoc/internal/confidence"
	"specdoc/internal/config"
	"specdoc/internal/content"
	"specdoc/internal/ingest"
	"specdoc/internal/oracle"
	"specdoc/internal/pipeline"
	"specdoc/internal/render"
	"specdoc/internal/rules"
	"specdoc/internal/spec"
	"specdoc/internal/storage"
	"specdoc/internal/template"
	"specdoc/internal/units"
	"specdoc/internal/validate"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "specdoc",
		Short: "Confidence-scored spec extraction and templating for hardware guides",
	}
	configPath string
	outDir     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the pipeline config file")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "Output directory for run artifacts")

	runCmd.Flags().StringVar(&groundTruthPath, "ground-truth", "", "Ground-truth spec file for quality validation")
	runCmd.Flags().BoolVar(&noStore, "no-store", false, "Skip persisting the run to the SQLite store")
	triageCmd.Flags().Float64Var(&threshold, "threshold", 0, "Confidence threshold (overrides config)")
	rulesCmd.Flags().StringVar(&handRulesPath, "hand", "", "Hand-authored rule file to merge")
	templateCmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file to apply")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(triageCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
}

var (
	groundTruthPath string
	noStore         bool
	threshold       float64
	handRulesPath   string
	rulesPath       string
)

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

var runCmd = &cobra.Command{
	Use:   "run [document]",
	Short: "Run the full extraction → templating → validation pipeline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		ctx := context.Background()

		p := &pipeline.Pipeline{Config: cfg}
		if !noStore {
			store, err := storage.NewStore(cfg.Storage.Path)
			if err != nil {
				log.Fatalf("Failed to open run store: %v", err)
			}
			defer store.Close()
			p.Store = store

			if cfg.AI.APIKey != "" {
				gemini, err := oracle.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model)
				if err != nil {
					log.Fatalf("Failed to create synonym oracle: %v", err)
				}
				defer gemini.Close()
				p.Oracle = oracle.NewCached(gemini, store)
			}
		}

		fmt.Printf("🚀 Processing %s...\n", args[0])
		res, err := p.Run(ctx, args[0], groundTruthPath, outDir)
		if err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}

		fmt.Printf("✅ Run %s complete.\n", res.RunID)
		fmt.Printf("   triage: %d auto-approved, %d need review (threshold %.1f)\n",
			len(res.Triage.AutoApproved), len(res.Triage.ReviewNeeded), res.Triage.Threshold)
		fmt.Printf("   gaps:   %d flagged for SME follow-up\n", len(res.Gaps))
		if res.Quality != nil {
			fmt.Printf("   quality: coverage %.1f%%, accuracy %.1f%%\n",
				res.Quality.CoveragePct, res.Quality.AccuracyPct)
		}
		fmt.Printf("📂 Artifacts written to %s\n", outDir)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [document]",
	Short: "Extract spec candidates with confidence scores",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		pipe := ingest.New(ingest.Config{MaxFileSize: cfg.Ingest.MaxFileSize})
		doc, err := pipe.Extract(context.Background(), args[0])
		if err != nil {
			log.Fatalf("Ingest failed: %v", err)
		}
		items := spec.ExtractCandidates(doc)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Fatalf("Failed to create output dir: %v", err)
		}
		path := outDir + "/extracted_specs.json"
		if err := spec.SaveItems(path, items); err != nil {
			log.Fatalf("Failed to save extracted specs: %v", err)
		}
		fmt.Printf("✅ Extracted %d candidates → %s\n", len(items), path)
	},
}

var triageCmd = &cobra.Command{
	Use:   "triage [specs.json]",
	Short: "Partition extracted specs into auto-approved and review-needed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		items, err := spec.LoadItems(args[0])
		if err != nil {
			log.Fatalf("Failed to load specs: %v", err)
		}
		th := cfg.Thresholds.Triage
		if cmd.Flags().Changed("threshold") {
			th = threshold
		}
		res := confidence.Triage(spec.ConfidenceMap(items), th)
		fmt.Printf("Threshold %.1f over %d specs\n", res.Threshold, res.TotalSpecs)
		for _, id := range res.AutoApproved {
			fmt.Printf("  ✅ %s (%s)\n", id, confidence.LevelFor(itemScore(items, id)))
		}
		for _, id := range res.ReviewNeeded {
			fmt.Printf("  ⚠️  %s (%s)\n", id, confidence.LevelFor(itemScore(items, id)))
		}
	},
}

var rulesCmd = &cobra.Command{
	Use:   "rules [registry.json]",
	Short: "Generate templating rules from a unit registry",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := units.Load(args[0])
		if err != nil {
			log.Fatalf("Failed to load unit registry: %v", err)
		}
		var hand []rules.Rule
		if handRulesPath != "" {
			hand, err = rules.LoadFile(handRulesPath)
			if err != nil {
				log.Fatalf("Failed to load hand-authored rules: %v", err)
			}
		}
		ruleSet, err := rules.Generate(reg, nil, hand)
		if err != nil {
			log.Fatalf("Rule generation failed: %v", err)
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Fatalf("Failed to create output dir: %v", err)
		}
		path := outDir + "/rules.yaml"
		if err := rules.SaveFile(path, ruleSet); err != nil {
			log.Fatalf("Failed to save rules: %v", err)
		}
		fmt.Printf("✅ Generated %d rules → %s\n", len(ruleSet), path)
	},
}

var templateCmd = &cobra.Command{
	Use:   "template [content.json]",
	Short: "Apply templating rules to a content tree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := content.Load(args[0])
		if err != nil {
			log.Fatalf("Failed to load content tree: %v", err)
		}
		if rulesPath == "" {
			log.Fatalf("--rules is required")
		}
		ruleSet, err := rules.LoadFile(rulesPath)
		if err != nil {
			log.Fatalf("Failed to load rules: %v", err)
		}
		applier, err := template.New(ruleSet)
		if err != nil {
			log.Fatalf("Rule configuration error: %v", err)
		}
		applier.Apply(doc)
		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Fatalf("Failed to create output dir: %v", err)
		}
		path := outDir + "/templated_content.json"
		if err := doc.Save(path); err != nil {
			log.Fatalf("Failed to save templated content: %v", err)
		}
		fmt.Printf("✅ Templated content → %s\n", path)
	},
}

var renderCmd = &cobra.Command{
	Use:   "render [content.json]",
	Short: "Render a content tree to Markdown on stdout",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := content.Load(args[0])
		if err != nil {
			log.Fatalf("Failed to load content tree: %v", err)
		}
		fmt.Print(render.Markdown(doc))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [extracted.json] [ground-truth.json]",
	Short: "Compare extracted specs against ground truth",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		extracted, err := spec.LoadItems(args[0])
		if err != nil {
			log.Fatalf("Failed to load extracted specs: %v", err)
		}
		groundTruth, err := spec.LoadItems(args[1])
		if err != nil {
			log.Fatalf("Failed to load ground truth: %v", err)
		}
		fmt.Print(validate.Compare(extracted, groundTruth).Format())
	},
}

func itemScore(items []spec.Item, id string) float64 {
	for _, it := range items {
		if it.SpecItem == id {
			return it.Confidence
		}
	}
	return 0
}
