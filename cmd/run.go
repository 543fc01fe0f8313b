package main

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/blogpipe/internal/evidence"
	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/pipeline"
	"github.com/sells-group/blogpipe/internal/render"
	"github.com/sells-group/blogpipe/internal/rules"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline over the latest visit folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		applyRunFlags(cmd)

		if err := cfg.Validate("run"); err != nil {
			return err
		}

		stage, err := parseStage(mustString(cmd, "stage"), cfg.Pipeline.Stage)
		if err != nil {
			return err
		}
		force, err := parseForce(mustStringSlice(cmd, "force"))
		if err != nil {
			return err
		}

		placesClient, err := newPlacesClient()
		if err != nil {
			return err
		}
		visionClient, err := newVisionClient()
		if err != nil {
			return err
		}
		prompts, err := render.LoadPrompts(cfg.Prompts.Path)
		if err != nil {
			return eris.Wrap(err, "load prompts")
		}

		history, err := initHistory(ctx)
		if err != nil {
			return err
		}

		backend := newBackend()
		opts := pipeline.Options{
			Backend:     backend,
			InputRoot:   cfg.Storage.InputRoot,
			OutputRoot:  cfg.Storage.OutputRoot,
			TargetStage: stage,
			Latest:      cfg.Pipeline.Latest,
			Force:       force,
			Collector: evidence.NewCollector(backend,
				evidence.WithPlaces(placesClient),
				evidence.WithVision(visionClient),
				evidence.WithRecencyWindow(cfg.Rules.RecencyWindowDays),
				evidence.WithVisionConcurrency(cfg.Vision.Concurrency),
			),
			Renderer: render.New(prompts),
			Rules:    rules.DefaultRules(cfg.Rules.ReviewKeywords),
		}
		if history != nil {
			defer history.Close()
			opts.History = history
		}

		result, err := pipeline.New(opts).Run(ctx)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return eris.Wrap(err, "encode result")
		}

		if !result.RulesPassed() {
			return pipeline.ErrRulesFailed
		}
		zap.L().Info("run complete", zap.String("run_id", result.RunID))
		return nil
	},
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("input-root") {
		cfg.Storage.InputRoot = mustString(cmd, "input-root")
	}
	if cmd.Flags().Changed("output-root") {
		cfg.Storage.OutputRoot = mustString(cmd, "output-root")
	}
	if cmd.Flags().Changed("latest") {
		cfg.Pipeline.Latest, _ = cmd.Flags().GetInt("latest")
	}
	if cmd.Flags().Changed("places-data") {
		cfg.Places.FixturePath = mustString(cmd, "places-data")
	}
	if cmd.Flags().Changed("vision-data") {
		cfg.Vision.FixturePath = mustString(cmd, "vision-data")
	}
	if cmd.Flags().Changed("prompts") {
		cfg.Prompts.Path = mustString(cmd, "prompts")
	}
}

// parseStage accepts a stage name or number; empty falls back to the
// configured default.
func parseStage(value string, fallback int) (model.Stage, error) {
	if value == "" {
		return model.Stage(fallback), nil
	}
	if s, ok := model.ParseStage(value); ok {
		return s, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < int(model.StageResolve) || n > int(model.StageValidate) {
		return 0, eris.Errorf("invalid stage %q (want 1-4 or one of %s)",
			value, strings.Join(model.StageNames, ", "))
	}
	return model.Stage(n), nil
}

// parseForce converts stage names into the force set.
func parseForce(values []string) (map[model.Stage]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}
	force := make(map[model.Stage]bool, len(values))
	for _, value := range values {
		if value == "all" {
			for s := model.StageResolve; s <= model.StageValidate; s++ {
				force[s] = true
			}
			continue
		}
		s, ok := model.ParseStage(value)
		if !ok {
			return nil, eris.Errorf("invalid force stage %q (want one of %s)",
				value, strings.Join(model.StageNames, ", "))
		}
		force[s] = true
	}
	return force, nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func mustStringSlice(cmd *cobra.Command, name string) []string {
	v, _ := cmd.Flags().GetStringSlice(name)
	return v
}

func init() {
	runCmd.Flags().String("input-root", "", "root directory containing YYYYMMDD_<name> visit folders")
	runCmd.Flags().String("output-root", "", "root directory for per-folder artifacts")
	runCmd.Flags().String("stage", "", "target stage, by name or number (default validate)")
	runCmd.Flags().Int("latest", 1, "number of most recent visit folders to process")
	runCmd.Flags().StringSlice("force", nil, "stages to re-execute even when cached (stage names or all)")
	runCmd.Flags().String("places-data", "", "place-lookup fixture file (offline mode)")
	runCmd.Flags().String("vision-data", "", "vision fixture file (offline mode)")
	runCmd.Flags().String("prompts", "", "prompt override file")
	rootCmd.AddCommand(runCmd)
}
