package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/pipeline"
	"github.com/sells-group/blogpipe/internal/rules"
	"github.com/sells-group/blogpipe/internal/storage"
)

var validateCmd = &cobra.Command{
	Use:   "validate [folder-name]",
	Short: "Re-validate rendered documents against content rules",
	Long:  "Reloads rendered documents and their evidence from the output root and re-runs the rule set, without re-invoking any external API. Validates every rendered folder unless one is named.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("output-root") {
			cfg.Storage.OutputRoot = mustString(cmd, "output-root")
		}
		if err := cfg.Validate("validate"); err != nil {
			return err
		}

		backend := newBackend()
		repo := pipeline.NewArtifactRepo(backend, cfg.Storage.OutputRoot)

		var folders []string
		if len(args) == 1 {
			folders = args
		} else {
			var err error
			folders, err = renderedFolders(ctx, backend, repo)
			if err != nil {
				return err
			}
		}
		if len(folders) == 0 {
			return eris.New("no rendered documents found under the output root")
		}

		ruleSet := rules.DefaultRules(cfg.Rules.ReviewKeywords)
		reports := map[string]model.RuleReport{}
		failed := false
		for _, folder := range folders {
			report, err := revalidateFolder(ctx, repo, folder, ruleSet)
			if err != nil {
				return err
			}
			reports[folder] = report
			if !report.Passed {
				failed = true
				zap.L().Warn("content rules failed",
					zap.String("folder", folder),
					zap.Strings("violations", report.Violations))
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return eris.Wrap(err, "encode reports")
		}

		if failed {
			return pipeline.ErrRulesFailed
		}
		return nil
	},
}

// renderedFolders returns every output folder that holds a rendered document.
func renderedFolders(ctx context.Context, backend storage.Backend, repo *pipeline.ArtifactRepo) ([]string, error) {
	entries, err := backend.List(ctx, cfg.Storage.OutputRoot)
	if err != nil {
		return nil, eris.Wrap(err, "list output root")
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		ok, err := repo.Has(ctx, entry.Name, pipeline.ArtifactReview)
		if err != nil {
			return nil, err
		}
		if ok {
			folders = append(folders, entry.Name)
		}
	}
	return folders, nil
}

// revalidateFolder runs the rule set over one folder's persisted document and
// evidence, replacing its stored report.
func revalidateFolder(ctx context.Context, repo *pipeline.ArtifactRepo, folder string, ruleSet []rules.Rule) (model.RuleReport, error) {
	doc, err := repo.LoadText(ctx, folder, pipeline.ArtifactReview)
	if err != nil {
		return model.RuleReport{}, err
	}
	var info model.BusinessInfo
	if err := repo.LoadJSON(ctx, folder, pipeline.ArtifactRestaurant, &info); err != nil {
		return model.RuleReport{}, err
	}

	report := rules.Validate(doc, rules.EvidenceFromBusinessInfo(info), ruleSet)
	if err := repo.SaveJSON(ctx, folder, pipeline.ArtifactRuleReport, report); err != nil {
		return model.RuleReport{}, err
	}
	return report, nil
}

func init() {
	validateCmd.Flags().String("output-root", "", "root directory holding rendered artifacts")
	rootCmd.AddCommand(validateCmd)
}
