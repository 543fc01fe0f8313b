package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/blogpipe/internal/config"
	"github.com/sells-group/blogpipe/internal/evidence"
	"github.com/sells-group/blogpipe/internal/pipeline"
	"github.com/sells-group/blogpipe/internal/resolve"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "blogpipe",
	Short: "Restaurant visit photo pipeline",
	Long:  "Turns dated folders of restaurant visit photos into validated HTML blog drafts: resolves folders, collects place and vision evidence, renders, and checks content rules.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// exitCode maps failure classes to distinct process exit codes so callers can
// branch without parsing output.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, resolve.ErrNoVisitFolders),
		errors.Is(err, resolve.ErrNotEnoughFolders):
		return 2
	case errors.Is(err, evidence.ErrNoImages):
		return 3
	case errors.Is(err, pipeline.ErrRulesFailed):
		return 4
	default:
		return 1
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}
