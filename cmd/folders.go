package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/blogpipe/internal/model"
	"github.com/sells-group/blogpipe/internal/resolve"
)

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "List visit folders under the input root",
	Long:  "Lists every directory matching YYYYMMDD_<restaurant name>, newest first, without running any stage.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("input-root") {
			cfg.Storage.InputRoot = mustString(cmd, "input-root")
		}
		if err := cfg.Validate("folders"); err != nil {
			return err
		}

		folders, err := resolve.ListVisitFolders(ctx, newBackend(), cfg.Storage.InputRoot)
		if err != nil {
			return eris.Wrap(err, "list folders")
		}
		if len(folders) == 0 {
			return resolve.ErrNoVisitFolders
		}

		sorted, err := resolve.SelectLatest(folders, len(folders))
		if err != nil {
			return err
		}

		formatFolders(os.Stdout, sorted)
		return nil
	},
}

// formatFolders writes a tabular folder list to w.
func formatFolders(out io.Writer, folders []model.VisitFolder) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tRESTAURANT\tFOLDER")
	_, _ = fmt.Fprintln(w, "----\t----------\t------")
	for _, f := range folders {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.VisitDate, f.RestaurantName, f.FolderName)
	}
	_ = w.Flush()
}

func init() {
	foldersCmd.Flags().String("input-root", "", "root directory containing visit folders")
	rootCmd.AddCommand(foldersCmd)
}
