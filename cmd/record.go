package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/gitgeistai/gitgeist-ai/watch"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record [files...]",
	Short: "Record a commit into the history memory.",
	Long: `Analyzes the given files, then writes one commit record (summary,
files changed, structural change summary, embedding) into the memory store.
Without --id a provisional id is generated; recording again with the real
commit hash under the same id replaces the record.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer deps.Store.Close()
		return runRecord(cmd, deps, args)
	},
}

func init() {
	recordCmd.Flags().StringP("message", "m", "", "Commit summary text (required)")
	recordCmd.Flags().String("id", "", "Commit id; a provisional id is generated when omitted")
	_ = recordCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, deps *RootDependencies, files []string) error {
	ctx := cmd.Context()
	summary, _ := cmd.Flags().GetString("message")
	id, _ := cmd.Flags().GetString("id")

	agg := watch.NewAggregator(deps.Extractor, watch.Options{
		Workers:     deps.Config.Workers,
		Synchronous: true,
	})
	defer agg.Close()

	resolved := make([]string, 0, len(files))
	for _, path := range files {
		if !filepath.IsAbs(path) {
			path = filepath.Join(deps.Cwd, path)
		}
		resolved = append(resolved, path)
	}

	byPath := make(map[string]models.SemanticChangeSet)
	for _, change := range agg.AnalyzeBatch(ctx, resolved) {
		byPath[change.Path] = change.Changes
	}

	if err := deps.Memory.RecordCommit(ctx, id, summary, resolved, byPath); err != nil {
		return err
	}

	fmt.Println(lipgloss.Green.Render(fmt.Sprintf("Recorded commit covering %d file(s).", len(resolved))))
	return nil
}
