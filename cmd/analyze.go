package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/gitgeistai/gitgeist-ai/watch"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Analyze files on demand without a running watcher.",
	Long: `Analyzes the given files immediately using the synchronous scheduling
mode: no debounce timer runs, the batch drains on this explicit call. Each
file is parsed, snapshotted and diffed; file context is written to memory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer deps.Store.Close()
		return runAnalyze(cmd, deps, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, deps *RootDependencies, paths []string) error {
	ctx := cmd.Context()

	onSnapshot := func(snapshot *models.FileSnapshot, contentHash string) {
		if err := deps.Memory.RecordFileContext(ctx, snapshot, contentHash); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %v", err)))
		}
	}

	agg := watch.NewAggregator(deps.Extractor, watch.Options{
		Workers:     deps.Config.Workers,
		Synchronous: true,
		OnSnapshot:  onSnapshot,
	})
	defer agg.Close()

	for _, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(deps.Cwd, path)
		}
		agg.Observe(watch.Event{Path: path, Kind: watch.EventModified})
	}

	changes := agg.Analyze(ctx)
	if len(changes) == 0 {
		fmt.Println(lipgloss.Yellow.Render("No analyzable code files in the given paths."))
		return nil
	}

	for _, change := range changes {
		printChange(change)
	}
	return nil
}
