package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gitgeistai/gitgeist-ai/analysis/models"
	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/gitgeistai/gitgeist-ai/memory"
	"github.com/gitgeistai/gitgeist-ai/watch"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and analyze change batches as they settle.",
	Long: `Watches the configured root for file changes. Bursts of events are
debounced into batches; once a batch settles, every changed file is parsed
and diffed against its previous structural snapshot, and similar past
commits are retrieved from memory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer deps.Store.Close()
		return runWatch(deps)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(deps *RootDependencies) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	onBatch := func(changes []watch.FileChange) {
		printBatch(ctx, deps.Memory, changes)
	}

	onSnapshot := func(snapshot *models.FileSnapshot, contentHash string) {
		if err := deps.Memory.RecordFileContext(ctx, snapshot, contentHash); err != nil {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: %v", err)))
		}
	}

	agg := watch.NewAggregator(deps.Extractor, watch.Options{
		QuietPeriod: time.Duration(deps.Config.DebounceSeconds) * time.Second,
		Workers:     deps.Config.Workers,
		OnBatch:     onBatch,
		OnSnapshot:  onSnapshot,
	})

	root := deps.Config.WatchPath
	if !filepath.IsAbs(root) {
		root = filepath.Join(deps.Cwd, root)
	}

	watcher, err := watch.NewWatcher(root, agg)
	if err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
		WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
		WithDelay(100).WithRemoveWhenDone(true)
	spinnerInstance, _ := spinner.Start(fmt.Sprintf("Watching %s ...", root))

	<-ctx.Done()
	spinnerInstance.Stop()
	fmt.Println(lipgloss.Info.Render("Stopped watching."))
	return nil
}

// printBatch renders one drained batch and the similar history it recalls.
func printBatch(ctx context.Context, mem *memory.Service, changes []watch.FileChange) {
	fmt.Println(lipgloss.Info.Render(fmt.Sprintf("Analyzed batch of %d file(s):", len(changes))))

	files := make([]string, 0, len(changes))
	byPath := make(map[string]models.SemanticChangeSet, len(changes))
	for _, change := range changes {
		files = append(files, change.Path)
		byPath[change.Path] = change.Changes
		printChange(change)
	}

	query := memory.ChangeQueryText("", files, byPath)
	similar, err := mem.FindSimilar(ctx, query, 3)
	if err != nil {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Warning: similarity lookup failed: %v", err)))
		return
	}
	if len(similar) == 0 {
		return
	}

	fmt.Println(lipgloss.Info.Render("Similar past commits:"))
	for _, record := range similar {
		fmt.Printf("  %.2f  %s  %s\n", record.Similarity, record.ID, record.Summary)
	}
}

func printChange(change watch.FileChange) {
	fmt.Printf("  %s (%s)\n", change.Path, change.Language)
	cs := change.Changes
	printNames("functions added", lipgloss.Green, cs.FunctionsAdded)
	printNames("functions removed", lipgloss.Red, cs.FunctionsRemoved)
	printNames("functions modified", lipgloss.Yellow, cs.FunctionsModified)
	printNames("classes added", lipgloss.Green, cs.ClassesAdded)
	printNames("classes removed", lipgloss.Red, cs.ClassesRemoved)
	printNames("classes modified", lipgloss.Yellow, cs.ClassesModified)
	if cs.ImportsChanged {
		fmt.Printf("    %s\n", lipgloss.Gray.Render("imports changed"))
	}
}

func printNames(label string, style interface{ Render(...string) string }, names []string) {
	for _, name := range names {
		fmt.Printf("    %s: %s\n", label, style.Render(name))
	}
}
