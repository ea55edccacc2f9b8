package cmd

import (
	"fmt"

	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory store statistics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer deps.Store.Close()

		stats, err := deps.Memory.Stats(cmd.Context())
		if err != nil {
			return err
		}

		body := fmt.Sprintf("%s\nCommits stored: %d\nFiles tracked:  %d\nDatabase size:  %.2f MB",
			lipgloss.Info.Render("Memory store"),
			stats.CommitsStored,
			stats.FilesTracked,
			float64(stats.DBSizeBytes)/(1024*1024))
		fmt.Println(lipgloss.BoxStyle.Render(body))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
