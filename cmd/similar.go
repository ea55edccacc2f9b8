package cmd

import (
	"fmt"

	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/spf13/cobra"
)

var similarCmd = &cobra.Command{
	Use:   "similar [query]",
	Short: "Find past commits similar to a free-text query.",
	Long: `Embeds the query text and ranks the most recent commit records by
cosine similarity. The scan is bounded to a recency window; no similarity
threshold is applied.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := handleRootCommand(cmd)
		if err != nil {
			return err
		}
		defer deps.Store.Close()

		k, _ := cmd.Flags().GetInt("limit")
		records, err := deps.Memory.FindSimilar(cmd.Context(), args[0], k)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println(lipgloss.Yellow.Render("No similar commits found."))
			return nil
		}

		for _, record := range records {
			fmt.Printf("%.3f  %s  %s\n", record.Similarity, record.Timestamp.Format("2006-01-02 15:04"), record.Summary)
			fmt.Printf("       %s\n", lipgloss.Gray.Render(record.ID))
		}
		return nil
	},
}

func init() {
	similarCmd.Flags().IntP("limit", "k", 5, "Maximum number of commits to return")
	rootCmd.AddCommand(similarCmd)
}
