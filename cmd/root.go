package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gitgeistai/gitgeist-ai/analysis"
	"github.com/gitgeistai/gitgeist-ai/config"
	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/gitgeistai/gitgeist-ai/memory"
	"github.com/gitgeistai/gitgeist-ai/providers/ollama"
	"github.com/spf13/cobra"
)

// RootDependencies holds the wired collaborators every subcommand uses.
type RootDependencies struct {
	Config    *config.Config
	Cwd       string
	Extractor *analysis.Extractor
	Store     *memory.SQLiteStore
	Memory    *memory.Service
}

var rootCmd = &cobra.Command{
	Use:   "gitgeist",
	Short: "Semantic change analysis with commit-history memory.",
	Long: `Gitgeist watches a codebase, turns file changes into structural change
sets (functions, classes and imports added, removed or modified) and keeps an
embedding-backed memory of commit history for similarity retrieval.`,
	Run: func(cmd *cobra.Command, args []string) {
		if version, _ := cmd.Flags().GetBool("version"); version {
			fmt.Println(config.DefaultConfig.Version)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	config.InitFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

// handleRootCommand loads configuration and wires the extractor, the memory
// store and the embedding provider.
func handleRootCommand(cmd *cobra.Command) (*RootDependencies, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	cfg := config.LoadConfigs(rootCmd, cwd)

	dataDir := cfg.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(cwd, dataDir)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := memory.NewSQLiteStore(ctx, filepath.Join(dataDir, "memory.db"))
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}

	embedder := ollama.NewOllamaEmbeddingProvider(&ollama.OllamaConfig{
		BaseURL: cfg.EmbeddingConfig.BaseURL,
		Model:   cfg.EmbeddingConfig.Model,
	})

	return &RootDependencies{
		Config:    cfg,
		Cwd:       cwd,
		Extractor: analysis.NewExtractor(),
		Store:     store,
		Memory:    memory.NewService(store, embedder, cfg.RecencyWindow),
	}, nil
}
