package config

import (
	"fmt"
	"os"

	"github.com/gitgeistai/gitgeist-ai/constants/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EmbeddingProviderConfig selects the embedding backend.
type EmbeddingProviderConfig struct {
	Provider string `mapstructure:"provider"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
}

// Config represents the structure of the configuration file
type Config struct {
	Version         string                   `mapstructure:"version"`
	WatchPath       string                   `mapstructure:"watch_path"`
	DataDir         string                   `mapstructure:"data_dir"`
	DebounceSeconds int                      `mapstructure:"debounce_seconds"`
	Workers         int                      `mapstructure:"workers"`
	RecencyWindow   int                      `mapstructure:"recency_window"`
	EmbeddingConfig *EmbeddingProviderConfig `mapstructure:"embedding_config"`
}

// DefaultConfig values
var DefaultConfig = Config{
	Version:         "0.3.0",
	WatchPath:       ".",
	DataDir:         ".gitgeist",
	DebounceSeconds: 5,
	Workers:         4,
	RecencyWindow:   50,
	EmbeddingConfig: &EmbeddingProviderConfig{
		Provider: "ollama",
		BaseURL:  "http://localhost:11434/api",
		Model:    "nomic-embed-text",
	},
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs initializes the configuration from file, flags, and environment variables, and returns the final config.
func LoadConfigs(rootCmd *cobra.Command, cwd string) *Config {
	var config *Config

	setDefaults()

	viper.AutomaticEnv()
	bindEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading config file: %v", err)))
			os.Exit(1)
		}
	} else {
		viper.SetConfigName("gitgeist-config")
		viper.AddConfigPath(cwd)

		// Support both YAML and JSON formats
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			viper.SetConfigType("json")
			if err := viper.ReadInConfig(); err != nil {
				// No config file, continue with defaults
				fmt.Println(lipgloss.Yellow.Render("No configuration file found, using defaults"))
			}
		}
	}

	bindFlags(rootCmd)

	if err := viper.Unmarshal(&config); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Unable to decode into struct: %v", err)))
		os.Exit(1)
	}

	return config
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("version", DefaultConfig.Version)
	viper.SetDefault("watch_path", DefaultConfig.WatchPath)
	viper.SetDefault("data_dir", DefaultConfig.DataDir)
	viper.SetDefault("debounce_seconds", DefaultConfig.DebounceSeconds)
	viper.SetDefault("workers", DefaultConfig.Workers)
	viper.SetDefault("recency_window", DefaultConfig.RecencyWindow)
	viper.SetDefault("embedding_config.provider", DefaultConfig.EmbeddingConfig.Provider)
	viper.SetDefault("embedding_config.base_url", DefaultConfig.EmbeddingConfig.BaseURL)
	viper.SetDefault("embedding_config.model", DefaultConfig.EmbeddingConfig.Model)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv() {
	_ = viper.BindEnv("watch_path", "GITGEIST_WATCH_PATH")
	_ = viper.BindEnv("data_dir", "GITGEIST_DATA_DIR")
	_ = viper.BindEnv("debounce_seconds", "GITGEIST_DEBOUNCE_SECONDS")
	_ = viper.BindEnv("workers", "GITGEIST_WORKERS")
	_ = viper.BindEnv("recency_window", "GITGEIST_RECENCY_WINDOW")
	_ = viper.BindEnv("embedding_config.provider", "GITGEIST_EMBEDDING_PROVIDER")
	_ = viper.BindEnv("embedding_config.base_url", "GITGEIST_EMBEDDING_BASE_URL")
	_ = viper.BindEnv("embedding_config.model", "GITGEIST_EMBEDDING_MODEL")
}

// bindFlags binds the CLI flags to configuration values.
func bindFlags(rootCmd *cobra.Command) {
	_ = viper.BindPFlag("watch_path", rootCmd.PersistentFlags().Lookup("watch_path"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data_dir"))
	_ = viper.BindPFlag("debounce_seconds", rootCmd.PersistentFlags().Lookup("debounce_seconds"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("recency_window", rootCmd.PersistentFlags().Lookup("recency_window"))
	_ = viper.BindPFlag("embedding_config.base_url", rootCmd.PersistentFlags().Lookup("embedding_base_url"))
	_ = viper.BindPFlag("embedding_config.model", rootCmd.PersistentFlags().Lookup("embedding_model"))
}

// InitFlags initializes the flags for the root command.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")

	rootCmd.PersistentFlags().String("watch_path", DefaultConfig.WatchPath, "Root directory to watch for file changes.")
	rootCmd.PersistentFlags().String("data_dir", DefaultConfig.DataDir, "Directory holding the memory database.")
	rootCmd.PersistentFlags().Int("debounce_seconds", DefaultConfig.DebounceSeconds, "Quiet period before a change batch is analyzed.")
	rootCmd.PersistentFlags().Int("workers", DefaultConfig.Workers, "Bounded worker pool size for batch analysis.")
	rootCmd.PersistentFlags().Int("recency_window", DefaultConfig.RecencyWindow, "How many recent commits a similarity query scans.")
	rootCmd.PersistentFlags().String("embedding_base_url", DefaultConfig.EmbeddingConfig.BaseURL, "Base URL of the embedding provider (default is a local Ollama server).")
	rootCmd.PersistentFlags().String("embedding_model", DefaultConfig.EmbeddingConfig.Model, "Embedding model name, such as 'nomic-embed-text'.")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}
