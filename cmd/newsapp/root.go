package main

import (
	"fmt"

	"newsapp/internal/app"
	"newsapp/internal/config"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:          "newsapp",
	Short:        "News aggregator over NewsAPI, The New York Times and The Guardian",
	Long:         "newsapp searches three news APIs, merges the results into one article list and serves it as a web page with source and date filters.",
	RunE:         runServe,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsapp %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "path to .env file with API keys (default .env if present)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig собирает конфигурацию: .env, файл, ключи из окружения, проверка.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("could not load env file: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	cfg.ResolveSecrets()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runServe загружает конфигурацию, собирает приложение и блокируется до его остановки.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(flagConfig, flagEnvFile)
	if err != nil {
		return err
	}
	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("could not init app: %w", err)
	}
	return application.Run()
}
