package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perfdash-backend/internal/config"
	"perfdash-backend/internal/services"
)

var rootCmd = &cobra.Command{
	Use:   "listmodels",
	Short: "List Gemini models available to the configured API key",
	Long:  "Queries the Gemini API and prints model names, optionally filtered by a substring. Useful for picking GEMINI_MODELS.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		if err := cfg.ExtractionCheck(); err != nil {
			return err
		}

		logger, err := config.NewLogger(cfg.Env, cfg.LogLevel)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		defer logger.Sync() //nolint:errcheck

		filter, _ := cmd.Flags().GetString("filter")

		client, err := services.NewGeminiClient(cmd.Context(), cfg.GeminiAPIKey, 0, 1, logger)
		if err != nil {
			return eris.Wrap(err, "create gemini client")
		}
		defer client.Close()

		names, err := client.ListModels(cmd.Context(), filter)
		if err != nil {
			return eris.Wrap(err, "list models")
		}
		logger.Debug("models listed", zap.Int("count", len(names)), zap.String("filter", filter))

		if len(names) == 0 {
			fmt.Fprintln(os.Stderr, "No models found.")
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().String("filter", "flash", "only list models whose name contains this substring (empty lists all)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
