package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"system_model_importer/config"

	"github.com/spf13/cobra"
)

const flagConfig = "config"

// NewRootCommand builds model-importer. Without a subcommand it runs one
// ingestion pass, same as `model-importer ingest`.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "model-importer",
		Short:         "Upload system model weights and register them in the catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runIngest,
	}

	rootCmd.PersistentFlags().StringP(flagConfig, "c", config.DefaultConfigPath, "path to the yaml config file")
	addIngestFlags(rootCmd)
	RegisterCommands(rootCmd)
	return rootCmd
}

// RegisterCommands adds all available commands to the root command
func RegisterCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(NewIngestCommand())
	rootCmd.AddCommand(NewEnsureBucketCommand())
	rootCmd.AddCommand(NewServeCommand())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(cfg.Log), nil
}

// startApp loads the config, opens every dependency and makes sure the
// bucket exists. Any error here is a startup failure.
func startApp(ctx context.Context, cmd *cobra.Command, overrides func(*config.Config) error) (*app, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if overrides != nil {
		if err := overrides(cfg); err != nil {
			return nil, err
		}
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return nil, err
	}
	if err := a.uploader.EnsureBucket(ctx); err != nil {
		logger.Error("startup failed", "error", err)
		a.close()
		return nil, err
	}
	return a, nil
}
