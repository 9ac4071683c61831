package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"system_model_importer/config"

	"github.com/spf13/cobra"
)

const (
	flagDir     = "dir"
	flagWorkers = "workers"
)

// NewIngestCommand creates the ingest command
func NewIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Scan the models directory once and import every .pt/.pth file",
		RunE:  runIngest,
	}
	addIngestFlags(cmd)
	return cmd
}

func addIngestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP(flagDir, "d", "", "models directory (overrides ingest.models_dir)")
	cmd.Flags().IntP(flagWorkers, "w", 0, "number of files processed at once (overrides ingest.workers)")
}

// ingestOverrides copies explicitly set flags onto the loaded config.
func ingestOverrides(cmd *cobra.Command) func(*config.Config) error {
	return func(cfg *config.Config) error {
		if cmd.Flags().Changed(flagDir) {
			dir, err := cmd.Flags().GetString(flagDir)
			if err != nil {
				return err
			}
			cfg.Ingest.ModelsDir = strings.TrimSpace(dir)
		}
		if cmd.Flags().Changed(flagWorkers) {
			workers, err := cmd.Flags().GetInt(flagWorkers)
			if err != nil {
				return err
			}
			cfg.Ingest.Workers = workers
		}
		return cfg.Validate()
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := startApp(ctx, cmd, ingestOverrides(cmd))
	if err != nil {
		return err
	}
	defer a.close()

	return ingestOnce(ctx, a, cmd.OutOrStdout())
}

func ingestOnce(ctx context.Context, a *app, out io.Writer) error {
	summary, err := a.ingest.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Model ingestion completed: total=%d succeeded=%d failed=%d\n",
		summary.Total, summary.Succeeded, summary.Failed)
	return nil
}
