package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewEnsureBucketCommand creates the ensure-bucket command
func NewEnsureBucketCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-bucket",
		Short: "Create the configured bucket if it does not exist yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := startApp(ctx, cmd, nil)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(cmd.OutOrStdout(), "Bucket ready: %s\n", a.store.Location())
			return nil
		},
	}
}
