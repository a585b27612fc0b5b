package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"storefront.GO/config"
	"storefront.GO/core/app"
)

var reindexBatch int

var reindexCmd = &cobra.Command{
	Use:   "search:reindex",
	Short: "Rebuild the Elasticsearch product index from the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(config.NewLogger(os.Stderr))
		if err != nil {
			return err
		}
		defer a.Close()
		if !a.Deps.Search.Enabled() {
			return errors.New("ELASTICSEARCH_HOST is not set")
		}

		ctx := context.Background()
		start := time.Now()
		if err := a.Deps.Indexer.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
		n, err := a.Deps.Indexer.Reindex(ctx, reindexBatch)
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d products in %s\n", n, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	reindexCmd.Flags().IntVar(&reindexBatch, "batch-size", 500, "Products per bulk request")
	rootCmd.AddCommand(reindexCmd)
}
