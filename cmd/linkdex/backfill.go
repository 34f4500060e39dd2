package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dombackfill "github.com/kailas-cloud/linkdex/internal/domain/backfill"
)

func newBackfillCmd(flags *rootFlags) *cobra.Command {
	var (
		limit  int
		offset int
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Embed documents that have no vector yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all && offset != 0 {
				return fmt.Errorf("--offset cannot be combined with --all")
			}

			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if !all {
				r, err := a.backfill.RunBatch(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				printReport(out, r)
				return nil
			}

			reports, err := a.backfill.RunAll(cmd.Context(), limit)
			for _, r := range reports {
				printReport(out, r)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "documents per batch (0 uses backfill.default_limit)")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many pending documents")
	cmd.Flags().BoolVar(&all, "all", false, "repeat batches until nothing is pending")
	return cmd
}

func printReport(w io.Writer, r dombackfill.Report) {
	fmt.Fprintf(w, "processed=%d successful=%d failed=%d cost_usd=%.6f remaining=%d\n",
		r.Processed, r.Successful, r.Failed, r.CostUSD, r.Remaining)
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
}
