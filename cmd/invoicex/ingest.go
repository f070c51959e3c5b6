package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "ingest [dir]",
		Short: "Extract and store every invoice under a directory",
		Long: `Walks dir recursively, extracts every pdf, txt, png, jpg and jpeg file,
and stores the results. Files already stored are skipped unless --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.build(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			results, stats, err := ingest.IngestDirectory(ctx, a.Processor, args[0], force, a.Logger)
			if err != nil {
				return err
			}
			for _, r := range results {
				switch {
				case r.Err != "":
					cmd.Printf("  FAIL   %s: %s\n", r.Path, r.Err)
				case r.Reused:
					cmd.Printf("  SKIP   %s\n", r.Path)
				default:
					cmd.Printf("  OK     %s\n", r.Path)
				}
			}
			cmd.Printf("\nscanned=%d matched=%d succeeded=%d reused=%d failed=%d\n",
				stats.Scanned, stats.Matched, stats.Succeeded, stats.Reused, stats.Failed)
			if stats.Failed > 0 {
				return fmt.Errorf("%d file(s) failed", stats.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-extract files that are already stored")
	return cmd
}
