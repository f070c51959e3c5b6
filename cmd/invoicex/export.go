package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

type exportOptions struct {
	out          string
	from         string
	to           string
	supplierCUIT string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored invoices to an XLSX ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := root.build(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()

			data, err := a.Service.ExportXLSX(ctx, repository.ListFilter{
				SupplierCUIT: opts.supplierCUIT,
				FromDate:     opts.from,
				ToDate:       opts.to,
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", opts.out, err)
			}
			cmd.Printf("wrote %s\n", opts.out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "invoices.xlsx", "output XLSX path")
	cmd.Flags().StringVar(&opts.from, "from", "", "first document date, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.to, "to", "", "last document date, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.supplierCUIT, "supplier-cuit", "", "only invoices from this supplier")
	return cmd
}
