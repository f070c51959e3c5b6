package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/server"
)

type extractOptions struct {
	record bool
	force  bool
	store  bool
	server string
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract an invoice and print its export payload",
		Long: `Extracts the invoice in file and prints the accounting payload as JSON.
With --record the full extracted record, including confidence and
reasoning, is printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.server != "" {
				return runRemoteExtract(cmd, opts, args[0])
			}
			return runExtract(cmd, root, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.record, "record", false, "print the full record instead of the export payload")
	cmd.Flags().BoolVar(&opts.force, "force", false, "re-extract even when the file is already stored")
	cmd.Flags().BoolVar(&opts.store, "store", false, "persist the result in the configured database")
	cmd.Flags().StringVar(&opts.server, "server", "", "send the file to a running invoicexd at this gRPC address")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, path string) error {
	ctx := cmd.Context()
	a, err := root.build(ctx, opts.store)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Service.ExtractPath(ctx, path, opts.force)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	if opts.record {
		return printJSON(cmd, out.Invoice.Record)
	}
	return printJSON(cmd, extract.ToExportPayload(out.Invoice.Record))
}

func runRemoteExtract(cmd *cobra.Command, opts *extractOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	conn, err := grpc.NewClient(opts.server, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.server, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	client := server.NewClient(conn)
	resp, err := client.Extract(ctx, &server.ExtractRequest{
		Name:    filepath.Base(path),
		Content: data,
		Force:   opts.force,
	})
	if err != nil {
		return fmt.Errorf("remote extract: %w", err)
	}
	if opts.record {
		return printJSON(cmd, resp.Record)
	}
	payload, _, err := client.ExportPayload(ctx, &server.ExportPayloadRequest{InvoiceID: resp.InvoiceID})
	if err != nil {
		return fmt.Errorf("remote export: %w", err)
	}
	return printJSON(cmd, payload.AsMap())
}
