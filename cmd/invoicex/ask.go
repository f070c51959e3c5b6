package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/chat"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [file] [question]",
		Short: "Ask a question about an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.build(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Service.ExtractPath(ctx, args[0], false)
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			answer, err := a.Service.AskRecord(ctx, out.Invoice.Record, out.Text, args[1])
			if err != nil {
				return err
			}
			cmd.Println(answer)
			return nil
		},
	}
}

func newSummaryCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [file]",
		Short: "Print the analysis summary of an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := root.build(ctx, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := a.Service.ExtractPath(ctx, args[0], false)
			if err != nil {
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			cmd.Println(chat.Summary(out.Invoice.Record))
			return nil
		},
	}
}
