package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/app"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/logger"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	mode       string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "invoicex",
		Short: "Extract structured data from Argentine invoices",
		Long: `invoicex reads an invoice (PDF, image or plain text), extracts its
fields with deterministic rules or an LLM, and prints the accounting payload.`,
		SilenceUsage: true,
	}
	// cobra prints to stderr unless an output is set
	cmd.SetOut(os.Stdout)
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.mode, "mode", "m", "", "extractor mode: auto, pattern or llm")

	cmd.AddCommand(
		newExtractCmd(opts),
		newAskCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newIngestCmd(opts),
	)
	return cmd
}

// build loads configuration and wires the application.
func (o *rootOptions) build(ctx context.Context, withStore bool) (*app.App, error) {
	cfg, err := common.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.mode != "" {
		cfg.Extractor.Mode = o.mode
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return app.New(ctx, cfg, log, app.Options{WithStore: withStore})
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
