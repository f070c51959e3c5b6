// Package app assembles the extraction stack from configuration. Both
// binaries go through it so the CLI and the daemon share one wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/chat"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/anthropic"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/services/invoices"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB // nil when built without a store
	Loader    *textsource.Loader
	Completer llm.Completer // nil when no provider is configured
	Extractor extract.InvoiceExtractor
	Processor *pipeline.Processor
	Service   *invoices.Service
}

// Options adjust what New wires.
type Options struct {
	// WithStore opens the database and runs migrations.
	WithStore bool
	// Mode overrides cfg.Extractor.Mode when set.
	Mode string
}

func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	a.Loader = textsource.NewLoader(TextSourceConfig(cfg.TextSource), logger)

	completer, err := NewCompleter(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	a.Completer = completer

	mode := cfg.Extractor.Mode
	if opts.Mode != "" {
		mode = opts.Mode
	}
	a.Extractor, err = NewExtractor(mode, cfg.LLM, completer, logger)
	if err != nil {
		return nil, err
	}

	var (
		jobs  repository.ExtractJobRepository
		store repository.InvoiceRepository
	)
	if opts.WithStore {
		db, err := repository.Open(ctx, repository.Config{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.Database.DSN,
			MaxConns:        cfg.Database.MaxConns,
			MinConns:        cfg.Database.MinConns,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.DB = db
		jobs = repository.NewExtractJobRepository(db, logger)
		store = repository.NewInvoiceRepository(db, logger)
	}

	var responder chat.Responder = chat.Canned{}
	if completer != nil {
		responder = chat.NewLLMResponder(completer, chat.Canned{}, logger)
	}

	a.Processor = pipeline.NewProcessor(a.Loader, a.Extractor, jobs, store, logger)
	a.Service = invoices.NewService(a.Processor, store, responder, logger)

	logger.Info("app.ready",
		"extractor", a.Extractor.Name(),
		"store", opts.WithStore,
		"llm_provider", cfg.LLM.Provider,
	)
	return a, nil
}

func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// TextSourceConfig maps the configuration section onto the loader's.
func TextSourceConfig(c common.TextSourceConfig) textsource.Config {
	return textsource.Config{
		Pdftotext:     c.Pdftotext,
		Pdftoppm:      c.Pdftoppm,
		Tesseract:     c.Tesseract,
		TesseractLang: c.Lang,
		TessdataDir:   c.TessdataDir,
		DPI:           c.DPI,
		MaxPages:      c.MaxPages,
	}
}

// NewCompleter returns nil, nil when no provider is configured.
func NewCompleter(c common.LLMConfig, logger *slog.Logger) (llm.Completer, error) {
	switch c.Provider {
	case "":
		return nil, nil
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:            c.APIKey,
			BaseURL:           c.BaseURL,
			Model:             c.Model,
			Timeout:           c.Timeout,
			RequestsPerMinute: c.RequestsPerMinute,
		}, logger), nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:            c.APIKey,
			BaseURL:           c.BaseURL,
			Model:             c.Model,
			Timeout:           c.Timeout,
			RequestsPerMinute: c.RequestsPerMinute,
		}, logger), nil
	default:
		return nil, common.InvalidInput(fmt.Sprintf("unknown llm provider %q", c.Provider))
	}
}

// NewExtractor selects the extractor for mode. A nil completer makes auto
// mode pattern-only and llm mode an error.
func NewExtractor(mode string, c common.LLMConfig, completer llm.Completer, logger *slog.Logger) (extract.InvoiceExtractor, error) {
	m, err := extract.ParseMode(mode)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", err.Error(), common.ErrInvalidInput)
	}
	var llmExtractor extract.InvoiceExtractor
	if completer != nil {
		ex, err := llm.NewExtractor(completer, logger, llm.WithTemperature(c.Temperature))
		if err != nil {
			return nil, fmt.Errorf("llm extractor: %w", err)
		}
		llmExtractor = ex
	}
	selected, err := extract.Select(m, llmExtractor, logger)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", err.Error(), common.ErrInvalidInput)
	}
	return selected, nil
}
