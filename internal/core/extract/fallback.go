package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Mode selects which extractor the host wires up.
type Mode string

const (
	ModePattern Mode = "pattern"
	ModeLLM     Mode = "llm"
	ModeAuto    Mode = "auto"
)

// ParseMode accepts pattern, llm or auto (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePattern, ModeLLM, ModeAuto:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown extractor mode %q", s)
	}
}

// Fallback tries primary and switches to secondary only when primary
// reports ErrUnavailable. Every other error, including cancellation of ctx,
// is returned as is.
type Fallback struct {
	primary   InvoiceExtractor
	secondary InvoiceExtractor
	logger    *slog.Logger
}

var _ InvoiceExtractor = (*Fallback)(nil)

func NewFallback(primary, secondary InvoiceExtractor, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Name() string { return f.primary.Name() + "+" + f.secondary.Name() }

func (f *Fallback) Extract(ctx context.Context, text string) (*entity.ExtractedInvoice, error) {
	inv, _, err := f.ExtractAttributed(ctx, text)
	return inv, err
}

// ExtractAttributed is Extract plus the name of the extractor that produced
// the record.
func (f *Fallback) ExtractAttributed(ctx context.Context, text string) (*entity.ExtractedInvoice, string, error) {
	inv, err := f.primary.Extract(ctx, text)
	if err == nil {
		return inv, f.primary.Name(), nil
	}
	if ctx.Err() != nil || !IsUnavailable(err) {
		return nil, f.primary.Name(), err
	}
	f.logger.Warn("extract.fallback",
		"primary", f.primary.Name(),
		"secondary", f.secondary.Name(),
		"err", err,
	)
	inv, err = f.secondary.Extract(ctx, text)
	return inv, f.secondary.Name(), err
}

type attributed interface {
	ExtractAttributed(ctx context.Context, text string) (*entity.ExtractedInvoice, string, error)
}

// ExtractWithName runs ex and reports which extractor produced the record.
func ExtractWithName(ctx context.Context, ex InvoiceExtractor, text string) (*entity.ExtractedInvoice, string, error) {
	if a, ok := ex.(attributed); ok {
		return a.ExtractAttributed(ctx, text)
	}
	inv, err := ex.Extract(ctx, text)
	return inv, ex.Name(), err
}

// Select wires the extractor for mode. llmExtractor may be nil when no
// provider is configured; auto then degrades to the pattern path.
func Select(mode Mode, llmExtractor InvoiceExtractor, logger *slog.Logger) (InvoiceExtractor, error) {
	pattern := NewPatternExtractor(logger)
	switch mode {
	case ModePattern:
		return pattern, nil
	case ModeLLM:
		if llmExtractor == nil {
			return nil, fmt.Errorf("extractor mode %q requires an llm provider", mode)
		}
		return llmExtractor, nil
	case ModeAuto, "":
		if llmExtractor == nil {
			return pattern, nil
		}
		return NewFallback(llmExtractor, pattern, logger), nil
	default:
		return nil, fmt.Errorf("unknown extractor mode %q", mode)
	}
}
