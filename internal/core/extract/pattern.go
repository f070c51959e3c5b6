package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// PatternExtractor is the deterministic extractor. It never fails.
type PatternExtractor struct {
	logger *slog.Logger
}

var _ InvoiceExtractor = (*PatternExtractor)(nil)

func NewPatternExtractor(logger *slog.Logger) *PatternExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternExtractor{logger: logger}
}

func (p *PatternExtractor) Name() string { return "pattern" }

// Extract runs the rule catalog and the currency classifier over text and
// assembles the result.
func (p *PatternExtractor) Extract(_ context.Context, text string) (*entity.ExtractedInvoice, error) {
	fields := ExtractFields(text)
	cur := ClassifyCurrency(text)
	inv := Assemble(fields, cur)
	p.logger.Debug("extract.pattern.ok",
		"fields", inv.PopulatedFields(),
		"confidence_keys", len(inv.Confidence),
		"currency", inv.Currency,
		"text_len", len(text),
	)
	return inv, nil
}
