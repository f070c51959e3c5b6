package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const defaultExtractMaxTokens = 4000

// Extractor implements extract.InvoiceExtractor on top of a Completer.
// Every failure it returns, other than cancellation, matches
// extract.ErrUnavailable so callers can fall back to the pattern path.
type Extractor struct {
	completer Completer
	schema    *jsonschema.Schema
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// ExtractorOption tunes the completion request.
type ExtractorOption func(*Extractor)

// WithTemperature overrides the default sampling temperature of 0.
func WithTemperature(t float32) ExtractorOption {
	return func(e *Extractor) { e.temperature = t }
}

func WithMaxTokens(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

var _ extract.InvoiceExtractor = (*Extractor)(nil)

func NewExtractor(c Completer, logger *slog.Logger, opts ...ExtractorOption) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		return nil, fmt.Errorf("llm extractor: nil completer")
	}
	schema, err := CompileSchema(BuildInvoiceJSONSchema())
	if err != nil {
		return nil, err
	}
	e := &Extractor{completer: c, schema: schema, maxTokens: defaultExtractMaxTokens, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Extractor) Name() string { return "llm:" + e.completer.Provider() }

func (e *Extractor) Extract(ctx context.Context, text string) (*entity.ExtractedInvoice, error) {
	rid := uuid.New().String()
	start := time.Now()
	provider := e.completer.Provider()

	e.logger.Info("llm.extract.start", "req_id", rid, "provider", provider, "text_len", len(text))

	content, err := e.completer.Complete(ctx, CompletionRequest{
		System:      BuildExtractionSystemPrompt(),
		Messages:    []Message{{Role: "user", Content: BuildExtractionUserPrompt(text)}},
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
		JSON:        true,
	})
	if err != nil {
		err = ClassifyError(ctx, provider, err)
		e.logger.Error("llm.extract.completion_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	body := StripCodeFences(content)
	cleaned, touched, err := SanitizeInvoiceJSON([]byte(body), e.logger)
	if err != nil {
		e.logger.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", err, "content", Truncate(content, 2048))
		return nil, extract.Unavailable(provider, "malformed output", err)
	}
	if err := ValidateJSON(e.schema, cleaned); err != nil {
		e.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err, "content", Truncate(string(cleaned), 2048))
		return nil, extract.Unavailable(provider, "output does not match schema", err)
	}

	fields := entity.NewExtractedInvoice()
	if err := json.Unmarshal(cleaned, fields); err != nil {
		e.logger.Error("llm.extract.unmarshal_failed", "req_id", rid, "error", err)
		return nil, extract.Unavailable(provider, "undecodable output", err)
	}

	inv := extract.Assemble(fields, extract.ClassifyCurrency(text))

	e.logger.Info("llm.extract.ok",
		"req_id", rid,
		"provider", provider,
		"fields", inv.PopulatedFields(),
		"sanitized", len(touched),
		"currency", inv.Currency,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return inv, nil
}
