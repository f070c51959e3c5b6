package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

const (
	chatMaxTokens   = 1000
	chatTemperature = 0.7
)

// LLMResponder asks a provider and falls back to another responder when the
// provider is unavailable.
type LLMResponder struct {
	completer llm.Completer
	fallback  Responder
	logger    *slog.Logger
}

var _ Responder = (*LLMResponder)(nil)

func NewLLMResponder(c llm.Completer, fallback Responder, logger *slog.Logger) *LLMResponder {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = Canned{}
	}
	return &LLMResponder{completer: c, fallback: fallback, logger: logger}
}

func (r *LLMResponder) Respond(ctx context.Context, inv *entity.ExtractedInvoice, text, question string) (string, error) {
	if inv == nil {
		inv = entity.NewExtractedInvoice()
	}
	record, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	answer, err := r.completer.Complete(ctx, llm.CompletionRequest{
		System:      llm.BuildChatSystemPrompt(),
		Messages:    []llm.Message{{Role: "user", Content: llm.BuildChatUserPrompt(string(record), text, question)}},
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err == nil {
		return answer, nil
	}
	err = llm.ClassifyError(ctx, r.completer.Provider(), err)
	if !extract.IsUnavailable(err) {
		return "", err
	}
	r.logger.Warn("chat.llm.fallback", "provider", r.completer.Provider(), "err", err)
	return r.fallback.Respond(ctx, inv, text, question)
}
