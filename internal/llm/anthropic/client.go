package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

type messagesRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	System      string        `json:"system,omitempty"`
	Temperature float32       `json:"temperature"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete calls /v1/messages and returns the concatenated text blocks.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", extract.Unavailable(providerName, "missing api key", nil)
	}
	if err := llm.WaitTurn(ctx, c.limiter, providerName); err != nil {
		return "", err
	}

	start := time.Now()
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	body := messagesRequest{
		Model:       c.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   maxTokens,
		System:      req.System,
		Temperature: req.Temperature,
	}
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	raw, err := llm.PostJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return "", llm.ClassifyError(ctx, providerName, err)
	}

	var mr messagesResponse
	if err := json.Unmarshal(raw, &mr); err != nil {
		return "", extract.Unavailable(providerName, "undecodable response", fmt.Errorf("decode: %w", err))
	}
	var b strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", extract.Unavailable(providerName, "empty completion", nil)
	}

	c.logger.Debug("llm.anthropic.ok",
		"model", c.cfg.Model,
		"stop_reason", mr.StopReason,
		"input_tokens", mr.Usage.InputTokens,
		"output_tokens", mr.Usage.OutputTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}
