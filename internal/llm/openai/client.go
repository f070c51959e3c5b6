package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Complete calls /chat/completions. The system prompt travels as the first
// message.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", extract.Unavailable(providerName, "missing api key", nil)
	}
	if err := llm.WaitTurn(ctx, c.limiter, providerName); err != nil {
		return "", err
	}

	start := time.Now()
	messages := make([]map[string]any, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, map[string]any{"role": "system", "content": req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, map[string]any{"role": m.Role, "content": m.Content})
	}
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": req.Temperature,
		"messages":    messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.PostJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return "", llm.ClassifyError(ctx, providerName, err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", extract.Unavailable(providerName, "undecodable response", fmt.Errorf("decode: %w", err))
	}
	if len(cc.Choices) == 0 {
		return "", extract.Unavailable(providerName, "no choices in response", nil)
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	if content == "" {
		return "", extract.Unavailable(providerName, "empty completion", nil)
	}

	c.logger.Debug("llm.openai.ok",
		"model", c.cfg.Model,
		"finish_reason", cc.Choices[0].FinishReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
