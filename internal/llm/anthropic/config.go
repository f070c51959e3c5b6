package anthropic

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1024

	anthropicVersion = "2023-06-01"
	providerName     = "anthropic"
)

// Config for the Anthropic client. The key is always passed explicitly.
type Config struct {
	APIKey            string
	BaseURL           string        // default https://api.anthropic.com
	Model             string        // default claude-sonnet-4-20250514
	Timeout           time.Duration // http client timeout, default 5m
	RequestsPerMinute int           // 0 = unlimited
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ llm.Completer = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = llm.DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: llm.NewLimiter(cfg.RequestsPerMinute),
		logger:  logger,
	}
}

func (c *Client) Provider() string { return providerName }
