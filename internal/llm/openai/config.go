package openai

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	providerName = "openai"
)

// Config for the OpenAI client. The key is always passed explicitly.
type Config struct {
	APIKey            string
	BaseURL           string        // default https://api.openai.com/v1
	Model             string        // e.g., "gpt-4o-mini"
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
