package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	TextSource TextSourceConfig
	LLM        LLMConfig
	Extractor  ExtractorConfig
	Ingest     IngestConfig
	Log        LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string // postgres | sqlite
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds listener addresses
type ServerConfig struct {
	GRPCAddr       string
	HTTPAddr       string
	MaxUploadBytes int64
}

// TextSourceConfig names the external text extraction tools
type TextSourceConfig struct {
	Pdftotext   string
	Pdftoppm    string
	Tesseract   string
	Lang        string
	TessdataDir string
	DPI         int
	MaxPages    int
}

// LLMConfig holds LLM-related configuration. An empty Provider disables the
// LLM path entirely.
type LLMConfig struct {
	Provider          string // anthropic | openai | ""
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerMinute int
}

type ExtractorConfig struct {
	Mode string // pattern | llm | auto
}

// IngestConfig controls the inbox watcher and the processing queue
type IngestConfig struct {
	WatchDirs      []string
	InitialScan    bool
	Debounce       time.Duration
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // text | json
}

// LoadConfig reads an optional .env file, then the optional TOML file at
// path, then applies environment overrides. Environment always wins.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", "read .env", err)
	}

	src := source{file: map[string]any{}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file", err)
		}
		var loaded map[string]any
		if err := toml.Unmarshal(data, &loaded); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parse config file", errors.Join(ErrInvalidInput, err))
		}
		src.file = flatten(loaded, "")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:          src.str("DB_DRIVER", "database.driver", "sqlite"),
			DSN:             src.str("DB_URL", "database.dsn", "file:invoices.db?_pragma=busy_timeout(5000)"),
			MaxConns:        int32(src.integer("DB_MAX_CONNS", "database.max_conns", 20)),
			MinConns:        int32(src.integer("DB_MIN_CONNS", "database.min_conns", 2)),
			MaxConnLifetime: src.duration("DB_MAX_CONN_LIFETIME", "database.max_conn_lifetime", 30*time.Minute),
			MaxConnIdleTime: src.duration("DB_MAX_CONN_IDLE_TIME", "database.max_conn_idle_time", 5*time.Minute),
			DialTimeout:     src.duration("DB_DIAL_TIMEOUT", "database.dial_timeout", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:       src.str("GRPC_ADDR", "server.grpc_addr", ":8080"),
			HTTPAddr:       src.str("HTTP_ADDR", "server.http_addr", ":8081"),
			MaxUploadBytes: int64(src.integer("MAX_UPLOAD_BYTES", "server.max_upload_bytes", 20<<20)),
		},
		TextSource: TextSourceConfig{
			Pdftotext:   src.str("PDFTOTEXT", "textsource.pdftotext", "pdftotext"),
			Pdftoppm:    src.str("PDFTOPPM", "textsource.pdftoppm", "pdftoppm"),
			Tesseract:   src.str("TESSERACT", "textsource.tesseract", "tesseract"),
			Lang:        src.str("TESSERACT_LANG", "textsource.lang", "spa"),
			TessdataDir: src.str("TESSDATA_PREFIX", "textsource.tessdata_dir", ""),
			DPI:         src.integer("OCR_DPI", "textsource.dpi", 300),
			MaxPages:    src.integer("OCR_MAX_PAGES", "textsource.max_pages", 0),
		},
		LLM: LLMConfig{
			Provider:          strings.ToLower(src.str("LLM_PROVIDER", "llm.provider", "")),
			Model:             src.str("LLM_MODEL", "llm.model", ""),
			BaseURL:           src.str("LLM_BASE_URL", "llm.base_url", ""),
			Temperature:       float32(src.float("LLM_TEMPERATURE", "llm.temperature", 0)),
			Timeout:           src.duration("LLM_TIMEOUT", "llm.timeout", 5*time.Minute),
			RequestsPerMinute: src.integer("LLM_REQUESTS_PER_MINUTE", "llm.requests_per_minute", 0),
		},
		Extractor: ExtractorConfig{
			Mode: strings.ToLower(src.str("EXTRACTOR_MODE", "extractor.mode", "auto")),
		},
		Ingest: IngestConfig{
			WatchDirs:      src.list("WATCH_DIRS", "ingest.watch_dirs"),
			InitialScan:    src.boolean("WATCH_INITIAL_SCAN", "ingest.initial_scan", true),
			Debounce:       src.duration("WATCH_DEBOUNCE", "ingest.debounce", 500*time.Millisecond),
			Workers:        src.integer("INGEST_WORKERS", "ingest.workers", 2),
			QueueSize:      src.integer("INGEST_QUEUE_SIZE", "ingest.queue_size", 64),
			ProcessTimeout: src.duration("INGEST_PROCESS_TIMEOUT", "ingest.process_timeout", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  strings.ToLower(src.str("LOG_LEVEL", "log.level", "info")),
			Format: strings.ToLower(src.str("LOG_FORMAT", "log.format", "text")),
		},
	}
	cfg.LLM.APIKey = src.str("LLM_API_KEY", "llm.api_key", providerKey(cfg.LLM.Provider))
	return cfg, nil
}

// providerKey falls back to the vendor specific variable names.
func providerKey(provider string) string {
	switch provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	}
	return ""
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return configError("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return configError("DB_URL is required")
	}
	if c.Server.GRPCAddr == "" && c.Server.HTTPAddr == "" {
		return configError("at least one of GRPC_ADDR or HTTP_ADDR is required")
	}
	switch c.Extractor.Mode {
	case "pattern", "auto", "":
	case "llm":
		if c.LLM.Provider == "" {
			return configError("EXTRACTOR_MODE=llm requires LLM_PROVIDER")
		}
	default:
		return configError("EXTRACTOR_MODE must be pattern, llm or auto, got %q", c.Extractor.Mode)
	}
	switch c.LLM.Provider {
	case "", "anthropic", "openai":
	default:
		return configError("LLM_PROVIDER must be anthropic or openai, got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return configError("LLM_TEMPERATURE must be within [0,2]")
	}
	if c.Ingest.Workers <= 0 {
		return configError("INGEST_WORKERS must be positive")
	}
	if c.Ingest.QueueSize <= 0 {
		return configError("INGEST_QUEUE_SIZE must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return configError("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return configError("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}

func configError(format string, args ...any) error {
	return NewAppError("CONFIG_ERROR", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// source resolves one setting from the environment, then the flattened
// config file, then the default.
type source struct {
	file map[string]any
}

func (s source) raw(envKey, fileKey string) (any, bool) {
	if v := os.Getenv(envKey); v != "" {
		return v, true
	}
	v, ok := s.file[fileKey]
	return v, ok
}

func (s source) str(envKey, fileKey, def string) string {
	v, ok := s.raw(envKey, fileKey)
	if !ok {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

func (s source) integer(envKey, fileKey string, def int) int {
	v, ok := s.raw(envKey, fileKey)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

func (s source) float(envKey, fileKey string, def float64) float64 {
	v, ok := s.raw(envKey, fileKey)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

func (s source) boolean(envKey, fileKey string, def bool) bool {
	v, ok := s.raw(envKey, fileKey)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

func (s source) duration(envKey, fileKey string, def time.Duration) time.Duration {
	v, ok := s.raw(envKey, fileKey)
	if !ok {
		return def
	}
	if str, ok := v.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d
		}
	}
	return def
}

// list reads a comma separated env var or a TOML string array.
func (s source) list(envKey, fileKey string) []string {
	v, ok := s.raw(envKey, fileKey)
	if !ok {
		return nil
	}
	var parts []string
	switch l := v.(type) {
	case string:
		parts = strings.Split(l, ",")
	case []any:
		for _, item := range l {
			if str, ok := item.(string); ok {
				parts = append(parts, str)
			}
		}
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// flatten converts nested TOML tables to dot-notation keys.
func flatten(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for nk, nv := range flatten(nested, key) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}
