package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "spa"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit

	// MinPDFTextChars below which a PDF is treated as scanned and OCRed.
	MinPDFTextChars int
}

// Result is the text of one document plus how it was obtained.
type Result struct {
	Text       string
	Pages      int
	SourceType constants.FileType
	Method     string // "text" | "pdf-text" | "pdf-ocr" | "image-ocr"
	MIME       string
	Duration   time.Duration
	Warnings   []string
}

// Loader turns files into normalized text.
type Loader struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return NewLoaderWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewLoaderWithRunner is NewLoader with an explicit command runner.
func NewLoaderWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "spa"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinPDFTextChars <= 0 {
		cfg.MinPDFTextChars = 20
	}
	return &Loader{cfg: cfg, runner: runner, logger: logger}
}

// Load sniffs the file type and extracts its text.
func (l *Loader) Load(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("detect type of %s: %w", filepath.Base(path), err)
	}
	l.logger.Debug("textsource.load.start", "path", path, "mime", mt.String())

	var res Result
	switch {
	case mt.Is("application/pdf"):
		res, err = l.loadPDF(ctx, path)
	case strings.HasPrefix(mt.String(), "image/"):
		res, err = l.loadImage(ctx, path)
	case mt.Is("text/plain"):
		res, err = l.loadText(path)
	default:
		return Result{MIME: mt.String()}, common.NewAppError("UNSUPPORTED_TYPE",
			fmt.Sprintf("cannot read text from %s (%s)", filepath.Base(path), mt.String()), common.ErrInvalidInput)
	}
	res.MIME = mt.String()
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	l.logger.Info("textsource.load.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// LoadBytes extracts text from an in-memory upload. Binary formats are
// spilled to a temp file for the external tools.
func (l *Loader) LoadBytes(ctx context.Context, name string, data []byte) (Result, error) {
	mt := mimetype.Detect(data)
	if mt.Is("text/plain") {
		if !utf8.Valid(data) {
			return Result{MIME: mt.String()}, common.NewAppError("INVALID_TEXT", name+" is not valid UTF-8", common.ErrInvalidInput)
		}
		return Result{
			Text:       Normalize(string(data)),
			Pages:      1,
			SourceType: constants.FileTypeText,
			Method:     "text",
			MIME:       mt.String(),
		}, nil
	}

	tmpDir, err := os.MkdirTemp("", "invx-upload-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			l.logger.Warn("textsource.tmp.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()
	path := filepath.Join(tmpDir, "upload"+mt.Extension())
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Result{}, fmt.Errorf("spill upload %s: %w", name, err)
	}
	return l.Load(ctx, path)
}

func (l *Loader) loadText(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Text:       Normalize(string(b)),
		Pages:      1,
		SourceType: constants.FileTypeText,
		Method:     "text",
	}, nil
}
