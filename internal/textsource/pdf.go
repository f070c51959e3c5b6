package textsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

func (l *Loader) loadPDF(ctx context.Context, path string) (Result, error) {
	text, pages, warns, err := l.pdfToText(ctx, path)
	if err != nil {
		return Result{SourceType: constants.FileTypePDF, Warnings: warns}, fmt.Errorf("pdftotext: %w", err)
	}
	text = Normalize(text)
	if len([]rune(text)) >= l.cfg.MinPDFTextChars {
		return Result{Text: text, Pages: pages, SourceType: constants.FileTypePDF, Method: "pdf-text", Warnings: warns}, nil
	}

	l.logger.Info("textsource.pdf.scanned", "path", path, "chars", len(text))
	ocrText, ocrPages, ocrWarns, err := l.pdfToOCR(ctx, path)
	warns = append(warns, ocrWarns...)
	if err != nil {
		return Result{SourceType: constants.FileTypePDF, Warnings: warns}, err
	}
	return Result{
		Text:       Normalize(ocrText),
		Pages:      ocrPages,
		SourceType: constants.FileTypePDF,
		Method:     "pdf-ocr",
		Warnings:   warns,
	}, nil
}

func (l *Loader) pdfToText(ctx context.Context, path string) (string, int, []string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	text := string(out)
	// form feed separates pages
	pages := 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return text, pages, nil, nil
}

func (l *Loader) pdfToOCR(ctx context.Context, path string) (string, int, []string, error) {
	tmpDir, err := os.MkdirTemp("", "invx-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			l.logger.Warn("textsource.tmp.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := l.runner.Run(ctx, l.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", l.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if l.cfg.MaxPages > 0 && len(matches) > l.cfg.MaxPages {
		matches = matches[:l.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		txt, w, err := l.tesseract(ctx, img)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
		warns = append(warns, w...)
	}
	if b.Len() == 0 {
		return "", len(matches), warns, fmt.Errorf("ocr produced no text")
	}
	return b.String(), len(matches), warns, nil
}
