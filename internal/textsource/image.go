package textsource

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

func (l *Loader) loadImage(ctx context.Context, path string) (Result, error) {
	txt, warns, err := l.tesseract(ctx, path)
	if err != nil {
		return Result{SourceType: constants.FileTypeImage, Warnings: warns}, err
	}
	return Result{
		Text:       Normalize(txt),
		Pages:      1,
		SourceType: constants.FileTypeImage,
		Method:     "image-ocr",
		Warnings:   warns,
	}, nil
}

func (l *Loader) tesseract(ctx context.Context, path string) (string, []string, error) {
	// tesseract <file> stdout -l <lang>
	args := []string{path, "stdout", "-l", l.cfg.TesseractLang}
	if l.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", l.cfg.TessdataDir)
	}
	out, errb, err := l.runner.Run(ctx, l.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}
