package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type FileResult struct {
	Path      string
	InvoiceID string
	Extractor string
	Reused    bool
	Err       string
}

type DirStats struct {
	Scanned   int
	Matched   int
	Succeeded int
	Reused    int
	Failed    int
}

// IngestDirectory walks root and processes every invoice file in it
// synchronously. Per-file failures are recorded, not returned.
func IngestDirectory(ctx context.Context, proc async.FileProcessor, root string, force bool, logger *slog.Logger) ([]FileResult, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.InvalidInput("root path is required")
	}

	var (
		results []FileResult
		stats   DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if path != root && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !allowed(path, constants.AllowedExtensions) {
			return nil
		}
		stats.Matched++
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := proc.ProcessFile(ctx, path, force)
		if err != nil {
			logger.Warn("ingest.file.failed", "path", path, "err", err)
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		res := FileResult{Path: path, Extractor: out.Extractor, Reused: out.Reused}
		if out.Invoice != nil {
			res.InvoiceID = out.Invoice.ID.String()
		}
		results = append(results, res)
		stats.Succeeded++
		if out.Reused {
			stats.Reused++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return results, stats, common.NewAppError("INVALID_INPUT", root+" does not exist", common.ErrInvalidInput)
		}
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	logger.Info("ingest.directory.done",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"reused", stats.Reused,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

// Feed enqueues every path from events until the channel closes or ctx is
// done.
func Feed(ctx context.Context, events <-chan string, q async.Queue, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-events:
			if !ok {
				return
			}
			if err := q.Enqueue(ctx, async.Job{Path: path}); err != nil {
				logger.Warn("ingest.enqueue.failed", "path", path, "err", err)
			}
		}
	}
}
