package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/logger"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

// TextLoader turns a document into normalized text.
type TextLoader interface {
	Load(ctx context.Context, path string) (textsource.Result, error)
	LoadBytes(ctx context.Context, name string, data []byte) (textsource.Result, error)
}

// Outcome describes one processed document.
type Outcome struct {
	JobID     uuid.UUID // uuid.Nil when nothing was persisted
	Invoice   *entity.StoredInvoice
	Text      string
	Extractor string
	Reused    bool // an invoice with identical content already existed
}

// Processor coordinates text loading, extraction and persistence. Jobs and
// Invoices may both be nil, in which case nothing is stored.
type Processor struct {
	Loader    TextLoader
	Extractor extract.InvoiceExtractor
	Jobs      repository.ExtractJobRepository
	Invoices  repository.InvoiceRepository
	Logger    *slog.Logger
}

func NewProcessor(loader TextLoader, ex extract.InvoiceExtractor, jobs repository.ExtractJobRepository, invoices repository.InvoiceRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Loader: loader, Extractor: ex, Jobs: jobs, Invoices: invoices, Logger: logger}
}

func (p *Processor) persistent() bool { return p.Jobs != nil && p.Invoices != nil }

// ProcessFile extracts the invoice in path. Unless force is set, a document
// whose content was already processed returns the stored invoice.
func (p *Processor) ProcessFile(ctx context.Context, path string, force bool) (*Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewAppError("FILE_NOT_FOUND", filepath.Base(path)+" does not exist", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	return p.process(ctx, name, data, force, constants.FileTypeFromExt(filepath.Ext(name)), func(ctx context.Context) (textsource.Result, error) {
		return p.Loader.Load(ctx, path)
	})
}

// ProcessBytes is ProcessFile for an in-memory upload.
func (p *Processor) ProcessBytes(ctx context.Context, name string, data []byte, force bool) (*Outcome, error) {
	if len(data) == 0 {
		return nil, common.InvalidInput("uploaded file is empty")
	}
	return p.process(ctx, name, data, force, constants.FileTypeFromExt(filepath.Ext(name)), func(ctx context.Context) (textsource.Result, error) {
		return p.Loader.LoadBytes(ctx, name, data)
	})
}

// ProcessText extracts from text that is already available. It always runs
// a fresh extraction.
func (p *Processor) ProcessText(ctx context.Context, name, text string) (*Outcome, error) {
	if name == "" {
		name = "text"
	}
	normalized := textsource.Normalize(text)
	return p.process(ctx, name, []byte(text), true, constants.FileTypeText, func(context.Context) (textsource.Result, error) {
		return textsource.Result{Text: normalized, Pages: 1, SourceType: constants.FileTypeText, Method: "text"}, nil
	})
}

func (p *Processor) process(ctx context.Context, name string, data []byte, force bool, format constants.FileType, load func(context.Context) (textsource.Result, error)) (*Outcome, error) {
	start := time.Now()
	hash := ContentHash(data)
	log := logger.From(ctx, p.Logger).With("source", name)

	if !force && p.persistent() {
		existing, err := p.Invoices.FindByHash(ctx, hash)
		switch {
		case err == nil:
			log.Info("pipeline.reuse", "invoice_id", existing.ID)
			return &Outcome{JobID: derefID(existing.JobID), Invoice: existing, Text: existing.Text, Extractor: existing.Extractor, Reused: true}, nil
		case !errors.Is(err, common.ErrNotFound):
			return nil, err
		}
	}

	var job *entity.ExtractJob
	if p.persistent() {
		var err error
		job, err = p.Jobs.Start(ctx, name, hash, format)
		if err != nil {
			return nil, err
		}
		ctx = common.WithJobID(ctx, job.ID.String())
		log = log.With("job_id", job.ID)
	}
	fail := func(extractor string, err error) (*Outcome, error) {
		log.Error("pipeline.failed", "extractor", extractor, "err", err)
		if job != nil {
			// the job row must record the failure even if ctx was cancelled
			if ferr := p.Jobs.FinishFailure(context.WithoutCancel(ctx), job.ID, extractor, err.Error()); ferr != nil {
				log.Error("pipeline.finish_failure.failed", "err", ferr)
			}
			return &Outcome{JobID: job.ID, Extractor: extractor}, err
		}
		return nil, err
	}

	res, err := load(ctx)
	if err != nil {
		return fail("", fmt.Errorf("load text: %w", err))
	}
	log.Info("pipeline.text.ok", "method", res.Method, "pages", res.Pages, "chars", len(res.Text))

	rec, extractor, err := extract.ExtractWithName(ctx, p.Extractor, res.Text)
	if err != nil {
		return fail(extractor, fmt.Errorf("extract: %w", err))
	}

	stored := &entity.StoredInvoice{
		SourceName:  name,
		ContentHash: hash,
		Extractor:   extractor,
		CreatedAt:   time.Now().UTC(),
		Text:        res.Text,
		Record:      rec,
	}
	out := &Outcome{Invoice: stored, Text: res.Text, Extractor: extractor}
	if job != nil {
		stored.JobID = &job.ID
		if err := p.Invoices.Save(ctx, stored); err != nil {
			return fail(extractor, err)
		}
		if err := p.Jobs.FinishSuccess(ctx, job.ID, extractor, stored.ID); err != nil {
			return nil, err
		}
		out.JobID = job.ID
	} else {
		stored.ID = uuid.New()
	}

	log.Info("pipeline.ok",
		"invoice_id", stored.ID,
		"extractor", extractor,
		"fields", rec.PopulatedFields(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// ContentHash is the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
