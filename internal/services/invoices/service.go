package invoices

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/chat"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

const (
	maxNameLength     = 255
	maxQuestionLength = 2000
	maxTextLength     = 1 << 20
	defaultListLimit  = 100
)

var errNoStore = common.NewAppError("NO_STORE", "invoice store is not configured", common.ErrInvalidInput)

// Service handles invoice business logic for every transport.
type Service struct {
	proc      *pipeline.Processor
	invoices  repository.InvoiceRepository
	exporter  *export.Service
	responder chat.Responder
	logger    *slog.Logger
}

// NewService wires the service. invoices may be nil for store-less use, in
// which case only the record based operations work.
func NewService(proc *pipeline.Processor, invoices repository.InvoiceRepository, responder chat.Responder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if responder == nil {
		responder = chat.Canned{}
	}
	s := &Service{proc: proc, invoices: invoices, responder: responder, logger: logger}
	if invoices != nil {
		s.exporter = export.NewService(invoices, logger)
	}
	return s
}

// ExtractText runs extraction over already available text.
func (s *Service) ExtractText(ctx context.Context, name, text string) (*pipeline.Outcome, error) {
	err := common.NewValidator().
		Field("text", text, common.Required, common.MaxLength(maxTextLength)).
		Field("name", name, common.MaxLength(maxNameLength)).
		Err()
	if err != nil {
		return nil, err
	}
	return s.proc.ProcessText(ctx, strings.TrimSpace(name), text)
}

// ExtractFile runs extraction over an uploaded document.
func (s *Service) ExtractFile(ctx context.Context, name string, data []byte, force bool) (*pipeline.Outcome, error) {
	if err := common.NewValidator().Field("name", name, common.Required, common.MaxLength(maxNameLength)).Err(); err != nil {
		return nil, err
	}
	return s.proc.ProcessBytes(ctx, name, data, force)
}

// ExtractPath runs extraction over a local file.
func (s *Service) ExtractPath(ctx context.Context, path string, force bool) (*pipeline.Outcome, error) {
	if err := common.NewValidator().Field("path", path, common.Required).Err(); err != nil {
		return nil, err
	}
	return s.proc.ProcessFile(ctx, path, force)
}

func (s *Service) Get(ctx context.Context, id string) (*entity.StoredInvoice, error) {
	if s.invoices == nil {
		return nil, errNoStore
	}
	if err := common.NewValidator().Field("id", id, common.Required, common.UUID).Err(); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, uuid.MustParse(id))
}

// List returns stored invoices, newest first. A zero limit means 100.
func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]*entity.StoredInvoice, error) {
	if s.invoices == nil {
		return nil, errNoStore
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	return s.invoices.List(ctx, filter)
}

// Ask answers a question about a stored invoice.
func (s *Service) Ask(ctx context.Context, id, question string) (string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.AskRecord(ctx, inv.Record, inv.Text, question)
}

// AskRecord answers a question about a record that may not be stored.
func (s *Service) AskRecord(ctx context.Context, rec *entity.ExtractedInvoice, text, question string) (string, error) {
	err := common.NewValidator().
		Field("question", question, common.Required, common.MaxLength(maxQuestionLength)).
		Err()
	if err != nil {
		return "", err
	}
	answer, err := s.responder.Respond(ctx, rec, text, question)
	if err != nil {
		s.logger.Error("invoices.ask.failed", "err", err)
		return "", err
	}
	return answer, nil
}

func (s *Service) Summary(ctx context.Context, id string) (string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return chat.Summary(inv.Record), nil
}

// ExportPayload returns the export projection and its download filename.
func (s *Service) ExportPayload(ctx context.Context, id string) (extract.ExportPayload, string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return extract.ExportPayload{}, "", err
	}
	return extract.ToExportPayload(inv.Record), extract.ExportFilename(inv.Record), nil
}

func (s *Service) ExportXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	if s.exporter == nil {
		return nil, errNoStore
	}
	if filter.FromDate != "" && filter.ToDate != "" && filter.FromDate > filter.ToDate {
		return nil, common.InvalidInput("from date is after to date")
	}
	data, err := s.exporter.ExportInvoicesXLSX(ctx, filter)
	if err != nil {
		var app *common.AppError
		if errors.As(err, &app) {
			return nil, err
		}
		return nil, common.NewAppError("EXPORT_ERROR", "build ledger", err)
	}
	return data, nil
}
