package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-extractor/internal/chat"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/services/invoices"
)

// FilenameHeader carries the suggested download name of an export.
const FilenameHeader = "x-export-filename"

type InvoiceServer struct {
	svc    *invoices.Service
	logger *slog.Logger
}

var _ InvoiceServiceServer = (*InvoiceServer)(nil)

func NewInvoiceServer(svc *invoices.Service, logger *slog.Logger) *InvoiceServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceServer{svc: svc, logger: logger}
}

func (s *InvoiceServer) Extract(ctx context.Context, req *ExtractRequest) (*ExtractResponse, error) {
	var (
		out *pipeline.Outcome
		err error
	)
	if len(req.Content) > 0 {
		out, err = s.svc.ExtractFile(ctx, req.Name, req.Content, req.Force)
	} else {
		out, err = s.svc.ExtractText(ctx, req.Name, req.Text)
	}
	if err != nil {
		return nil, err
	}
	resp := &ExtractResponse{
		InvoiceID: out.Invoice.ID.String(),
		Extractor: out.Extractor,
		Reused:    out.Reused,
		Summary:   chat.Summary(out.Invoice.Record),
		Record:    out.Invoice.Record,
	}
	if out.JobID != uuid.Nil {
		resp.JobID = out.JobID.String()
	}
	return resp, nil
}

func (s *InvoiceServer) GetInvoice(ctx context.Context, req *GetInvoiceRequest) (*GetInvoiceResponse, error) {
	inv, err := s.svc.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	return &GetInvoiceResponse{Invoice: inv}, nil
}

func (s *InvoiceServer) ListInvoices(ctx context.Context, req *ListInvoicesRequest) (*ListInvoicesResponse, error) {
	list, err := s.svc.List(ctx, repository.ListFilter{
		SupplierCUIT: req.SupplierCUIT,
		FromDate:     req.FromDate,
		ToDate:       req.ToDate,
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &ListInvoicesResponse{Invoices: list}, nil
}

func (s *InvoiceServer) Ask(ctx context.Context, req *AskRequest) (*AskResponse, error) {
	answer, err := s.svc.Ask(ctx, req.InvoiceID, req.Question)
	if err != nil {
		return nil, err
	}
	return &AskResponse{Answer: answer}, nil
}

// ExportPayload returns the export projection as a Struct; the suggested
// filename travels in the FilenameHeader response header.
func (s *InvoiceServer) ExportPayload(ctx context.Context, req *ExportPayloadRequest) (*structpb.Struct, error) {
	payload, filename, err := s.svc.ExportPayload(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode export payload", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode export payload", err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, common.NewAppError("ENCODE_ERROR", "encode export payload", err)
	}
	if err := grpc.SetHeader(ctx, metadata.Pairs(FilenameHeader, filename)); err != nil {
		s.logger.Warn("grpc.export.header_failed", "err", err)
	}
	return st, nil
}
