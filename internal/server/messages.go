package server

import (
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ExtractRequest carries either raw text or a document's bytes.
type ExtractRequest struct {
	Name    string `json:"name"`
	Text    string `json:"text,omitempty"`
	Content []byte `json:"content,omitempty"`
	Force   bool   `json:"force,omitempty"`
}

type ExtractResponse struct {
	InvoiceID string                   `json:"invoice_id"`
	JobID     string                   `json:"job_id,omitempty"`
	Extractor string                   `json:"extractor"`
	Reused    bool                     `json:"reused"`
	Summary   string                   `json:"summary"`
	Record    *entity.ExtractedInvoice `json:"record"`
}

type GetInvoiceRequest struct {
	InvoiceID string `json:"invoice_id"`
}

type GetInvoiceResponse struct {
	Invoice *entity.StoredInvoice `json:"invoice"`
}

type ListInvoicesRequest struct {
	SupplierCUIT string `json:"supplier_cuit,omitempty"`
	FromDate     string `json:"from_date,omitempty"`
	ToDate       string `json:"to_date,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

type ListInvoicesResponse struct {
	Invoices []*entity.StoredInvoice `json:"invoices"`
}

type AskRequest struct {
	InvoiceID string `json:"invoice_id"`
	Question  string `json:"question"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}

type ExportPayloadRequest struct {
	InvoiceID string `json:"invoice_id"`
}
