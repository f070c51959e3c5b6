package httpapi

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/chat"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/services/invoices"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc            *invoices.Service
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(svc *invoices.Service, maxUploadBytes int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger}
}

type extractTextRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type extractResponse struct {
	InvoiceID string `json:"invoice_id"`
	JobID     string `json:"job_id,omitempty"`
	Extractor string `json:"extractor"`
	Reused    bool   `json:"reused"`
	Summary   string `json:"summary"`
	Record    any    `json:"record"`
}

type askRequest struct {
	Question string `json:"question"`
}

// Extract accepts a multipart "file" upload or a JSON {name, text} body.
func (h *Handler) Extract(c *gin.Context) {
	ctx := c.Request.Context()
	force, _ := strconv.ParseBool(c.Query("force"))
	// multipart framing needs some headroom above the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	var (
		out *pipeline.Outcome
		err error
	)
	if fh, ferr := c.FormFile("file"); ferr == nil {
		if fh.Size > h.maxUploadBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		f, oerr := fh.Open()
		if oerr != nil {
			h.fail(c, common.NewAppError("UPLOAD_ERROR", "open upload", errors.Join(common.ErrInvalidInput, oerr)))
			return
		}
		var buf bytes.Buffer
		_, rerr := io.Copy(&buf, io.LimitReader(f, h.maxUploadBytes))
		_ = f.Close()
		if rerr != nil {
			h.fail(c, common.NewAppError("UPLOAD_ERROR", "read upload", errors.Join(common.ErrInvalidInput, rerr)))
			return
		}
		out, err = h.svc.ExtractFile(ctx, fh.Filename, buf.Bytes(), force)
	} else {
		var req extractTextRequest
		if berr := c.ShouldBindJSON(&req); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected a multipart file or a JSON body with text"})
			return
		}
		out, err = h.svc.ExtractText(ctx, req.Name, req.Text)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := extractResponse{
		InvoiceID: out.Invoice.ID.String(),
		Extractor: out.Extractor,
		Reused:    out.Reused,
		Summary:   chat.Summary(out.Invoice.Record),
		Record:    out.Invoice.Record,
	}
	if out.JobID != uuid.Nil {
		resp.JobID = out.JobID.String()
	}
	status := http.StatusCreated
	if out.Reused {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) ListInvoices(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": list})
}

// ExportPayload serves the accounting payload as a JSON attachment.
func (h *Handler) ExportPayload(c *gin.Context) {
	payload, filename, err := h.svc.ExportPayload(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected a JSON body with question"})
		return
	}
	answer, err := h.svc.Ask(c.Request.Context(), c.Param("id"), req.Question)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// ExportLedger streams the stored invoices as an XLSX workbook.
func (h *Handler) ExportLedger(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	data, err := h.svc.ExportXLSX(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("http.handler.failed", "path", c.FullPath(), "err", err)
	}
	c.JSON(status, gin.H{"error": common.HTTPMessage(err)})
}

func listFilter(c *gin.Context) (repository.ListFilter, error) {
	f := repository.ListFilter{
		SupplierCUIT: c.Query("supplier_cuit"),
		FromDate:     c.Query("from"),
		ToDate:       c.Query("to"),
	}
	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.InvalidInput(key + " must be a non-negative integer")
	}
	return n, nil
}
