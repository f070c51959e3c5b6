package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ListFilter narrows InvoiceRepository.List. Dates compare against the ISO
// document date; empty values are ignored.
type ListFilter struct {
	SupplierCUIT string
	FromDate     string
	ToDate       string
	Limit        int
	Offset       int
}

type InvoiceRepository interface {
	Save(ctx context.Context, inv *entity.StoredInvoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.StoredInvoice, error)
	FindByHash(ctx context.Context, contentHash string) (*entity.StoredInvoice, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.StoredInvoice, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

var invoiceColumns = []string{"id", "job_id", "source_name", "content_hash", "extractor", "record_json", "source_text", "created_at"}

// Save inserts inv, assigning its ID and CreatedAt when unset.
func (r *invoiceRepository) Save(ctx context.Context, inv *entity.StoredInvoice) error {
	if inv.Record == nil {
		return common.InvalidInput("invoice record is required")
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	record, err := json.Marshal(inv.Record)
	if err != nil {
		return common.NewAppError("ENCODE_ERROR", "encode invoice record", err)
	}

	rec := inv.Record
	var amount any
	if rec.Amount != nil {
		amount = rec.Amount.String()
	}
	var jobID any
	if inv.JobID != nil {
		jobID = inv.JobID.String()
	}

	q, args := r.db.builder().Insert("invoices").
		Columns("id", "job_id", "source_name", "content_hash", "extractor",
			"supplier_cuit", "supplier_name", "invoice_number", "invoice_type",
			"currency", "amount", "document_date", "record_json", "source_text", "created_at").
		Values(inv.ID.String(), jobID, inv.SourceName, inv.ContentHash, inv.Extractor,
			nullable(rec.Supplier.CUIT), nullable(rec.Supplier.Name), nullable(rec.InvoiceNumber), nullable(rec.InvoiceType),
			rec.Currency, amount, nullable(rec.DocumentDate), string(record), inv.Text, formatTime(inv.CreatedAt)).
		Query()
	if _, err := r.db.exec(ctx, q, args); err != nil {
		r.logger.Error("invoice.save.failed", "source", inv.SourceName, "err", err)
		return common.NewAppError("DB_ERROR", "save invoice", err)
	}
	r.logger.Info("invoice.saved", "invoice_id", inv.ID, "source", inv.SourceName, "extractor", inv.Extractor)
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.StoredInvoice, error) {
	list, err := r.find(ctx, func(s *entsql.Selector) { s.Where(entsql.EQ("id", id.String())) })
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFound("invoice", id.String())
	}
	return list[0], nil
}

// FindByHash returns the newest invoice extracted from identical content.
func (r *invoiceRepository) FindByHash(ctx context.Context, contentHash string) (*entity.StoredInvoice, error) {
	list, err := r.find(ctx, func(s *entsql.Selector) {
		s.Where(entsql.EQ("content_hash", contentHash)).
			OrderBy(entsql.Desc("created_at")).
			Limit(1)
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFound("invoice with hash", contentHash)
	}
	return list[0], nil
}

// List returns invoices newest first. Offset applies only with a Limit.
func (r *invoiceRepository) List(ctx context.Context, f ListFilter) ([]*entity.StoredInvoice, error) {
	return r.find(ctx, func(s *entsql.Selector) {
		var preds []*entsql.Predicate
		if f.SupplierCUIT != "" {
			preds = append(preds, entsql.EQ("supplier_cuit", f.SupplierCUIT))
		}
		if f.FromDate != "" {
			preds = append(preds, entsql.GTE("document_date", f.FromDate))
		}
		if f.ToDate != "" {
			preds = append(preds, entsql.LTE("document_date", f.ToDate))
		}
		if len(preds) > 0 {
			s.Where(entsql.And(preds...))
		}
		s.OrderBy(entsql.Desc("created_at"))
		if f.Limit > 0 {
			s.Limit(f.Limit)
			if f.Offset > 0 {
				s.Offset(f.Offset)
			}
		}
	})
}

func (r *invoiceRepository) find(ctx context.Context, shape func(*entsql.Selector)) ([]*entity.StoredInvoice, error) {
	b := r.db.builder()
	sel := b.Select(invoiceColumns...).From(b.Table("invoices"))
	shape(sel)
	q, args := sel.Query()

	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		r.logger.Error("invoice.query.failed", "err", err)
		return nil, common.NewAppError("DB_ERROR", "query invoices", err)
	}
	defer rows.Close()

	var out []*entity.StoredInvoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "query invoices", err)
	}
	return out, nil
}

func scanInvoice(rows *entsql.Rows) (*entity.StoredInvoice, error) {
	var (
		id, record, createdAt string
		jobID                 sql.NullString
		inv                   entity.StoredInvoice
	)
	if err := rows.Scan(&id, &jobID, &inv.SourceName, &inv.ContentHash, &inv.Extractor, &record, &inv.Text, &createdAt); err != nil {
		return nil, common.NewAppError("DB_ERROR", "scan invoice", err)
	}
	inv.ID, _ = uuid.Parse(id)
	if jobID.Valid {
		if parsed, err := uuid.Parse(jobID.String); err == nil {
			inv.JobID = &parsed
		}
	}
	inv.CreatedAt = parseTime(createdAt)
	inv.Record = entity.NewExtractedInvoice()
	if err := json.Unmarshal([]byte(record), inv.Record); err != nil {
		return nil, common.NewAppError("DECODE_ERROR", "decode invoice record", err)
	}
	return &inv, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
