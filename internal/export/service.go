package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

const ledgerSheet = "Invoices"

var ledgerHeaders = []string{
	"Document Date",
	"Supplier",
	"CUIT",
	"Type",
	"Number",
	"Currency",
	"Amount",
	"IVA",
	"Net Taxed",
	"CAE",
	"Source",
}

// Service produces XLSX ledgers of stored invoices.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

// ExportInvoicesXLSX returns a workbook of every invoice matching filter,
// ordered by document date.
func (s *Service) ExportInvoicesXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	invs, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteLedger(&buf, invs); err != nil {
		return nil, err
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(invs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteLedger renders invs as a single-sheet workbook into w.
func WriteLedger(w io.Writer, invs []*entity.StoredInvoice) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", ledgerSheet); err != nil {
		return err
	}

	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ledgerSheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	_ = f.SetCellStyle(ledgerSheet, "A1", "K1", headerStyle)

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	sorted := sortByDocumentDate(invs)
	for i, inv := range sorted {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(ledgerSheet, cell, v)
		}
		rec := inv.Record
		if rec == nil {
			rec = entity.NewExtractedInvoice()
		}

		write(1, deref(rec.DocumentDate))
		write(2, deref(rec.Supplier.Name))
		write(3, deref(rec.Supplier.CUIT))
		write(4, deref(rec.InvoiceType))
		write(5, deref(rec.InvoiceNumber))
		write(6, rec.Currency)
		write(7, money(rec.Amount))
		write(8, money(rec.IVA))
		write(9, money(rec.AmountGrav))
		write(10, deref(rec.CAE))
		write(11, inv.SourceName)

		from, _ := excelize.CoordinatesToCellName(7, row)
		to, _ := excelize.CoordinatesToCellName(9, row)
		_ = f.SetCellStyle(ledgerSheet, from, to, moneyStyle)
	}

	_ = f.SetColWidth(ledgerSheet, "A", "A", 14) // date
	_ = f.SetColWidth(ledgerSheet, "B", "B", 32) // supplier
	_ = f.SetColWidth(ledgerSheet, "C", "C", 16) // cuit
	_ = f.SetColWidth(ledgerSheet, "D", "F", 10)
	_ = f.SetColWidth(ledgerSheet, "E", "E", 18) // number
	_ = f.SetColWidth(ledgerSheet, "G", "I", 14) // amounts
	_ = f.SetColWidth(ledgerSheet, "J", "J", 18) // cae
	_ = f.SetColWidth(ledgerSheet, "K", "K", 40) // source

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

// sortByDocumentDate orders oldest first; undated invoices go last.
func sortByDocumentDate(invs []*entity.StoredInvoice) []*entity.StoredInvoice {
	out := make([]*entity.StoredInvoice, len(invs))
	copy(out, invs)
	key := func(inv *entity.StoredInvoice) string {
		if inv.Record == nil || inv.Record.DocumentDate == nil {
			return "9999"
		}
		return *inv.Record.DocumentDate
	}
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) < key(out[j]) })
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// money yields a numeric cell, or an empty one when the amount is unknown.
func money(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}
