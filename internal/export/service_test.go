package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

type fakeInvoices struct {
	repository.InvoiceRepository
	list   []*entity.StoredInvoice
	err    error
	filter repository.ListFilter
}

func (f *fakeInvoices) List(_ context.Context, filter repository.ListFilter) ([]*entity.StoredInvoice, error) {
	f.filter = filter
	return f.list, f.err
}

func stored(source, date, number string, amount *decimal.Decimal) *entity.StoredInvoice {
	rec := entity.NewExtractedInvoice()
	rec.Currency = "ARS"
	rec.Supplier.Name = entity.StringPtr("DISTRIBUIDORA NORTE S.A.")
	rec.Supplier.CUIT = entity.StringPtr("30-66328849-7")
	rec.InvoiceType = entity.StringPtr("B")
	rec.InvoiceNumber = entity.StringPtr(number)
	if date != "" {
		rec.DocumentDate = entity.StringPtr(date)
	}
	rec.Amount = amount
	return &entity.StoredInvoice{ID: uuid.New(), SourceName: source, Record: rec}
}

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	rows, err := f.GetRows(ledgerSheet)
	require.NoError(t, err)
	return rows
}

func TestExportInvoicesXLSX(t *testing.T) {
	amount := decimal.RequireFromString("9136.40")
	repo := &fakeInvoices{list: []*entity.StoredInvoice{
		stored("undated.txt", "", "0003-00000001", nil),
		stored("b.pdf", "2023-09-10", "0002-00000001", &amount),
		stored("a.pdf", "2023-08-22", "1305-76453547", &amount),
	}}
	svc := NewService(repo, nil)

	data, err := svc.ExportInvoicesXLSX(context.Background(), repository.ListFilter{SupplierCUIT: "30-66328849-7"})
	require.NoError(t, err)
	assert.Equal(t, "30-66328849-7", repo.filter.SupplierCUIT)

	rows := readRows(t, data)
	require.Len(t, rows, 4)
	assert.Equal(t, ledgerHeaders, rows[0])

	assert.Equal(t, "2023-08-22", rows[1][0])
	assert.Equal(t, "DISTRIBUIDORA NORTE S.A.", rows[1][1])
	assert.Equal(t, "B", rows[1][3])
	assert.Equal(t, "1305-76453547", rows[1][4])
	assert.Equal(t, "9,136.40", rows[1][6])
	assert.Equal(t, "a.pdf", rows[1][10])

	assert.Equal(t, "2023-09-10", rows[2][0])
	assert.Equal(t, "", rows[3][0])
	assert.Equal(t, "0003-00000001", rows[3][4])
}

func TestExportInvoicesXLSX_Empty(t *testing.T) {
	data, err := NewService(&fakeInvoices{}, nil).ExportInvoicesXLSX(context.Background(), repository.ListFilter{})
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, ledgerHeaders, rows[0])
}

func TestExportInvoicesXLSX_RepoError(t *testing.T) {
	_, err := NewService(&fakeInvoices{err: errors.New("db down")}, nil).ExportInvoicesXLSX(context.Background(), repository.ListFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
