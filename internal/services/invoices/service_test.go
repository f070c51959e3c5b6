package invoices

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

const invoiceText = `DISTRIBUIDORA NORTE S.A.
CUIT: 30-66328849-7
CODIGO 06
Factura Nro. 1305-76453547
Fecha de Emisión: 22/08/2023
Total a Pagar: $9,136.40
`

type stubResponder struct {
	gotText string
}

func (s *stubResponder) Respond(_ context.Context, inv *entity.ExtractedInvoice, text, question string) (string, error) {
	s.gotText = text
	return question + " -> " + *inv.Supplier.CUIT, nil
}

func setupService(t *testing.T) (*Service, *stubResponder) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "svc.db")
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))

	jobs := repository.NewExtractJobRepository(db, nil)
	invs := repository.NewInvoiceRepository(db, nil)
	proc := pipeline.NewProcessor(textsource.NewLoader(textsource.Config{}, nil), extract.NewPatternExtractor(nil), jobs, invs, nil)
	responder := &stubResponder{}
	return NewService(proc, invs, responder, nil), responder
}

func TestService_ExtractAndRead(t *testing.T) {
	ctx := context.Background()
	svc, responder := setupService(t)

	out, err := svc.ExtractText(ctx, "pegado.txt", invoiceText)
	require.NoError(t, err)
	id := out.Invoice.ID.String()

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pegado.txt", got.SourceName)

	list, err := svc.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	answer, err := svc.Ask(ctx, id, "¿CUIT?")
	require.NoError(t, err)
	assert.Equal(t, "¿CUIT? -> 30-66328849-7", answer)
	assert.Contains(t, responder.gotText, "Factura Nro. 1305-76453547")

	summary, err := svc.Summary(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, summary, "1305-76453547")

	payload, filename, err := svc.ExportPayload(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "invoice_1305-76453547.json", filename)
	require.NotNil(t, payload.Amount)
	assert.InDelta(t, 9136.40, *payload.Amount, 1e-9)
	assert.Equal(t, "1", payload.ExchangeType)

	data, err := svc.ExportXLSX(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestService_ExtractFileDedupes(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	first, err := svc.ExtractFile(ctx, "factura.txt", []byte(invoiceText), false)
	require.NoError(t, err)
	second, err := svc.ExtractFile(ctx, "copia.txt", []byte(invoiceText), false)
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"empty text", func() error { _, err := svc.ExtractText(ctx, "", "   "); return err }},
		{"missing file name", func() error { _, err := svc.ExtractFile(ctx, "", []byte("x"), false); return err }},
		{"empty upload", func() error { _, err := svc.ExtractFile(ctx, "a.pdf", nil, false); return err }},
		{"bad id", func() error { _, err := svc.Get(ctx, "42"); return err }},
		{"empty question", func() error { _, err := svc.AskRecord(ctx, entity.NewExtractedInvoice(), "", " "); return err }},
		{"inverted range", func() error {
			_, err := svc.ExportXLSX(ctx, repository.ListFilter{FromDate: "2024-02-01", ToDate: "2024-01-01"})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), common.ErrInvalidInput)
		})
	}

	_, err := svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestService_WithoutStore(t *testing.T) {
	ctx := context.Background()
	proc := pipeline.NewProcessor(textsource.NewLoader(textsource.Config{}, nil), extract.NewPatternExtractor(nil), nil, nil, nil)
	svc := NewService(proc, nil, nil, nil)

	out, err := svc.ExtractText(ctx, "", invoiceText)
	require.NoError(t, err)

	answer, err := svc.AskRecord(ctx, out.Invoice.Record, out.Text, "¿Cuál es el CUIT?")
	require.NoError(t, err)
	assert.Contains(t, answer, "30-66328849-7")

	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	_, err = svc.ExportXLSX(ctx, repository.ListFilter{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
