package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
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

type store struct {
	jobs     repository.ExtractJobRepository
	invoices repository.InvoiceRepository
}

func setupStore(t *testing.T) store {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "pipeline.db")
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return store{
		jobs:     repository.NewExtractJobRepository(db, nil),
		invoices: repository.NewInvoiceRepository(db, nil),
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

type failingLoader struct{ err error }

func (f failingLoader) Load(context.Context, string) (textsource.Result, error) {
	return textsource.Result{}, f.err
}

func (f failingLoader) LoadBytes(context.Context, string, []byte) (textsource.Result, error) {
	return textsource.Result{}, f.err
}

type unavailableExtractor struct{}

func (unavailableExtractor) Name() string { return "llm:fake" }

func (unavailableExtractor) Extract(context.Context, string) (*entity.ExtractedInvoice, error) {
	return nil, extract.Unavailable("fake", "no key", nil)
}

func TestProcessFile_StoresAndReuses(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	p := NewProcessor(textsource.NewLoader(textsource.Config{}, nil), extract.NewPatternExtractor(nil), s.jobs, s.invoices, nil)
	path := writeFile(t, "factura.txt", invoiceText)

	first, err := p.ProcessFile(ctx, path, false)
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.Equal(t, "pattern", first.Extractor)
	require.NotEqual(t, uuid.Nil, first.JobID)
	assert.Equal(t, "1305-76453547", *first.Invoice.Record.InvoiceNumber)
	assert.Equal(t, ContentHash([]byte(invoiceText)), first.Invoice.ContentHash)

	job, err := s.jobs.GetByID(ctx, first.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusOK), job.Status)
	assert.Equal(t, string(constants.FileTypeText), job.Format)
	require.NotNil(t, job.InvoiceID)
	assert.Equal(t, first.Invoice.ID, *job.InvoiceID)

	again, err := p.ProcessFile(ctx, path, false)
	require.NoError(t, err)
	assert.True(t, again.Reused)
	assert.Equal(t, first.Invoice.ID, again.Invoice.ID)
	assert.Equal(t, first.JobID, again.JobID)

	forced, err := p.ProcessFile(ctx, path, true)
	require.NoError(t, err)
	assert.False(t, forced.Reused)
	assert.NotEqual(t, first.Invoice.ID, forced.Invoice.ID)

	list, err := s.invoices.List(ctx, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestProcessFile_LoadFailureMarksJob(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	loadErr := errors.New("pdftotext: exit status 1")
	p := NewProcessor(failingLoader{err: loadErr}, extract.NewPatternExtractor(nil), s.jobs, s.invoices, nil)

	out, err := p.ProcessFile(ctx, writeFile(t, "scan.pdf", "%PDF-1.4"), false)
	require.ErrorIs(t, err, loadErr)
	require.NotNil(t, out)

	job, err := s.jobs.GetByID(ctx, out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), job.Status)
	assert.Equal(t, string(constants.FileTypePDF), job.Format)
	require.NotNil(t, job.ErrorMessage)
	assert.Contains(t, *job.ErrorMessage, "pdftotext")
}

func TestProcessText_ExtractorFailure(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)
	p := NewProcessor(failingLoader{}, unavailableExtractor{}, s.jobs, s.invoices, nil)

	out, err := p.ProcessText(ctx, "pasted.txt", invoiceText)
	require.Error(t, err)
	assert.True(t, extract.IsUnavailable(err))

	job, err := s.jobs.GetByID(ctx, out.JobID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), job.Status)
	require.NotNil(t, job.Extractor)
	assert.Equal(t, "llm:fake", *job.Extractor)
}

func TestProcessText_AutoFallsBackToPattern(t *testing.T) {
	ex, err := extract.Select(extract.ModeAuto, unavailableExtractor{}, nil)
	require.NoError(t, err)
	p := NewProcessor(failingLoader{}, ex, nil, nil, nil)

	out, err := p.ProcessText(context.Background(), "", invoiceText)
	require.NoError(t, err)
	assert.Equal(t, "pattern", out.Extractor)
	assert.Equal(t, uuid.Nil, out.JobID)
	assert.NotEqual(t, uuid.Nil, out.Invoice.ID)
	assert.Equal(t, "text", out.Invoice.SourceName)
	assert.Equal(t, "30-66328849-7", *out.Invoice.Record.Supplier.CUIT)
}

func TestProcess_InvalidInput(t *testing.T) {
	p := NewProcessor(failingLoader{}, extract.NewPatternExtractor(nil), nil, nil, nil)

	_, err := p.ProcessBytes(context.Background(), "empty.pdf", nil, false)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), false)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestProcessBytes_UsesLoadBytes(t *testing.T) {
	p := NewProcessor(textsource.NewLoader(textsource.Config{}, nil), extract.NewPatternExtractor(nil), nil, nil, nil)

	out, err := p.ProcessBytes(context.Background(), "upload.txt", []byte(invoiceText), false)
	require.NoError(t, err)
	assert.Equal(t, "B", *out.Invoice.Record.InvoiceType)
	assert.Contains(t, out.Text, "CUIT: 30-66328849-7")
}
