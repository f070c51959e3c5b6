package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "invoices.db") + "?_pragma=busy_timeout(5000)"
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func sampleRecord(cuit, number, date string, amount string) *entity.ExtractedInvoice {
	inv := entity.NewExtractedInvoice()
	inv.Supplier.CUIT = entity.StringPtr(cuit)
	inv.Supplier.Name = entity.StringPtr("DISTRIBUIDORA NORTE S.A.")
	inv.InvoiceNumber = entity.StringPtr(number)
	inv.DocumentDate = entity.StringPtr(date)
	inv.Currency = "ARS"
	inv.CurrencySymbol = "$"
	inv.Amount = entity.DecimalPtr(decimal.RequireFromString(amount))
	inv.Annotate(entity.FieldAmount, 0.99, "total")
	return inv
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.HealthCheck(context.Background(), time.Second))
	assert.Equal(t, "sqlite3", db.Dialect())
}

func TestExtractJobLifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	jobs := NewExtractJobRepository(db, nil)

	job, err := jobs.Start(ctx, "factura.pdf", "abc123", constants.FileTypePDF)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusRunning), job.Status)

	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "factura.pdf", got.SourceName)
	assert.Equal(t, "PDF", got.Format)
	assert.Nil(t, got.FinishedAt)
	assert.WithinDuration(t, job.StartedAt, got.StartedAt, time.Microsecond)

	invoiceID := uuid.New()
	require.NoError(t, jobs.FinishSuccess(ctx, job.ID, "pattern", invoiceID))

	got, err = jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusOK), got.Status)
	require.NotNil(t, got.Extractor)
	assert.Equal(t, "pattern", *got.Extractor)
	require.NotNil(t, got.InvoiceID)
	assert.Equal(t, invoiceID, *got.InvoiceID)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, constants.JobStatus(got.Status).Terminal())
}

func TestExtractJobFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	jobs := NewExtractJobRepository(db, nil)

	job, err := jobs.Start(ctx, "scan.png", "def456", constants.FileTypeImage)
	require.NoError(t, err)
	require.NoError(t, jobs.FinishFailure(ctx, job.ID, "", "tesseract: exit status 1"))

	got, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusFailed), got.Status)
	assert.Nil(t, got.Extractor)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "tesseract: exit status 1", *got.ErrorMessage)
}

func TestExtractJobNotFound(t *testing.T) {
	ctx := context.Background()
	jobs := NewExtractJobRepository(setupTestDB(t), nil)

	_, err := jobs.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = jobs.FinishSuccess(ctx, uuid.New(), "pattern", uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestInvoiceSaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(setupTestDB(t), nil)

	jobID := uuid.New()
	stored := &entity.StoredInvoice{
		JobID:       &jobID,
		SourceName:  "factura.txt",
		ContentHash: "hash-1",
		Extractor:   "pattern",
		Record:      sampleRecord("30-66328849-7", "1305-76453547", "2023-08-22", "9136.40"),
	}
	require.NoError(t, repo.Save(ctx, stored))
	require.NotEqual(t, uuid.Nil, stored.ID)

	got, err := repo.GetByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "factura.txt", got.SourceName)
	require.NotNil(t, got.JobID)
	assert.Equal(t, jobID, *got.JobID)
	require.NotNil(t, got.Record.Amount)
	assert.True(t, got.Record.Amount.Equal(decimal.RequireFromString("9136.40")))
	assert.Equal(t, "1305-76453547", *got.Record.InvoiceNumber)
	assert.InDelta(t, 0.99, got.Record.Confidence[entity.FieldAmount], 1e-9)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = repo.Save(ctx, &entity.StoredInvoice{SourceName: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestInvoiceFindByHashAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewInvoiceRepository(setupTestDB(t), nil)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rows := []struct {
		hash, cuit, number, date string
	}{
		{"h1", "30-66328849-7", "0001-00000001", "2023-08-22"},
		{"h2", "30-66328849-7", "0001-00000002", "2023-09-10"},
		{"h1", "20-12345678-9", "0002-00000003", "2023-10-05"},
	}
	for i, r := range rows {
		require.NoError(t, repo.Save(ctx, &entity.StoredInvoice{
			SourceName:  r.number + ".txt",
			ContentHash: r.hash,
			Extractor:   "pattern",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
			Record:      sampleRecord(r.cuit, r.number, r.date, "100.00"),
		}))
	}

	latest, err := repo.FindByHash(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "0002-00000003", *latest.Record.InvoiceNumber)

	_, err = repo.FindByHash(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all newest first", ListFilter{}, []string{"0002-00000003", "0001-00000002", "0001-00000001"}},
		{"by supplier", ListFilter{SupplierCUIT: "30-66328849-7"}, []string{"0001-00000002", "0001-00000001"}},
		{"date range", ListFilter{FromDate: "2023-09-01", ToDate: "2023-09-30"}, []string{"0001-00000002"}},
		{"limit offset", ListFilter{Limit: 1, Offset: 1}, []string{"0001-00000002"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			var got []string
			for _, inv := range list {
				got = append(got, *inv.Record.InvoiceNumber)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
