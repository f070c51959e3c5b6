package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type ExtractJobRepository interface {
	Start(ctx context.Context, sourceName, contentHash string, format constants.FileType) (*entity.ExtractJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, extractor string, invoiceID uuid.UUID) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, extractor, message string) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: time.Now}
}

var jobColumns = []string{
	"id", "source_name", "content_hash", "format", "status",
	"extractor", "invoice_id", "error_message", "started_at", "finished_at",
}

func (r *extractJobRepo) Start(ctx context.Context, sourceName, contentHash string, format constants.FileType) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:          uuid.New(),
		SourceName:  sourceName,
		ContentHash: contentHash,
		Format:      string(format),
		Status:      string(constants.JobStatusRunning),
		StartedAt:   r.now().UTC(),
	}
	q, args := r.db.builder().Insert("extract_jobs").
		Columns("id", "source_name", "content_hash", "format", "status", "started_at").
		Values(job.ID.String(), job.SourceName, job.ContentHash, job.Format, job.Status, formatTime(job.StartedAt)).
		Query()
	if _, err := r.db.exec(ctx, q, args); err != nil {
		r.log.Error("extract_job.start.failed", "source", sourceName, "err", err)
		return nil, common.NewAppError("DB_ERROR", "start extract job", err)
	}
	r.log.Info("extract_job.started", "job_id", job.ID, "source", sourceName, "format", format)
	return job, nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, extractor string, invoiceID uuid.UUID) error {
	q, args := r.db.builder().Update("extract_jobs").
		Set("status", string(constants.JobStatusOK)).
		Set("extractor", extractor).
		Set("invoice_id", invoiceID.String()).
		Set("finished_at", formatTime(r.now())).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	if err := r.finish(ctx, jobID, q, args); err != nil {
		return err
	}
	r.log.Info("extract_job.finished", "job_id", jobID, "status", constants.JobStatusOK, "extractor", extractor)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, extractor, message string) error {
	u := r.db.builder().Update("extract_jobs").
		Set("status", string(constants.JobStatusFailed)).
		Set("error_message", message).
		Set("finished_at", formatTime(r.now()))
	if extractor != "" {
		u = u.Set("extractor", extractor)
	}
	q, args := u.Where(entsql.EQ("id", jobID.String())).Query()
	if err := r.finish(ctx, jobID, q, args); err != nil {
		return err
	}
	r.log.Warn("extract_job.finished", "job_id", jobID, "status", constants.JobStatusFailed, "error", message)
	return nil
}

func (r *extractJobRepo) finish(ctx context.Context, jobID uuid.UUID, q string, args []any) error {
	n, err := r.db.exec(ctx, q, args)
	if err != nil {
		r.log.Error("extract_job.finish.failed", "job_id", jobID, "err", err)
		return common.NewAppError("DB_ERROR", "finish extract job", err)
	}
	if n == 0 {
		return common.NotFound("extract job", jobID.String())
	}
	return nil
}

func (r *extractJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	q, args := r.db.builder().Select(jobColumns...).
		From(r.db.builder().Table("extract_jobs")).
		Where(entsql.EQ("id", jobID.String())).
		Query()
	rows, err := r.db.query(ctx, q, args)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "get extract job", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, common.NewAppError("DB_ERROR", "get extract job", err)
		}
		return nil, common.NotFound("extract job", jobID.String())
	}
	return scanJob(rows)
}

func scanJob(rows *entsql.Rows) (*entity.ExtractJob, error) {
	var (
		id, startedAt                                string
		extractor, invoiceID, errorMessage, finished sql.NullString
		job                                          entity.ExtractJob
	)
	if err := rows.Scan(&id, &job.SourceName, &job.ContentHash, &job.Format, &job.Status,
		&extractor, &invoiceID, &errorMessage, &startedAt, &finished); err != nil {
		return nil, common.NewAppError("DB_ERROR", "scan extract job", err)
	}
	job.ID, _ = uuid.Parse(id)
	job.StartedAt = parseTime(startedAt)
	if extractor.Valid {
		job.Extractor = &extractor.String
	}
	if invoiceID.Valid {
		if parsed, err := uuid.Parse(invoiceID.String); err == nil {
			job.InvoiceID = &parsed
		}
	}
	if errorMessage.Valid {
		job.ErrorMessage = &errorMessage.String
	}
	if finished.Valid {
		t := parseTime(finished.String)
		job.FinishedAt = &t
	}
	return &job, nil
}
