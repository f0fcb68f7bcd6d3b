package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobase/jobsheet-tracker/constants"
	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/entity"
)

type ScanJobRepository interface {
	Start(ctx context.Context, sourcePath string) (*entity.ScanJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error)
	FinishOCRSuccess(ctx context.Context, id uuid.UUID, text string, confidence float32) error
	FinishParseSuccess(ctx context.Context, id, jobSheetID uuid.UUID) error
	FinishFailure(ctx context.Context, id uuid.UUID, msg string) error
}

type scanJobRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewScanJobRepository(pool *pgxpool.Pool, logger *slog.Logger) ScanJobRepository {
	return &scanJobRepository{pool: pool, logger: logger}
}

func (r *scanJobRepository) Start(ctx context.Context, sourcePath string) (*entity.ScanJob, error) {
	job := &entity.ScanJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Status:     constants.ScanStatusRunning,
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO scan_job (id, source_path, status) VALUES ($1, $2, $3) RETURNING started_at`,
		job.ID, job.SourcePath, string(job.Status),
	)
	if err := row.Scan(&job.StartedAt); err != nil {
		r.logger.Error("failed to start scan job", "source_path", sourcePath, "error", err)
		return nil, common.WrapError(err, "start scan job")
	}
	return job, nil
}

func (r *scanJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, source_path, job_sheet_id, status, error_message, ocr_text, confidence, started_at, finished_at
		 FROM scan_job WHERE id = $1`, id)
	job := &entity.ScanJob{}
	var status string
	if err := row.Scan(&job.ID, &job.SourcePath, &job.JobSheetID, &status, &job.ErrorMessage,
		&job.OCRText, &job.Confidence, &job.StartedAt, &job.FinishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get scan job", "scan_job_id", id, "error", err)
		return nil, err
	}
	job.Status = constants.ScanStatus(status)
	return job, nil
}

func (r *scanJobRepository) FinishOCRSuccess(ctx context.Context, id uuid.UUID, text string, confidence float32) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scan_job SET status = $1, ocr_text = $2, confidence = $3 WHERE id = $4`,
		string(constants.ScanStatusOCROK), text, confidence, id,
	)
	if err != nil {
		r.logger.Error("failed to record ocr success", "scan_job_id", id, "error", err)
	}
	return err
}

func (r *scanJobRepository) FinishParseSuccess(ctx context.Context, id, jobSheetID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scan_job SET status = $1, job_sheet_id = $2, finished_at = now() WHERE id = $3`,
		string(constants.ScanStatusParsed), jobSheetID, id,
	)
	if err != nil {
		r.logger.Error("failed to record parse success", "scan_job_id", id, "error", err)
	}
	return err
}

func (r *scanJobRepository) FinishFailure(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE scan_job SET status = $1, error_message = $2, finished_at = now() WHERE id = $3`,
		string(constants.ScanStatusFailed), msg, id,
	)
	if err != nil {
		r.logger.Error("failed to record scan failure", "scan_job_id", id, "error", err)
	}
	return err
}
