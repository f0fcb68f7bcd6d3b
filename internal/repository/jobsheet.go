package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velobase/jobsheet-tracker/constants"
	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/entity"
	"github.com/velobase/jobsheet-tracker/internal/extract"
)

// CreateJobSheetRequest wraps the assembled draft plus its metadata for persistence.
type CreateJobSheetRequest struct {
	Draft       extract.JobDraft
	Status      constants.DraftStatus
	NeedsReview bool
	ClientID    *uuid.UUID
	BikeID      *uuid.UUID
}

type JobSheetRepository interface {
	CreateFromDraft(ctx context.Context, req *CreateJobSheetRequest) (*entity.JobSheet, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.JobSheet, error)
	ListJobSheets(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.JobSheet, error)
}

type jobSheetRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewJobSheetRepository(pool *pgxpool.Pool, logger *slog.Logger) JobSheetRepository {
	return &jobSheetRepository{pool: pool, logger: logger}
}

const jobSheetCols = `id, client_id, bike_id, customer_name, customer_phone, bike_model,
	work_required, work_done, labor_cost, parts_cost, total_cost, notes,
	status, needs_review, created_at, updated_at`

func (r *jobSheetRepository) CreateFromDraft(ctx context.Context, req *CreateJobSheetRequest) (*entity.JobSheet, error) {
	d := req.Draft
	js := &entity.JobSheet{
		ID:            uuid.New(),
		ClientID:      req.ClientID,
		BikeID:        req.BikeID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		BikeModel:     d.BikeModel,
		WorkRequired:  d.WorkRequired,
		WorkDone:      d.WorkDone,
		LaborCost:     d.LaborCost,
		PartsCost:     d.PartsCost,
		TotalCost:     d.TotalCost,
		Notes:         d.Notes,
		Status:        req.Status,
		NeedsReview:   req.NeedsReview,
	}
	row := r.pool.QueryRow(ctx,
		`INSERT INTO job_sheet (id, client_id, bike_id, customer_name, customer_phone, bike_model,
			work_required, work_done, labor_cost, parts_cost, total_cost, notes, status, needs_review)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING created_at, updated_at`,
		js.ID, js.ClientID, js.BikeID, js.CustomerName, js.CustomerPhone, js.BikeModel,
		js.WorkRequired, js.WorkDone, js.LaborCost, js.PartsCost, js.TotalCost, js.Notes,
		string(js.Status), js.NeedsReview,
	)
	if err := row.Scan(&js.CreatedAt, &js.UpdatedAt); err != nil {
		r.logger.Error("failed to create job sheet", "customer", d.CustomerName, "error", err)
		return nil, common.WrapError(err, "create job sheet")
	}
	return js, nil
}

func (r *jobSheetRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.JobSheet, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobSheetCols+` FROM job_sheet WHERE id = $1`, id)
	js, err := scanJobSheet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get job sheet", "job_sheet_id", id, "error", err)
		return nil, err
	}
	return js, nil
}

func (r *jobSheetRepository) ListJobSheets(ctx context.Context, fromDate, toDate *time.Time) ([]*entity.JobSheet, error) {
	q := `SELECT ` + jobSheetCols + ` FROM job_sheet`
	var args []any
	var conds []string
	if fromDate != nil {
		args = append(args, *fromDate)
		conds = append(conds, `created_at >= $1`)
	}
	if toDate != nil {
		args = append(args, *toDate)
		if len(args) == 2 {
			conds = append(conds, `created_at <= $2`)
		} else {
			conds = append(conds, `created_at <= $1`)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + conds[0]
		if len(conds) == 2 {
			q += ` AND ` + conds[1]
		}
	}
	q += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list job sheets", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.JobSheet
	for rows.Next() {
		js, err := scanJobSheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, js)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobSheet(row rowScanner) (*entity.JobSheet, error) {
	js := &entity.JobSheet{}
	var status string
	if err := row.Scan(
		&js.ID, &js.ClientID, &js.BikeID, &js.CustomerName, &js.CustomerPhone, &js.BikeModel,
		&js.WorkRequired, &js.WorkDone, &js.LaborCost, &js.PartsCost, &js.TotalCost, &js.Notes,
		&status, &js.NeedsReview, &js.CreatedAt, &js.UpdatedAt,
	); err != nil {
		return nil, err
	}
	js.Status = constants.DraftStatus(status)
	return js, nil
}
