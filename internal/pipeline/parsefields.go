package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/velobase/jobsheet-tracker/constants"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

// ParseFieldsPipeline is stage 2: load the OCR text persisted by stage 1,
// assemble a job draft from it and store the resulting job sheet.
type ParseFieldsPipeline struct {
	Jobs      repository.ScanJobRepository
	Sheets    repository.JobSheetRepository
	Assembler *extract.Assembler
	Log       *slog.Logger
}

func NewParseFieldsPipeline(jobs repository.ScanJobRepository, sheets repository.JobSheetRepository, asm *extract.Assembler, log *slog.Logger) *ParseFieldsPipeline {
	if log == nil {
		log = slog.Default()
	}
	return &ParseFieldsPipeline{Jobs: jobs, Sheets: sheets, Assembler: asm, Log: log}
}

// Run parses the scan job's recognized text into a job sheet and returns its ID.
// Drafts that are missing required fields are still stored, flagged for review.
func (p *ParseFieldsPipeline) Run(ctx context.Context, jobID uuid.UUID) (uuid.UUID, error) {
	job, err := p.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return uuid.Nil, err
	}
	if job.Status != constants.ScanStatusOCROK || job.OCRText == nil {
		return uuid.Nil, fmt.Errorf("scan job %s is not ready for parsing (status %s)", jobID, job.Status)
	}

	res := p.Assembler.Extract(*job.OCRText)

	if err := extract.ValidateDraft(res.Draft); err != nil {
		_ = p.Jobs.FinishFailure(ctx, jobID, err.Error())
		return uuid.Nil, err
	}

	needsReview := !res.Complete()
	sheet, err := p.Sheets.CreateFromDraft(ctx, &repository.CreateJobSheetRequest{
		Draft:       res.Draft,
		Status:      res.Status,
		NeedsReview: needsReview,
	})
	if err != nil {
		_ = p.Jobs.FinishFailure(ctx, jobID, err.Error())
		return uuid.Nil, err
	}

	if err := p.Jobs.FinishParseSuccess(ctx, jobID, sheet.ID); err != nil {
		return sheet.ID, err
	}

	p.Log.Info("parsefields.stored",
		"scan_job_id", jobID,
		"job_sheet_id", sheet.ID,
		"status", res.Status,
		"needs_review", needsReview,
		"missing", res.Missing)
	return sheet.ID, nil
}
