package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/velobase/jobsheet-tracker/constants"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

// TextExtractPipeline is stage 1: start a scan_job, run OCR, persist the
// recognized text. The field parse stage is NOT called here.
type TextExtractPipeline struct {
	Jobs       repository.ScanJobRepository
	Recognizer ocr.Recognizer
	Log        *slog.Logger
}

func NewTextExtractPipeline(jobs repository.ScanJobRepository, rec ocr.Recognizer, log *slog.Logger) *TextExtractPipeline {
	if log == nil {
		log = slog.Default()
	}
	return &TextExtractPipeline{Jobs: jobs, Recognizer: rec, Log: log}
}

// Run returns the scan job ID and the recognition summary.
func (p *TextExtractPipeline) Run(ctx context.Context, path string) (uuid.UUID, ocr.RecognitionResult, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if !constants.IsAllowedExt(ext) {
		return uuid.Nil, ocr.RecognitionResult{}, fmt.Errorf("unsupported format: %s", ext)
	}

	job, err := p.Jobs.Start(ctx, path)
	if err != nil {
		return uuid.Nil, ocr.RecognitionResult{}, err
	}

	res, err := p.Recognizer.Recognize(ctx, path)
	if err != nil {
		_ = p.Jobs.FinishFailure(ctx, job.ID, err.Error())
		return job.ID, res, err
	}

	if err := p.Jobs.FinishOCRSuccess(ctx, job.ID, res.Text, res.Confidence); err != nil {
		return job.ID, res, err
	}

	return job.ID, res, nil
}
