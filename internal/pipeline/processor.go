package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

// Processor drives a scanned image through both stages end to end.
type Processor struct {
	textExtract *TextExtractPipeline
	parseFields *ParseFieldsPipeline
	log         *slog.Logger
}

func NewProcessor(jobs repository.ScanJobRepository, sheets repository.JobSheetRepository, rec ocr.Recognizer, asm *extract.Assembler, log *slog.Logger) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{
		textExtract: NewTextExtractPipeline(jobs, rec, log),
		parseFields: NewParseFieldsPipeline(jobs, sheets, asm, log),
		log:         log,
	}
}

// ProcessResult summarizes one end-to-end scan.
type ProcessResult struct {
	ScanJobID  uuid.UUID             `json:"scan_job_id"`
	JobSheetID uuid.UUID             `json:"job_sheet_id"`
	OCR        ocr.RecognitionResult `json:"-"`
	Confidence float32               `json:"confidence"`
	Elapsed    time.Duration         `json:"elapsed"`
}

// Process runs OCR and field parsing on path, persisting both the scan job
// and the resulting job sheet. On OCR failure the scan job records the error
// and no sheet is created.
func (p *Processor) Process(ctx context.Context, path string) (*ProcessResult, error) {
	start := time.Now()

	jobID, res, err := p.textExtract.Run(ctx, path)
	if err != nil {
		p.log.Error("processor.ocr.failed", "path", path, "scan_job_id", jobID, "error", err)
		return nil, err
	}
	p.log.Info("processor.ocr.ok",
		"path", path,
		"scan_job_id", jobID,
		"chars", len(res.Text),
		"confidence", res.Confidence)

	sheetID, err := p.parseFields.Run(ctx, jobID)
	if err != nil {
		p.log.Error("processor.parse.failed", "scan_job_id", jobID, "error", err)
		return nil, err
	}

	return &ProcessResult{
		ScanJobID:  jobID,
		JobSheetID: sheetID,
		OCR:        res,
		Confidence: res.Confidence,
		Elapsed:    time.Since(start),
	}, nil
}
