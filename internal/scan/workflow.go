package scan

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
)

// Workflow drives one scan end to end: rate-limit the submission, run OCR
// through the bounded pool, then assemble the draft. By the time extraction
// runs, the OCR worker has been fully released; extraction itself takes no
// context because it is pure and cannot block.
type Workflow struct {
	rec     ocr.Recognizer
	asm     *extract.Assembler
	limiter *rate.Limiter
	logger  *slog.Logger
}

func NewWorkflow(rec ocr.Recognizer, asm *extract.Assembler, submitsPerSec float64, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if submitsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(submitsPerSec), 1)
	}
	return &Workflow{rec: rec, asm: asm, limiter: limiter, logger: logger}
}

// ProcessImage recognizes one job-sheet photo and extracts a draft from the
// recognized text. Recognition failures abort before extraction; degraded
// text does not — the extractor treats whatever came back as opaque input.
func (w *Workflow) ProcessImage(ctx context.Context, path string) (extract.Result, ocr.RecognitionResult, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(ctx); err != nil {
			return extract.Result{}, ocr.RecognitionResult{}, err
		}
	}

	rec, err := w.rec.Recognize(ctx, path)
	if err != nil {
		w.logger.Error("scan.recognize.failed", "path", path, "error", err)
		return extract.Result{}, rec, fmt.Errorf("recognize: %w", err)
	}
	w.logger.Info("scan.recognize.ok",
		"path", path,
		"text_bytes", len(rec.Text),
		"confidence", rec.Confidence,
		"duration_ms", rec.Duration.Milliseconds(),
	)

	res := w.asm.Extract(rec.Text)
	w.logger.Info("scan.extract.ok",
		"path", path,
		"status", res.Status,
		"missing", res.Missing,
		"total_cost", res.Draft.TotalCost,
	)
	return res, rec, nil
}
