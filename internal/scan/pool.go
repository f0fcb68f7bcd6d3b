package scan

import (
	"context"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/velobase/jobsheet-tracker/internal/ocr"
)

// Pool bounds concurrent OCR passes. One recognition acquires one worker
// slot; the slot is released on every exit path — success, recognition
// failure, or cancellation — before control returns to the caller, so
// extraction never begins while a worker is still held.
type Pool struct {
	rec     ocr.Recognizer
	workers *semaphore.Weighted
	logger  *slog.Logger
}

func NewPool(rec ocr.Recognizer, maxWorkers int64, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		rec:     rec,
		workers: semaphore.NewWeighted(maxWorkers),
		logger:  logger,
	}
}

// Recognize implements ocr.Recognizer with bounded concurrency.
func (p *Pool) Recognize(ctx context.Context, path string) (ocr.RecognitionResult, error) {
	if err := p.workers.Acquire(ctx, 1); err != nil {
		p.logger.Warn("scan.pool.acquire_cancelled", "path", path, "error", err)
		return ocr.RecognitionResult{}, err
	}
	defer p.workers.Release(1)
	return p.rec.Recognize(ctx, path)
}
