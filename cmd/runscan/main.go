package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
	"github.com/velobase/jobsheet-tracker/internal/pipeline"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runscan <image-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		DialTimeout:     3 * time.Second,
	}, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool, logger); err != nil {
		logger.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	jobsRepo := repository.NewScanJobRepository(pool, logger)
	sheetsRepo := repository.NewJobSheetRepository(pool, logger)

	asm, err := extract.NewAssembler(nil, logger)
	if err != nil {
		logger.Error("build extractor", "error", err)
		os.Exit(1)
	}
	rec := ocr.NewTesseractRecognizer(ocr.Config{
		Tesseract:           cfg.OCR.Tesseract,
		TesseractLang:       cfg.OCR.TesseractLang,
		TessdataDir:         cfg.OCR.TessdataDir,
		HeicConverter:       cfg.OCR.HeicConverter,
		EnableTSVConfidence: true,
	})

	p := pipeline.NewProcessor(jobsRepo, sheetsRepo, rec, asm, logger)

	res, err := p.Process(ctx, path)
	if err != nil {
		logger.Error("scan failed", "path", path, "error", err)
		os.Exit(1)
	}

	logger.Info("scan OK",
		"scan_job_id", res.ScanJobID,
		"job_sheet_id", res.JobSheetID,
		"confidence", res.Confidence,
		"duration_ms", res.Elapsed.Milliseconds(),
	)
}
