package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/export"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
	"github.com/velobase/jobsheet-tracker/internal/pipeline"
	"github.com/velobase/jobsheet-tracker/internal/repository"
	"github.com/velobase/jobsheet-tracker/internal/scan"
	"github.com/velobase/jobsheet-tracker/internal/server"
	"github.com/velobase/jobsheet-tracker/internal/spool"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
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
	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("db health failed", "error", err)
		os.Exit(1)
	}

	clientsRepo := repository.NewClientRepository(pool, logger)
	bikesRepo := repository.NewBikeRepository(pool, logger)
	sheetsRepo := repository.NewJobSheetRepository(pool, logger)
	jobsRepo := repository.NewScanJobRepository(pool, logger)
	salesRepo := repository.NewSaleRepository(pool, logger)

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
	ocrPool := scan.NewPool(rec, cfg.Scan.MaxOCRWorkers, logger)
	processor := pipeline.NewProcessor(jobsRepo, sheetsRepo, ocrPool, asm, logger)

	if cfg.Scan.WatchDir != "" {
		go runWatcher(ctx, cfg, processor, logger)
	}

	srv := server.New(cfg.Server.HTTPAddr, server.Deps{
		Pool:      pool,
		Clients:   clientsRepo,
		Bikes:     bikesRepo,
		Sheets:    sheetsRepo,
		Sales:     salesRepo,
		Assembler: asm,
		Processor: processor,
		Exporter:  export.NewService(sheetsRepo, logger),
		Logger:    logger,
	})
	if err := srv.Run(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// runWatcher feeds dropped files through the durable spool so a crash between
// pickup and persistence cannot lose a scan.
func runWatcher(ctx context.Context, cfg *common.Config, processor *pipeline.Processor, logger *slog.Logger) {
	sp, err := spool.Open(cfg.Scan.SpoolPath, logger)
	if err != nil {
		logger.Error("open spool", "error", err)
		return
	}
	defer sp.Close()

	if n, err := sp.RequeueStale(ctx, 10*time.Minute); err == nil && n > 0 {
		logger.Info("spool.requeued", "count", n)
	}

	files, errs, err := scan.StartWatcher(ctx, scan.WatchConfig{
		Roots:       []string{cfg.Scan.WatchDir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("start watcher", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case werr, ok := <-errs:
			if ok && werr != nil {
				logger.Error("watcher error", "error", werr)
			}
		case path, ok := <-files:
			if !ok {
				return
			}
			if _, err := sp.Enqueue(ctx, path); err != nil {
				logger.Error("spool enqueue", "path", path, "error", err)
				continue
			}
			drainSpool(ctx, sp, processor, logger)
		}
	}
}

func drainSpool(ctx context.Context, sp *spool.Spool, processor *pipeline.Processor, logger *slog.Logger) {
	for {
		entry, err := sp.NextPending(ctx)
		if err != nil {
			logger.Error("spool claim", "error", err)
			return
		}
		if entry == nil {
			return
		}
		if _, err := processor.Process(ctx, entry.Path); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			_ = sp.MarkFailed(ctx, entry.ID, err.Error())
			continue
		}
		_ = sp.MarkDone(ctx, entry.ID)
	}
}
