package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/velobase/jobsheet-tracker/internal/common"
	"github.com/velobase/jobsheet-tracker/internal/export"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
	"github.com/velobase/jobsheet-tracker/internal/repository"
	"github.com/velobase/jobsheet-tracker/internal/scan"
	"github.com/velobase/jobsheet-tracker/internal/spool"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	root := &cobra.Command{
		Use:           "jobsheetctl",
		Short:         "Operator tools for the job-sheet tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newExtractCmd())
	root.AddCommand(newScanCmd(logger))
	root.AddCommand(newSpoolCmd(logger))
	root.AddCommand(newExportCmd(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newExtractCmd parses a text file (or stdin) into a job draft and prints it
// as JSON. No database required.
func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract a job draft from raw sheet text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if len(args) == 1 {
				raw, err = os.ReadFile(args[0])
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			asm, err := extract.NewAssembler(nil, slog.Default())
			if err != nil {
				return err
			}
			res := asm.Extract(string(raw))

			out := struct {
				Draft   extract.JobDraft `json:"draft"`
				Status  string           `json:"status"`
				Missing []string         `json:"missing,omitempty"`
			}{Draft: res.Draft, Status: string(res.Status), Missing: res.Missing}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

// newScanCmd OCRs an image and prints the extracted draft without touching
// the database. Useful for checking sheets before they hit the intake dir.
func newScanCmd(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "OCR an image and extract a job draft locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()

			asm, err := extract.NewAssembler(nil, logger)
			if err != nil {
				return err
			}
			rec := ocr.NewTesseractRecognizer(ocr.Config{
				Tesseract:           cfg.OCR.Tesseract,
				TesseractLang:       cfg.OCR.TesseractLang,
				TessdataDir:         cfg.OCR.TessdataDir,
				HeicConverter:       cfg.OCR.HeicConverter,
				EnableTSVConfidence: true,
			})
			wf := scan.NewWorkflow(rec, asm, cfg.Scan.SubmitsPerSec, logger)

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			res, rr, err := wf.ProcessImage(ctx, args[0])
			if err != nil {
				return err
			}

			out := struct {
				Draft      extract.JobDraft `json:"draft"`
				Status     string           `json:"status"`
				Missing    []string         `json:"missing,omitempty"`
				Confidence float32          `json:"confidence"`
			}{Draft: res.Draft, Status: string(res.Status), Missing: res.Missing, Confidence: rr.Confidence}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func newSpoolCmd(logger *slog.Logger) *cobra.Command {
	var spoolPath string

	spoolCmd := &cobra.Command{
		Use:   "spool",
		Short: "Inspect and feed the local scan spool",
	}
	spoolCmd.PersistentFlags().StringVar(&spoolPath, "spool", "", "spool database path (default $SCAN_SPOOL_PATH)")

	openSpool := func() (*spool.Spool, error) {
		path := spoolPath
		if path == "" {
			path = common.LoadConfig().Scan.SpoolPath
		}
		return spool.Open(path, logger)
	}

	addCmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Queue image files for scanning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSpool()
			if err != nil {
				return err
			}
			defer sp.Close()
			for _, path := range args {
				id, err := sp.Enqueue(cmd.Context(), path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, path)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queued scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sp, err := openSpool()
			if err != nil {
				return err
			}
			defer sp.Close()
			entries, err := sp.ListPending(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					e.ID, e.Status, e.EnqueuedAt.Format(time.RFC3339), e.Path)
			}
			return nil
		},
	}

	spoolCmd.AddCommand(addCmd, listCmd)
	return spoolCmd
}

func newExportCmd(logger *slog.Logger) *cobra.Command {
	var fromStr, toStr, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export job sheets to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			if cfg.Database.DSN == "" {
				return fmt.Errorf("DB_URL required")
			}

			var from, to *time.Time
			if fromStr != "" {
				t, err := time.Parse("2006-01-02", fromStr)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				from = &t
			}
			if toStr != "" {
				t, err := time.Parse("2006-01-02", toStr)
				if err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
				to = &t
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := repository.Open(ctx, repository.Config{
				DSN:             cfg.Database.DSN,
				MaxConns:        5,
				MinConns:        1,
				MaxConnLifetime: 30 * time.Minute,
				MaxConnIdleTime: 5 * time.Minute,
				DialTimeout:     3 * time.Second,
			}, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := export.NewService(repository.NewJobSheetRepository(pool, logger), logger)
			data, err := svc.ExportJobSheetsXLSX(ctx, from, to)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outPath, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start date (2006-01-02)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date (2006-01-02)")
	cmd.Flags().StringVar(&outPath, "out", "jobsheets.xlsx", "output file")
	return cmd
}
