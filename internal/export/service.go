package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/velobase/jobsheet-tracker/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	sheetsRepo repository.JobSheetRepository
	logger     *slog.Logger
}

func NewService(repo repository.JobSheetRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sheetsRepo: repo, logger: logger}
}

// ExportJobSheetsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all job sheets.
func (s *Service) ExportJobSheetsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	sheets, err := s.sheetsRepo.ListJobSheets(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query job sheets: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Job Sheets"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Created",
		"Customer",
		"Phone",
		"Bike",
		"Work Required",
		"Work Done",
		"Labor",
		"Parts",
		"Total",
		"Status",
		"Needs Review",
		"Notes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, js := range sheets {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !js.CreatedAt.IsZero() {
			write(1, js.CreatedAt.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, js.CustomerName)
		write(3, js.CustomerPhone)
		write(4, js.BikeModel)
		write(5, truncate(js.WorkRequired, 140))
		write(6, truncate(js.WorkDone, 140))
		write(7, js.LaborCost)
		write(8, js.PartsCost)
		write(9, js.TotalCost)
		write(10, string(js.Status))
		write(11, js.NeedsReview)
		write(12, truncate(js.Notes, 140))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 24) // customer
	_ = f.SetColWidth(sheet, "C", "C", 16) // phone
	_ = f.SetColWidth(sheet, "D", "D", 22) // bike
	_ = f.SetColWidth(sheet, "E", "F", 40) // work columns
	_ = f.SetColWidth(sheet, "G", "I", 10) // amounts
	_ = f.SetColWidth(sheet, "J", "K", 14) // status flags
	_ = f.SetColWidth(sheet, "L", "L", 48) // notes

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(sheets),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate clips s to at most n bytes of content, cutting on a rune boundary
// so a multi-byte character is never split.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
