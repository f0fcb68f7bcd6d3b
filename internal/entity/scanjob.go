package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/velobase/jobsheet-tracker/constants"
)

// ScanJob represents one OCR pass over a photographed job sheet.
type ScanJob struct {
	ID           uuid.UUID            `json:"id"`
	SourcePath   string               `json:"source_path"`
	JobSheetID   *uuid.UUID           `json:"job_sheet_id,omitempty"`
	Status       constants.ScanStatus `json:"status"`
	ErrorMessage *string              `json:"error_message,omitempty"`
	OCRText      *string              `json:"ocr_text,omitempty"`
	Confidence   *float32             `json:"confidence,omitempty"`
	StartedAt    time.Time            `json:"started_at"`
	FinishedAt   *time.Time           `json:"finished_at,omitempty"`
}
