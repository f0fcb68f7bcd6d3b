package constants

// DraftStatus tracks a job-sheet draft through the extraction state machine.
type DraftStatus string

// Stable values (store these exact strings in DB).
const (
	DraftStatusPending    DraftStatus = "PENDING"    // raw text received, nothing resolved
	DraftStatusExtracted  DraftStatus = "EXTRACTED"  // all field specs resolved, total derived
	DraftStatusComplete   DraftStatus = "COMPLETE"   // every required field recovered from text
	DraftStatusIncomplete DraftStatus = "INCOMPLETE" // at least one required field defaulted
)

// ScanStatus is the canonical status for rows in scan_job.
type ScanStatus string

const (
	ScanStatusQueued  ScanStatus = "QUEUED"  // waiting for an OCR worker
	ScanStatusRunning ScanStatus = "RUNNING" // in progress
	ScanStatusOCROK   ScanStatus = "OCR_OK"  // stage 1 completed (text recognized)
	ScanStatusParsed  ScanStatus = "PARSED"  // stage 2 completed (draft assembled)
	ScanStatusFailed  ScanStatus = "FAILED"  // terminal failure
)
