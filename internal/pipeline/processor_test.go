package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobase/jobsheet-tracker/constants"
	"github.com/velobase/jobsheet-tracker/internal/entity"
	"github.com/velobase/jobsheet-tracker/internal/extract"
	"github.com/velobase/jobsheet-tracker/internal/ocr"
	"github.com/velobase/jobsheet-tracker/internal/repository"
)

const sampleSheet = `Customer: John Jerrime
Phone: 0411 056 876
Bike: Trek Marlin 7
Work Required: Fork service
Work Done: Fork Service
Hub clean
Labor: $80
Parts: $210
Notes: S/T 27/6/2023`

type memScanJobs struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*entity.ScanJob
}

func newMemScanJobs() *memScanJobs {
	return &memScanJobs{jobs: make(map[uuid.UUID]*entity.ScanJob)}
}

func (m *memScanJobs) Start(_ context.Context, sourcePath string) (*entity.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &entity.ScanJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Status:     constants.ScanStatusRunning,
		StartedAt:  time.Now(),
	}
	m.jobs[job.ID] = job
	return job, nil
}

func (m *memScanJobs) GetByID(_ context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, errors.New("scan job not found")
	}
	cp := *job
	return &cp, nil
}

func (m *memScanJobs) FinishOCRSuccess(_ context.Context, id uuid.UUID, text string, confidence float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[id]
	job.Status = constants.ScanStatusOCROK
	job.OCRText = &text
	job.Confidence = &confidence
	return nil
}

func (m *memScanJobs) FinishParseSuccess(_ context.Context, id, jobSheetID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[id]
	now := time.Now()
	job.Status = constants.ScanStatusParsed
	job.JobSheetID = &jobSheetID
	job.FinishedAt = &now
	return nil
}

func (m *memScanJobs) FinishFailure(_ context.Context, id uuid.UUID, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := m.jobs[id]
	now := time.Now()
	job.Status = constants.ScanStatusFailed
	job.ErrorMessage = &msg
	job.FinishedAt = &now
	return nil
}

type memJobSheets struct {
	mu     sync.Mutex
	sheets map[uuid.UUID]*entity.JobSheet
}

func newMemJobSheets() *memJobSheets {
	return &memJobSheets{sheets: make(map[uuid.UUID]*entity.JobSheet)}
}

func (m *memJobSheets) CreateFromDraft(_ context.Context, req *repository.CreateJobSheetRequest) (*entity.JobSheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := req.Draft
	js := &entity.JobSheet{
		ID:            uuid.New(),
		ClientID:      req.ClientID,
		BikeID:        req.BikeID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		BikeModel:     d.BikeModel,
		WorkRequired:  d.WorkRequired,
		WorkDone:      d.WorkDone,
		LaborCost:     d.LaborCost,
		PartsCost:     d.PartsCost,
		TotalCost:     d.TotalCost,
		Notes:         d.Notes,
		Status:        req.Status,
		NeedsReview:   req.NeedsReview,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.sheets[js.ID] = js
	return js, nil
}

func (m *memJobSheets) GetByID(_ context.Context, id uuid.UUID) (*entity.JobSheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	js, ok := m.sheets[id]
	if !ok {
		return nil, errors.New("job sheet not found")
	}
	cp := *js
	return &cp, nil
}

func (m *memJobSheets) ListJobSheets(_ context.Context, _, _ *time.Time) ([]*entity.JobSheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.JobSheet, 0, len(m.sheets))
	for _, js := range m.sheets {
		cp := *js
		out = append(out, &cp)
	}
	return out, nil
}

type fixedRecognizer struct {
	text string
	conf float32
	err  error
}

func (f fixedRecognizer) Recognize(context.Context, string) (ocr.RecognitionResult, error) {
	if f.err != nil {
		return ocr.RecognitionResult{}, f.err
	}
	return ocr.RecognitionResult{Text: f.text, Language: "eng", Confidence: f.conf}, nil
}

func TestProcessorEndToEnd(t *testing.T) {
	jobs := newMemScanJobs()
	sheets := newMemJobSheets()
	asm, err := extract.NewAssembler(nil, nil)
	require.NoError(t, err)

	p := NewProcessor(jobs, sheets, fixedRecognizer{text: sampleSheet, conf: 0.9}, asm, nil)

	res, err := p.Process(context.Background(), "/scans/sheet-001.jpg")
	require.NoError(t, err)

	job, err := jobs.GetByID(context.Background(), res.ScanJobID)
	require.NoError(t, err)
	assert.Equal(t, constants.ScanStatusParsed, job.Status)
	require.NotNil(t, job.JobSheetID)
	assert.Equal(t, res.JobSheetID, *job.JobSheetID)

	sheet, err := sheets.GetByID(context.Background(), res.JobSheetID)
	require.NoError(t, err)
	assert.Equal(t, "John Jerrime", sheet.CustomerName)
	assert.Equal(t, "0411 056 876", sheet.CustomerPhone)
	assert.Equal(t, "Trek Marlin 7", sheet.BikeModel)
	assert.Equal(t, "Fork Service\nHub clean", sheet.WorkDone)
	assert.Equal(t, 290.0, sheet.TotalCost)
	assert.Equal(t, constants.DraftStatusComplete, sheet.Status)
	assert.False(t, sheet.NeedsReview)
}

func TestProcessorOCRFailureRecordsErrorAndSkipsParse(t *testing.T) {
	jobs := newMemScanJobs()
	sheets := newMemJobSheets()
	asm, err := extract.NewAssembler(nil, nil)
	require.NoError(t, err)

	p := NewProcessor(jobs, sheets, fixedRecognizer{err: errors.New("tesseract exploded")}, asm, nil)

	_, err = p.Process(context.Background(), "/scans/sheet-002.png")
	require.Error(t, err)

	assert.Empty(t, sheets.sheets)
	require.Len(t, jobs.jobs, 1)
	for _, job := range jobs.jobs {
		assert.Equal(t, constants.ScanStatusFailed, job.Status)
		require.NotNil(t, job.ErrorMessage)
		assert.Contains(t, *job.ErrorMessage, "tesseract exploded")
	}
}

func TestProcessorRejectsUnsupportedExtensionBeforeAnyWork(t *testing.T) {
	jobs := newMemScanJobs()
	sheets := newMemJobSheets()
	asm, err := extract.NewAssembler(nil, nil)
	require.NoError(t, err)

	p := NewProcessor(jobs, sheets, fixedRecognizer{text: sampleSheet, conf: 0.9}, asm, nil)

	_, err = p.Process(context.Background(), "/scans/notes.pdf")
	require.Error(t, err)
	assert.Empty(t, jobs.jobs)
	assert.Empty(t, sheets.sheets)
}

func TestProcessorIncompleteSheetIsStoredForReview(t *testing.T) {
	jobs := newMemScanJobs()
	sheets := newMemJobSheets()
	asm, err := extract.NewAssembler(nil, nil)
	require.NoError(t, err)

	// No phone anywhere in the text.
	degraded := "Customer: Jane Doe\nBike: Giant Talon\nLabor: $50"
	p := NewProcessor(jobs, sheets, fixedRecognizer{text: degraded, conf: 0.4}, asm, nil)

	res, err := p.Process(context.Background(), "/scans/sheet-003.jpeg")
	require.NoError(t, err)

	sheet, err := sheets.GetByID(context.Background(), res.JobSheetID)
	require.NoError(t, err)
	assert.Equal(t, constants.DraftStatusIncomplete, sheet.Status)
	assert.True(t, sheet.NeedsReview)
	assert.Equal(t, "Unknown phone", sheet.CustomerPhone)
	assert.Equal(t, 50.0, sheet.TotalCost)
}

func TestParseFieldsRequiresRecognizedText(t *testing.T) {
	jobs := newMemScanJobs()
	sheets := newMemJobSheets()
	asm, err := extract.NewAssembler(nil, nil)
	require.NoError(t, err)

	job, err := jobs.Start(context.Background(), "/scans/sheet-004.jpg")
	require.NoError(t, err)

	pf := NewParseFieldsPipeline(jobs, sheets, asm, nil)
	_, err = pf.Run(context.Background(), job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
}
