package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobase/jobsheet-tracker/internal/extract"
)

func newTestWorkflow(t *testing.T, rec *stubRecognizer) *Workflow {
	t.Helper()
	asm, err := extract.NewAssembler(nil, nil)
	require.NoError(t, err)
	return NewWorkflow(NewPool(rec, 1, nil), asm, 0, nil)
}

func TestWorkflowProcessImage(t *testing.T) {
	rec := &stubRecognizer{text: "Customer: Ann\nPhone: 0411\nBike: BMX\nLabor: $30\nParts: $12"}
	w := newTestWorkflow(t, rec)

	res, recRes, err := w.ProcessImage(context.Background(), "sheet.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Ann", res.Draft.CustomerName)
	assert.Equal(t, 42.0, res.Draft.TotalCost)
	assert.True(t, res.Complete())
	assert.Equal(t, float32(0.9), recRes.Confidence)

	// With a single worker, a second pass proves the slot was released
	// before extraction ran on the first.
	_, _, err = w.ProcessImage(context.Background(), "sheet2.jpg")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.calls)
}

func TestWorkflowRecognitionFailureAbortsBeforeExtraction(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("no text")}
	w := newTestWorkflow(t, rec)

	_, _, err := w.ProcessImage(context.Background(), "sheet.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recognize")
}

func TestWorkflowDegradedTextStillExtracts(t *testing.T) {
	// Garbage text is opaque input, not an error: the draft is fully
	// defaulted and flagged incomplete instead.
	rec := &stubRecognizer{text: "%%% ~~ illegible ~~ %%%"}
	w := newTestWorkflow(t, rec)

	res, _, err := w.ProcessImage(context.Background(), "sheet.jpg")
	require.NoError(t, err)
	assert.False(t, res.Complete())
	assert.Equal(t, "Unknown customer", res.Draft.CustomerName)
}
