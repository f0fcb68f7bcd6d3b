package spool

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobase/jobsheet-tracker/constants"
)

func openTestSpool(t *testing.T) *Spool {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "spool.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSpoolEnqueueAndClaim(t *testing.T) {
	s := openTestSpool(t)
	ctx := context.Background()

	id1, err := s.Enqueue(ctx, "/photos/sheet1.jpg")
	require.NoError(t, err)
	_, err = s.Enqueue(ctx, "/photos/sheet2.jpg")
	require.NoError(t, err)

	e, err := s.NextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, id1, e.ID)
	assert.Equal(t, "/photos/sheet1.jpg", e.Path)
	assert.Equal(t, constants.ScanStatusRunning, e.Status)

	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestSpoolEmptyReturnsNil(t *testing.T) {
	s := openTestSpool(t)

	e, err := s.NextPending(context.Background())
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestSpoolMarkDoneRemovesEntry(t *testing.T) {
	s := openTestSpool(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, "/photos/sheet.jpg")
	require.NoError(t, err)
	_, err = s.NextPending(ctx)
	require.NoError(t, err)

	require.NoError(t, s.MarkDone(ctx, id))
	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSpoolMarkFailedKeepsEntryForInspection(t *testing.T) {
	s := openTestSpool(t)
	ctx := context.Background()

	id, err := s.Enqueue(ctx, "/photos/sheet.jpg")
	require.NoError(t, err)
	_, err = s.NextPending(ctx)
	require.NoError(t, err)
	require.NoError(t, s.MarkFailed(ctx, id, "tesseract exited 1"))

	// failed entries are out of the pending set but not deleted
	pending, err := s.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	next, err := s.NextPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, next)
}

// Stored timestamps are compared lexicographically by SQLite, so formatting
// must be fixed-width: a whole-second timestamp has to sort before any
// fractional timestamp later in the same second.
func TestSpoolTimeFormatOrdersLexicographically(t *testing.T) {
	whole := time.Date(2023, 6, 27, 10, 0, 5, 0, time.UTC)
	fractional := whole.Add(500 * time.Millisecond)

	a, b := formatSpoolTime(whole), formatSpoolTime(fractional)
	assert.Len(t, a, len(b))
	assert.Less(t, a, b)

	// round-trips through the lenient parser used on read
	parsed, err := time.Parse(time.RFC3339Nano, a)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(whole))
}

func TestSpoolClaimsOldestAcrossSecondBoundary(t *testing.T) {
	s := openTestSpool(t)
	ctx := context.Background()

	base := time.Date(2023, 6, 27, 10, 0, 4, 500_000_000, time.UTC)
	insert := func(id uuid.UUID, path string, at time.Time) {
		ts := formatSpoolTime(at)
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO scan_spool (id, path, status, enqueued_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			id.String(), path, string(constants.ScanStatusQueued), ts, ts,
		)
		require.NoError(t, err)
	}

	older := uuid.New()
	insert(older, "/photos/older.jpg", base)                          // 10:00:04.5
	insert(uuid.New(), "/photos/newer.jpg", base.Add(500*time.Millisecond)) // 10:00:05 exactly

	e, err := s.NextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, older, e.ID)
}

func TestSpoolRequeueStale(t *testing.T) {
	s := openTestSpool(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, "/photos/sheet.jpg")
	require.NoError(t, err)
	_, err = s.NextPending(ctx)
	require.NoError(t, err)

	// nothing is stale yet
	n, err := s.RequeueStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	// with a zero cutoff everything RUNNING counts as stale
	time.Sleep(5 * time.Millisecond)
	n, err = s.RequeueStale(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	e, err := s.NextPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, e)
}
