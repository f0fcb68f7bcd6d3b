package scan

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velobase/jobsheet-tracker/internal/ocr"
)

type stubRecognizer struct {
	mu        sync.Mutex
	active    int
	maxActive int
	calls     int
	block     chan struct{}
	text      string
	err       error
}

func (r *stubRecognizer) Recognize(ctx context.Context, _ string) (ocr.RecognitionResult, error) {
	r.mu.Lock()
	r.active++
	r.calls++
	if r.active > r.maxActive {
		r.maxActive = r.active
	}
	r.mu.Unlock()

	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
		}
	}

	r.mu.Lock()
	r.active--
	r.mu.Unlock()

	if r.err != nil {
		return ocr.RecognitionResult{}, r.err
	}
	return ocr.RecognitionResult{Text: r.text, Confidence: 0.9}, nil
}

func TestPoolBoundsConcurrentRecognitions(t *testing.T) {
	rec := &stubRecognizer{block: make(chan struct{})}
	pool := NewPool(rec, 2, nil)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Recognize(context.Background(), "sheet.jpg")
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(rec.block)
	wg.Wait()

	assert.LessOrEqual(t, rec.maxActive, 2)
	assert.Equal(t, 5, rec.calls)
}

func TestPoolReleasesSlotOnFailure(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("ocr exploded")}
	pool := NewPool(rec, 1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// If the slot leaked after the first failure, the second call would hang.
	_, err := pool.Recognize(ctx, "a.jpg")
	require.ErrorContains(t, err, "ocr exploded")
	_, err = pool.Recognize(ctx, "b.jpg")
	require.ErrorContains(t, err, "ocr exploded")
	assert.Equal(t, 2, rec.calls)
}

func TestPoolAcquireRespectsCancellation(t *testing.T) {
	rec := &stubRecognizer{block: make(chan struct{})}
	pool := NewPool(rec, 1, nil)

	started := make(chan struct{})
	go func() {
		close(started)
		_, _ = pool.Recognize(context.Background(), "busy.jpg")
	}()
	<-started
	time.Sleep(20 * time.Millisecond) // let the first call take the slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.Recognize(ctx, "waiting.jpg")
	assert.ErrorIs(t, err, context.Canceled)

	close(rec.block)
}
