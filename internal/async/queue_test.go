package async

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

type recordingProcessor struct {
	mu      sync.Mutex
	paths   []string
	reqIDs  []string
	started chan struct{}
	block   chan struct{}
	failFor string
}

func (r *recordingProcessor) ProcessFile(ctx context.Context, path string, force bool) (*pipeline.Outcome, error) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.reqIDs = append(r.reqIDs, common.RequestIDFromContext(ctx))
	r.mu.Unlock()
	if path == r.failFor {
		return nil, errors.New("boom")
	}
	return &pipeline.Outcome{Reused: force}, nil
}

func (r *recordingProcessor) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestProcessorQueue_ProcessesAndDrains(t *testing.T) {
	proc := &recordingProcessor{failFor: "/inbox/bad.pdf"}
	var (
		mu      sync.Mutex
		results = map[string]error{}
	)
	q := NewProcessorQueue(proc, nil,
		WithWorkers(3),
		WithQueueSize(8),
		WithResultHook(func(job Job, _ *pipeline.Outcome, err error) {
			mu.Lock()
			results[job.Path] = err
			mu.Unlock()
		}),
	)

	ctx := context.Background()
	for _, p := range []string{"/inbox/a.pdf", "/inbox/b.txt", "/inbox/bad.pdf"} {
		require.NoError(t, q.Enqueue(ctx, Job{Path: p, RequestID: "req-" + p}))
	}
	q.Shutdown(ctx)

	assert.ElementsMatch(t, []string{"/inbox/a.pdf", "/inbox/b.txt", "/inbox/bad.pdf"}, proc.seen())
	assert.Contains(t, proc.reqIDs, "req-/inbox/a.pdf")
	require.Len(t, results, 3)
	assert.NoError(t, results["/inbox/a.pdf"])
	assert.Error(t, results["/inbox/bad.pdf"])

	assert.ErrorIs(t, q.Enqueue(ctx, Job{Path: "/inbox/late.pdf"}), ErrQueueClosed)
	q.Shutdown(ctx)
}

func TestProcessorQueue_EnqueueRespectsContextWhenFull(t *testing.T) {
	proc := &recordingProcessor{started: make(chan struct{}, 4), block: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Job{Path: "one"}))
	<-proc.started // the only worker is now busy
	require.NoError(t, q.Enqueue(ctx, Job{Path: "two"}))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(short, Job{Path: "three"}), context.DeadlineExceeded)

	close(proc.block)
	q.Shutdown(ctx)
	assert.Equal(t, []string{"one", "two"}, proc.seen())
}

func TestProcessorQueue_ShutdownInterrupted(t *testing.T) {
	proc := &recordingProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "stuck"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	q.Shutdown(ctx)
	assert.Less(t, time.Since(start), time.Second)

	close(proc.block)
}
