package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks for one file to be processed.
type Job struct {
	Path        string
	Force       bool // reprocess even if identical content was stored
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
