package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json"}, &buf)

	l.Info("extract.pattern.ok")
	assert.Zero(t, buf.Len())

	l.Warn("extract.fallback", "primary", "llm:openai")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "extract.fallback", entry["msg"])
	assert.Equal(t, "llm:openai", entry["primary"])
}

func TestFrom_AddsContextIDs(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "text"}, &buf)

	ctx := common.WithJobID(common.WithRequestID(context.Background(), "req-7"), "job-3")
	From(ctx, base).Info("pipeline.done")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-7")
	assert.Contains(t, out, "job_id=job-3")
	assert.Contains(t, out, "msg=pipeline.done")
}
