package entity

import (
	"time"

	"github.com/google/uuid"
)

// StoredInvoice is a persisted extraction result.
type StoredInvoice struct {
	ID          uuid.UUID         `json:"id"`
	JobID       *uuid.UUID        `json:"job_id,omitempty"`
	SourceName  string            `json:"source_name"`
	ContentHash string            `json:"content_hash"`
	Extractor   string            `json:"extractor"`
	CreatedAt   time.Time         `json:"created_at"`
	Text        string            `json:"-"` // normalized source text, kept for follow-up questions
	Record      *ExtractedInvoice `json:"record"`
}
