package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractJob represents an extract job for data transfer between layers.
type ExtractJob struct {
	ID           uuid.UUID  `json:"id"`
	SourceName   string     `json:"source_name"`
	ContentHash  string     `json:"content_hash"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	Extractor    *string    `json:"extractor,omitempty"`
	InvoiceID    *uuid.UUID `json:"invoice_id,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}
