package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// InvoiceExtractor turns raw document text into an assembled record.
type InvoiceExtractor interface {
	Name() string
	Extract(ctx context.Context, text string) (*entity.ExtractedInvoice, error)
}

// ErrUnavailable marks a failure of an external extractor that a caller may
// recover from by switching to the pattern path.
var ErrUnavailable = errors.New("extractor unavailable")

// UnavailableError carries the provider and reason behind ErrUnavailable.
type UnavailableError struct {
	Provider string
	Reason   string
	Cause    error
}

func (e *UnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unavailable: %s: %v", e.Provider, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s unavailable: %s", e.Provider, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrUnavailable) match without wrapping the sentinel.
func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Unavailable builds an *UnavailableError.
func Unavailable(provider, reason string, cause error) error {
	return &UnavailableError{Provider: provider, Reason: reason, Cause: cause}
}

// IsUnavailable reports whether err should trigger the fallback path.
// Context cancellation and deadline errors never do.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrUnavailable)
}
