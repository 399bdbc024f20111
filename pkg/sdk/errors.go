package astrobio

import "github.com/kailas-cloud/astrobio/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrValidation        = domain.ErrValidation
	ErrCorpusUnavailable = domain.ErrCorpusUnavailable
)
