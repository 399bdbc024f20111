package timeline

import (
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
)

// Corpus reads the loaded documents in corpus order.
type Corpus interface {
	All() ([]domdoc.Document, error)
}
