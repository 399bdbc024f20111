package document

import (
	domdoc "github.com/kailas-cloud/astrobio/internal/domain/document"
)

// Repository is the read-only corpus contract.
type Repository interface {
	All() ([]domdoc.Document, error)
	ByID(id string) (domdoc.Document, error)
}
