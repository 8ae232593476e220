// Package document defines the source document passed from fetchers and
// parsers into the ingestion pipeline.
package document

import "fmt"

// Document is one unit of source documentation before normalization.
type Document struct {
	ID          string // stable identifier, used to derive chunk ids
	Title       string
	URL         string // empty for local files
	ContentHTML string
}

// ChunkID derives the vector-store id for chunk index i of this document.
func (d Document) ChunkID(i int) string {
	return fmt.Sprintf("%s#c%d", d.ID, i)
}
