package searchindex

import (
	"context"

	"github.com/google/uuid"
)

// NoteIndex is the search-capable store behind the notes list. It supports
// equality and range filters, free-text matching on the title, and span
// level highlight metadata for matched titles.
type NoteIndex interface {
	// Index upserts one document keyed by its note id.
	Index(ctx context.Context, doc NoteDocument) error
	// Delete removes a document; deleting an unknown id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	// Search evaluates the filter conjunctively, sorted newest-first with a
	// stable id tiebreak, and returns up to limit hits starting at offset.
	// Errors propagate unchanged; Search never retries.
	Search(ctx context.Context, filter []Clause, offset, limit int) ([]SearchHit, error)
	Close() error
}
