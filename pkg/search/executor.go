package search

import (
	"context"

	"marknotes-be/pkg/searchindex"
)

// Execute fetches one page of hits plus a single lookahead row, so the
// caller can detect a further page without a count query. page is
// 1-indexed; values below 1 are clamped to the first page. Index errors
// propagate unchanged.
func Execute(ctx context.Context, index searchindex.NoteIndex, filter []searchindex.Clause, page, pageSize int) ([]searchindex.SearchHit, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	return index.Search(ctx, filter, offset, pageSize+1)
}
