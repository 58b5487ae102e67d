package search

import "marknotes-be/pkg/searchindex"

// Paginate trims an over-fetched result back to the page size and reports
// whether the lookahead row proved another page exists. Order is preserved.
func Paginate(hits []searchindex.SearchHit, pageSize int) ([]searchindex.SearchHit, bool) {
	if len(hits) > pageSize {
		return hits[:pageSize], true
	}
	return hits, false
}
