package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"marknotes-be/pkg/searchindex"

	"github.com/google/uuid"
)

// ErrInvalidAgeSelector is returned for age values outside the recognized
// vocabulary. Malformed selectors fail closed instead of being read as
// "no time bound".
var ErrInvalidAgeSelector = errors.New("invalid age selector")

// AgeSelector narrows the notes list by archive state and creation age.
// The zero value selects all active notes.
type AgeSelector struct {
	Archive bool
	Months  int // 0 means no time bound
}

// ParseAgeSelector accepts "", "all", "archive" and "<N>month" with N >= 1.
func ParseAgeSelector(raw string) (AgeSelector, error) {
	switch strings.TrimSpace(raw) {
	case "", "all":
		return AgeSelector{}, nil
	case "archive":
		return AgeSelector{Archive: true}, nil
	}

	if prefix, found := strings.CutSuffix(strings.TrimSpace(raw), "month"); found {
		n, err := strconv.Atoi(prefix)
		if err != nil || n < 1 {
			return AgeSelector{}, fmt.Errorf("%w: %q", ErrInvalidAgeSelector, raw)
		}
		return AgeSelector{Months: n}, nil
	}
	return AgeSelector{}, fmt.Errorf("%w: %q", ErrInvalidAgeSelector, raw)
}

// BuildFilter shapes the conjunctive clause set for one notes query. The
// owner and archive equality clauses always come first: they are the
// security boundary, every optional clause only narrows within it.
func BuildFilter(ownerID uuid.UUID, age AgeSelector, term string, now time.Time) []searchindex.Clause {
	filter := []searchindex.Clause{
		searchindex.EqualsClause{Path: searchindex.FieldOwnerID, Value: ownerID.String()},
		searchindex.EqualsClause{Path: searchindex.FieldIsArchived, Value: age.Archive},
	}

	if age.Months > 0 {
		// Calendar-month arithmetic, so a 3 month window evaluated in
		// January reaches back into October of the prior year.
		lower := now.AddDate(0, -age.Months, 0)
		filter = append(filter, searchindex.RangeClause{
			Path: searchindex.FieldCreated,
			GTE:  lower.UnixMilli(),
		})
	}

	// An empty text clause is a broader match than no clause at all in
	// most engines, so blank terms emit nothing.
	if term = strings.TrimSpace(term); term != "" {
		filter = append(filter, searchindex.TextClause{
			Path:  searchindex.FieldTitle,
			Query: term,
		})
	}
	return filter
}
