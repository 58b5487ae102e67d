package searchindex

import (
	"time"

	"github.com/google/uuid"
)

// Field names of the note search schema.
const (
	FieldOwnerID    = "owner_id"
	FieldIsArchived = "is_archived"
	FieldCreated    = "created"
	FieldTitle      = "title"
)

// Clause is one conjunct of a search filter. Clauses are engine-agnostic;
// the index implementation translates them into its native query form.
// Evaluation is always conjunctive (AND), independent of clause order.
type Clause interface {
	clause()
}

// EqualsClause matches documents whose field equals Value exactly.
// Supported value types are string and bool.
type EqualsClause struct {
	Path  string
	Value interface{}
}

// RangeClause matches documents whose numeric field is >= GTE.
type RangeClause struct {
	Path string
	GTE  int64
}

// TextClause matches documents whose analyzed text field contains Query.
type TextClause struct {
	Path  string
	Query string
}

func (EqualsClause) clause() {}
func (RangeClause) clause()  {}
func (TextClause) clause()   {}

type SpanType string

const (
	// SpanHit marks a substring matched by the text query.
	SpanHit SpanType = "hit"
	// SpanText marks surrounding context emitted verbatim.
	SpanText SpanType = "text"
)

// HighlightSpan is one fragment of a highlighted field, in left-to-right
// document order.
type HighlightSpan struct {
	Type  SpanType `json:"type"`
	Value string   `json:"value"`
}

// SearchHit is one raw result row. Highlights holds zero or more highlight
// entries for the title field; each entry is an ordered span sequence that
// reassembles to the full title.
type SearchHit struct {
	Id         uuid.UUID
	Title      string
	CreatedAt  time.Time
	Highlights [][]HighlightSpan
}

// NoteDocument is the indexed projection of a note. The markdown body is
// deliberately absent: only titles are searched.
type NoteDocument struct {
	Id         uuid.UUID
	OwnerId    uuid.UUID
	Title      string
	IsArchived bool
	CreatedAt  time.Time
}
