package searchindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
)

// BleveNoteIndex implements NoteIndex on an embedded bleve inverted index.
type BleveNoteIndex struct {
	idx bleve.Index
}

func buildIndexMapping() mapping.IndexMapping {
	noteMapping := bleve.NewDocumentMapping()

	// Owner ids are opaque tokens, matched whole.
	ownerField := bleve.NewTextFieldMapping()
	ownerField.Analyzer = keyword.Name
	ownerField.IncludeInAll = false
	noteMapping.AddFieldMappingsAt(FieldOwnerID, ownerField)

	archivedField := bleve.NewBooleanFieldMapping()
	archivedField.IncludeInAll = false
	noteMapping.AddFieldMappingsAt(FieldIsArchived, archivedField)

	// Unix millis; doc values drive the newest-first sort.
	createdField := bleve.NewNumericFieldMapping()
	createdField.Store = true
	createdField.IncludeInAll = false
	noteMapping.AddFieldMappingsAt(FieldCreated, createdField)

	// Term vectors are required for span-level highlight locations.
	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.IncludeTermVectors = true
	noteMapping.AddFieldMappingsAt(FieldTitle, titleField)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = noteMapping
	return m
}

// Open opens the index at path, creating it on first use.
func Open(path string) (*BleveNoteIndex, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index at %s: %w", path, err)
	}
	return &BleveNoteIndex{idx: idx}, nil
}

// NewInMemory builds a transient index, used by tests and tooling.
func NewInMemory() (*BleveNoteIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &BleveNoteIndex{idx: idx}, nil
}

func (b *BleveNoteIndex) Index(_ context.Context, doc NoteDocument) error {
	return b.idx.Index(doc.Id.String(), map[string]interface{}{
		FieldOwnerID:    doc.OwnerId.String(),
		FieldIsArchived: doc.IsArchived,
		FieldCreated:    doc.CreatedAt.UnixMilli(),
		FieldTitle:      doc.Title,
	})
}

func (b *BleveNoteIndex) Delete(_ context.Context, id uuid.UUID) error {
	return b.idx.Delete(id.String())
}

func (b *BleveNoteIndex) Search(ctx context.Context, filter []Clause, offset, limit int) ([]SearchHit, error) {
	q, err := translate(filter)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.SortBy([]string{"-" + FieldCreated, "_id"})
	req.Fields = []string{FieldTitle, FieldCreated}
	req.IncludeLocations = true

	res, err := b.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			return nil, fmt.Errorf("search index returned malformed document id %q: %w", h.ID, err)
		}

		title, _ := h.Fields[FieldTitle].(string)
		createdMillis, _ := h.Fields[FieldCreated].(float64)

		hit := SearchHit{
			Id:        id,
			Title:     title,
			CreatedAt: time.UnixMilli(int64(createdMillis)).UTC(),
		}
		if locations, ok := h.Locations[FieldTitle]; ok {
			if spans := titleSpans(title, locations); spans != nil {
				hit.Highlights = [][]HighlightSpan{spans}
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (b *BleveNoteIndex) Close() error {
	return b.idx.Close()
}

func translate(filter []Clause) (query.Query, error) {
	if len(filter) == 0 {
		// An unscoped search would cross owner boundaries; refuse it.
		return nil, errors.New("refusing to search with an empty filter")
	}

	conjuncts := make([]query.Query, 0, len(filter))
	for _, c := range filter {
		switch cl := c.(type) {
		case EqualsClause:
			switch v := cl.Value.(type) {
			case string:
				q := query.NewTermQuery(v)
				q.SetField(cl.Path)
				conjuncts = append(conjuncts, q)
			case bool:
				q := query.NewBoolFieldQuery(v)
				q.SetField(cl.Path)
				conjuncts = append(conjuncts, q)
			default:
				return nil, fmt.Errorf("unsupported equals value type %T for field %s", v, cl.Path)
			}
		case RangeClause:
			lower := float64(cl.GTE)
			inclusive := true
			q := query.NewNumericRangeInclusiveQuery(&lower, nil, &inclusive, nil)
			q.SetField(cl.Path)
			conjuncts = append(conjuncts, q)
		case TextClause:
			q := query.NewMatchQuery(cl.Query)
			q.SetField(cl.Path)
			conjuncts = append(conjuncts, q)
		default:
			return nil, fmt.Errorf("unsupported clause type %T", c)
		}
	}
	return query.NewConjunctionQuery(conjuncts), nil
}

// titleSpans converts bleve term locations into an ordered hit/text span
// sequence that reassembles to the exact title.
func titleSpans(title string, locations search.TermLocationMap) []HighlightSpan {
	type region struct{ start, end int }

	regions := make([]region, 0, 4)
	for _, locs := range locations {
		for _, loc := range locs {
			s, e := int(loc.Start), int(loc.End)
			if s < 0 || e > len(title) || s >= e {
				continue
			}
			regions = append(regions, region{start: s, end: e})
		}
	}
	if len(regions) == 0 {
		return nil
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].start == regions[j].start {
			return regions[i].end > regions[j].end
		}
		return regions[i].start < regions[j].start
	})

	// Merge overlapping matches so spans never repeat title bytes.
	merged := []region{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.start <= last.end {
			if r.end > last.end {
				last.end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}

	spans := make([]HighlightSpan, 0, 2*len(merged)+1)
	prev := 0
	for _, r := range merged {
		if r.start > prev {
			spans = append(spans, HighlightSpan{Type: SpanText, Value: title[prev:r.start]})
		}
		spans = append(spans, HighlightSpan{Type: SpanHit, Value: title[r.start:r.end]})
		prev = r.end
	}
	if prev < len(title) {
		spans = append(spans, HighlightSpan{Type: SpanText, Value: title[prev:]})
	}
	return spans
}
