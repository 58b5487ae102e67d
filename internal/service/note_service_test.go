package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"marknotes-be/internal/dto"
	"marknotes-be/pkg/render"
	"marknotes-be/pkg/searchindex"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteServiceFixture struct {
	store     *fakeStore
	publisher *collectingPublisher
	index     searchindex.NoteIndex
	pdf       *stubPDFEngine
	service   INoteService
}

func newNoteServiceFixture(t *testing.T) *noteServiceFixture {
	t.Helper()

	index, err := searchindex.NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	store := newFakeStore()
	publisher := &collectingPublisher{}
	pdf := &stubPDFEngine{output: []byte("%PDF-1.7 stub")}

	svc := NewNoteService(
		store.Factory(),
		publisher,
		index,
		render.NewRenderer(),
		pdf,
		nil, // events are optional
		20,
		nopLogger{},
	)

	return &noteServiceFixture{
		store:     store,
		publisher: publisher,
		index:     index,
		pdf:       pdf,
		service:   svc,
	}
}

// indexAll pushes the current note table into the search index, standing in
// for the async consumer.
func (f *noteServiceFixture) indexAll(t *testing.T) {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, note := range f.store.notes {
		err := f.index.Index(context.Background(), searchindex.NoteDocument{
			Id:         note.Id,
			OwnerId:    note.UserId,
			Title:      note.Title,
			IsArchived: note.IsArchived,
			CreatedAt:  note.CreatedAt,
		})
		require.NoError(t, err)
	}
}

func TestCreatePersistsAndPublishesIndexMessage(t *testing.T) {
	f := newNoteServiceFixture(t)
	owner := uuid.New()

	res, err := f.service.Create(context.Background(), owner, &dto.CreateNoteRequest{
		Title: "Shopping",
		Text:  "- milk\n- eggs",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	stored := f.store.notes[res.Id]
	assert.Equal(t, owner, stored.UserId)
	assert.Equal(t, "Shopping", stored.Title)
	assert.False(t, stored.IsArchived)

	require.Equal(t, 1, f.publisher.count())
	var msg dto.IndexNoteMessage
	require.NoError(t, json.Unmarshal(f.publisher.payloads[0], &msg))
	assert.Equal(t, res.Id, msg.NoteId)
}

func TestShowRendersHTML(t *testing.T) {
	f := newNoteServiceFixture(t)
	owner := uuid.New()

	created, err := f.service.Create(context.Background(), owner, &dto.CreateNoteRequest{
		Title: "Readme",
		Text:  "# Hello\n\nSome **bold** text.",
	})
	require.NoError(t, err)

	res, err := f.service.Show(context.Background(), owner, created.Id)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "# Hello\n\nSome **bold** text.", res.Text)
	assert.Contains(t, res.Html, "<h1")
	assert.Contains(t, res.Html, "<strong>bold</strong>")
}

func TestShowIsOwnerScoped(t *testing.T) {
	f := newNoteServiceFixture(t)
	ownerA := uuid.New()
	ownerB := uuid.New()

	created, err := f.service.Create(context.Background(), ownerA, &dto.CreateNoteRequest{Title: "Private"})
	require.NoError(t, err)

	res, err := f.service.Show(context.Background(), ownerB, created.Id)
	require.NoError(t, err)
	assert.Nil(t, res, "another user's note must read as not found")
}

func TestUpdateNotFound(t *testing.T) {
	f := newNoteServiceFixture(t)

	res, err := f.service.Update(context.Background(), uuid.New(), &dto.UpdateNoteRequest{
		Id:    uuid.New(),
		Title: "Anything",
	})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 0, f.publisher.count())
}

func TestUpdateRepublishesIndexMessage(t *testing.T) {
	f := newNoteServiceFixture(t)
	owner := uuid.New()

	created, err := f.service.Create(context.Background(), owner, &dto.CreateNoteRequest{Title: "Before"})
	require.NoError(t, err)

	res, err := f.service.Update(context.Background(), owner, &dto.UpdateNoteRequest{
		Id:    created.Id,
		Title: "After",
		Text:  "new text",
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	stored := f.store.notes[created.Id]
	assert.Equal(t, "After", stored.Title)
	assert.NotNil(t, stored.UpdatedAt)
	assert.Equal(t, 2, f.publisher.count())
}

func TestArchiveRoundTrip(t *testing.T) {
	f := newNoteServiceFixture(t)
	owner := uuid.New()

	created, err := f.service.Create(context.Background(), owner, &dto.CreateNoteRequest{Title: "Old stuff"})
	require.NoError(t, err)

	found, err := f.service.SetArchived(context.Background(), owner, created.Id, true)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, f.store.notes[created.Id].IsArchived)

	found, err = f.service.SetArchived(context.Background(), owner, created.Id, false)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, f.store.notes[created.Id].IsArchived)

	found, err = f.service.SetArchived(context.Background(), owner, uuid.New(), true)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteRemovesRowAndPublishes(t *testing.T) {
	f := newNoteServiceFixture(t)
	owner := uuid.New()

	created, err := f.service.Create(context.Background(), owner, &dto.CreateNoteRequest{Title: "Doomed"})
	require.NoError(t, err)

	found, err := f.service.Delete(context.Background(), owner, created.Id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotContains(t, f.store.notes, created.Id)
	assert.Equal(t, 2, f.publisher.count())

	// Second delete reads as not found.
	found, err = f.service.Delete(context.Background(), owner, created.Id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteArchivedOnlyTouchesOwnArchive(t *testing.T) {
	f := newNoteServiceFixture(t)
	ctx := context.Background()
	ownerA := uuid.New()
	ownerB := uuid.New()

	var archivedIds []uuid.UUID
	for i := 0; i < 3; i++ {
		created, err := f.service.Create(ctx, ownerA, &dto.CreateNoteRequest{Title: fmt.Sprintf("Archived %d", i)})
		require.NoError(t, err)
		_, err = f.service.SetArchived(ctx, ownerA, created.Id, true)
		require.NoError(t, err)
		archivedIds = append(archivedIds, created.Id)
	}

	active, err := f.service.Create(ctx, ownerA, &dto.CreateNoteRequest{Title: "Still active"})
	require.NoError(t, err)

	otherCreated, err := f.service.Create(ctx, ownerB, &dto.CreateNoteRequest{Title: "Other archive"})
	require.NoError(t, err)
	_, err = f.service.SetArchived(ctx, ownerB, otherCreated.Id, true)
	require.NoError(t, err)

	count, err := f.service.DeleteArchived(ctx, ownerA)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	for _, id := range archivedIds {
		assert.NotContains(t, f.store.notes, id)
	}
	assert.Contains(t, f.store.notes, active.Id)
	assert.Contains(t, f.store.notes, otherCreated.Id)
}

func TestListSearchHighlightsAndPagination(t *testing.T) {
	f := newNoteServiceFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	base := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		note, err := f.service.Create(ctx, owner, &dto.CreateNoteRequest{Title: fmt.Sprintf("Note %d", i)})
		require.NoError(t, err)
		// Spread creation times so ordering is deterministic.
		stored := f.store.notes[note.Id]
		stored.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		f.store.notes[note.Id] = stored
	}
	catNote, err := f.service.Create(ctx, owner, &dto.CreateNoteRequest{Title: "My Cat Notes"})
	require.NoError(t, err)
	f.indexAll(t)

	t.Run("paginates with lookahead", func(t *testing.T) {
		res, err := f.service.List(ctx, owner, "", "", 1)
		require.NoError(t, err)
		assert.Len(t, res.Data, 20)
		assert.True(t, res.HasMore)

		res, err = f.service.List(ctx, owner, "", "", 2)
		require.NoError(t, err)
		assert.Len(t, res.Data, 6)
		assert.False(t, res.HasMore)
	})

	t.Run("search stitches highlights", func(t *testing.T) {
		res, err := f.service.List(ctx, owner, "", "cat", 1)
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, catNote.Id, res.Data[0].Id)
		require.NotNil(t, res.Data[0].Highlights)
		assert.Equal(t, "My <mark>Cat</mark> Notes", *res.Data[0].Highlights)
	})

	t.Run("browse rows carry no highlights", func(t *testing.T) {
		res, err := f.service.List(ctx, owner, "", "", 1)
		require.NoError(t, err)
		for _, row := range res.Data {
			assert.Nil(t, row.Highlights)
		}
	})

	t.Run("malformed age fails closed", func(t *testing.T) {
		_, err := f.service.List(ctx, owner, "yesterday", "", 1)
		assert.Error(t, err)
	})
}

func TestListArchiveView(t *testing.T) {
	f := newNoteServiceFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	active, err := f.service.Create(ctx, owner, &dto.CreateNoteRequest{Title: "Active"})
	require.NoError(t, err)
	archived, err := f.service.Create(ctx, owner, &dto.CreateNoteRequest{Title: "Archived"})
	require.NoError(t, err)
	_, err = f.service.SetArchived(ctx, owner, archived.Id, true)
	require.NoError(t, err)
	f.indexAll(t)

	res, err := f.service.List(ctx, owner, "archive", "", 1)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, archived.Id, res.Data[0].Id)

	res, err = f.service.List(ctx, owner, "", "", 1)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, active.Id, res.Data[0].Id)
}

func TestExportPDF(t *testing.T) {
	f := newNoteServiceFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := f.service.Create(ctx, owner, &dto.CreateNoteRequest{
		Title: "Report",
		Text:  "# Report\n\ncontent",
	})
	require.NoError(t, err)

	doc, err := f.service.ExportPDF(ctx, owner, created.Id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, fmt.Sprintf("note_%s.pdf", created.Id), doc.FileName)
	assert.Equal(t, f.pdf.output, doc.Data)
	assert.Equal(t, 1, f.pdf.renders)
}

func TestExportPDFNotFoundSkipsEngine(t *testing.T) {
	f := newNoteServiceFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	doc, err := f.service.ExportPDF(ctx, owner, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 0, f.pdf.renders, "engine must not run for a missing note")

	// Same for a note owned by someone else.
	other, err := f.service.Create(ctx, uuid.New(), &dto.CreateNoteRequest{Title: "Foreign"})
	require.NoError(t, err)

	doc, err = f.service.ExportPDF(ctx, owner, other.Id)
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 0, f.pdf.renders)
}
