package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title string `json:"title" validate:"required,max=255"`
	Text  string `json:"text"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// NoteSummary is a single row of the list/search result. Highlights is only
// set when the search engine produced an unambiguous highlight for the title;
// it then contains the title with matches wrapped in <mark> tags.
type NoteSummary struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Created    time.Time `json:"created"`
	Highlights *string   `json:"highlights,omitempty"`
}

type ListNotesResponse struct {
	Data    []NoteSummary `json:"data"`
	HasMore bool          `json:"has_more"`
}

type ShowNoteResponse struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Html       string    `json:"html"`
	IsArchived bool      `json:"is_archived"`
	Created    time.Time `json:"created"`
}

type UpdateNoteRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,max=255"`
	Text  string `json:"text"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type DeleteArchivedResponse struct {
	Deleted int64 `json:"deleted"`
}

// NoteDocument is a rendered PDF export of one note.
type NoteDocument struct {
	FileName string
	Data     []byte
}

// IndexNoteMessage asks the consumer to reconcile one note with the search
// index. The consumer re-reads the note: present means upsert, absent means
// the index entry is removed.
type IndexNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
