package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marknotes-be/internal/dto"
	"marknotes-be/internal/entity"
	"marknotes-be/internal/pkg/logger"
	"marknotes-be/internal/repository/specification"
	"marknotes-be/internal/repository/unitofwork"
	"marknotes-be/pkg/events"
	pktNats "marknotes-be/pkg/nats"
	"marknotes-be/pkg/render"
	"marknotes-be/pkg/search"
	"marknotes-be/pkg/searchindex"

	"github.com/google/uuid"
)

type INoteService interface {
	List(ctx context.Context, userId uuid.UUID, age, searchTerm string, page int) (*dto.ListNotesResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error)
	SetArchived(ctx context.Context, userId uuid.UUID, id uuid.UUID, archived bool) (bool, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (bool, error)
	DeleteArchived(ctx context.Context, userId uuid.UUID) (int64, error)
	ExportPDF(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteDocument, error)
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	index            searchindex.NoteIndex
	renderer         *render.Renderer
	pdfEngine        render.PDFEngine
	eventPublisher   *pktNats.Publisher
	pageSize         int
	log              logger.ILogger
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	index searchindex.NoteIndex,
	renderer *render.Renderer,
	pdfEngine render.PDFEngine,
	eventPublisher *pktNats.Publisher,
	pageSize int,
	log logger.ILogger,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		index:            index,
		renderer:         renderer,
		pdfEngine:        pdfEngine,
		eventPublisher:   eventPublisher,
		pageSize:         pageSize,
		log:              log,
	}
}

// List runs the retrieval pipeline: shape the filter, fetch one page plus
// the lookahead row, stitch highlights per hit, trim to the page size.
func (c *noteService) List(ctx context.Context, userId uuid.UUID, age, searchTerm string, page int) (*dto.ListNotesResponse, error) {
	ageSelector, err := search.ParseAgeSelector(age)
	if err != nil {
		return nil, err
	}

	filter := search.BuildFilter(userId, ageSelector, searchTerm, time.Now())
	raw, err := search.Execute(ctx, c.index, filter, page, c.pageSize)
	if err != nil {
		return nil, err
	}

	hits, hasMore := search.Paginate(raw, c.pageSize)

	data := make([]dto.NoteSummary, 0, len(hits))
	for _, hit := range hits {
		data = append(data, dto.NoteSummary{
			Id:         hit.Id,
			Title:      hit.Title,
			Created:    hit.CreatedAt,
			Highlights: search.Stitch(hit.Highlights),
		})
	}

	return &dto.ListNotesResponse{
		Data:    data,
		HasMore: hasMore,
	}, nil
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note := entity.Note{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      req.Title,
		Text:       req.Text,
		IsArchived: false,
		CreatedAt:  time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	if err := c.publishIndexMessage(ctx, note.Id); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, "NOTE_CREATED", note.Id, userId)

	return &dto.CreateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil // Not found
	}

	html, err := c.renderer.ToHTML(note.Text)
	if err != nil {
		return nil, err
	}

	return &dto.ShowNoteResponse{
		Id:         note.Id,
		Title:      note.Title,
		Text:       note.Text,
		Html:       html,
		IsArchived: note.IsArchived,
		Created:    note.CreatedAt,
	}, nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) (*dto.UpdateNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	now := time.Now()
	note.Title = req.Title
	note.Text = req.Text
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	if err := c.publishIndexMessage(ctx, note.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateNoteResponse{
		Id: note.Id,
	}, nil
}

func (c *noteService) SetArchived(ctx context.Context, userId uuid.UUID, id uuid.UUID, archived bool) (bool, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return false, err
	}
	if note == nil {
		return false, nil
	}

	now := time.Now()
	note.IsArchived = archived
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return false, err
	}

	if err := c.publishIndexMessage(ctx, note.Id); err != nil {
		return false, err
	}

	return true, nil
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) (bool, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return false, err
	}
	if note == nil {
		return false, nil
	}

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return false, err
	}

	// The consumer sees the row is gone and removes the index entry.
	if err := c.publishIndexMessage(ctx, id); err != nil {
		return false, err
	}

	c.publishEvent(ctx, "NOTE_DELETED", id, userId)

	return true, nil
}

func (c *noteService) DeleteArchived(ctx context.Context, userId uuid.UUID) (int64, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	archived, err := uow.NoteRepository().FindAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ArchivedIs{Value: true},
	)
	if err != nil {
		return 0, err
	}

	count, err := uow.NoteRepository().DeleteAll(ctx,
		specification.OwnedByUser{UserID: userId},
		specification.ArchivedIs{Value: true},
	)
	if err != nil {
		return 0, err
	}

	for _, note := range archived {
		if err := c.publishIndexMessage(ctx, note.Id); err != nil {
			return count, err
		}
	}

	return count, nil
}

// ExportPDF renders one note into an A4 document. The rendering engine is
// only called once the owner-scoped lookup succeeded.
func (c *noteService) ExportPDF(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.NoteDocument, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByUser{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	html, err := c.renderer.ToHTML(note.Text)
	if err != nil {
		return nil, err
	}

	pdf, err := c.pdfEngine.RenderPDF(ctx, html)
	if err != nil {
		return nil, err
	}

	return &dto.NoteDocument{
		FileName: fmt.Sprintf("note_%s.pdf", note.Id),
		Data:     pdf,
	}, nil
}

func (c *noteService) publishIndexMessage(ctx context.Context, noteId uuid.UUID) error {
	payload, err := json.Marshal(dto.IndexNoteMessage{NoteId: noteId})
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, payload)
}

// publishEvent forwards a lifecycle event to NATS. The bus is optional and
// auxiliary: failures are logged, never surfaced to the request.
func (c *noteService) publishEvent(ctx context.Context, eventType string, noteId, userId uuid.UUID) {
	if c.eventPublisher == nil {
		return
	}

	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"note_id": noteId,
			"user_id": userId,
		},
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		c.log.Warn("notes", "failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
