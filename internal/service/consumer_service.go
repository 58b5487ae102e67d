package service

import (
	"context"
	"encoding/json"

	"marknotes-be/internal/dto"
	"marknotes-be/internal/pkg/logger"
	"marknotes-be/internal/repository/specification"
	"marknotes-be/internal/repository/unitofwork"
	"marknotes-be/pkg/searchindex"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService keeps the search index in step with the notes table.
// Mutations publish the note id; the consumer re-reads the row and either
// upserts the index document or removes it when the note no longer exists.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	index      searchindex.NoteIndex
	log        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	index searchindex.NoteIndex,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		index:      index,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IndexNoteMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("indexer", "failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	// Global lookup: the owner filter was already enforced by the mutation
	// that published this message.
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: payload.NoteId})
	if err != nil {
		cs.log.Error("indexer", "failed to load note", map[string]interface{}{
			"note_id": payload.NoteId,
			"error":   err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	if note == nil {
		// Note was deleted; drop its index entry.
		if err := cs.index.Delete(ctx, payload.NoteId); err != nil {
			cs.log.Error("indexer", "failed to remove index entry", map[string]interface{}{
				"note_id": payload.NoteId,
				"error":   err.Error(),
			})
			msg.Nack()
			return
		}
		msg.Ack()
		return
	}

	err = cs.index.Index(ctx, searchindex.NoteDocument{
		Id:         note.Id,
		OwnerId:    note.UserId,
		Title:      note.Title,
		IsArchived: note.IsArchived,
		CreatedAt:  note.CreatedAt,
	})
	if err != nil {
		cs.log.Error("indexer", "failed to index note", map[string]interface{}{
			"note_id": payload.NoteId,
			"error":   err.Error(),
		})
		msg.Nack()
		return
	}

	msg.Ack()
}
