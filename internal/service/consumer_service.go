package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"ai-bizops-be/internal/dto"
	"ai-bizops-be/internal/entity"
	"ai-bizops-be/internal/repository"
	"ai-bizops-be/pkg/rag/vectorstore"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	documentRepo repository.DocumentRepository
	store        vectorstore.IVectorStore
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	documentRepo repository.DocumentRepository,
	store vectorstore.IVectorStore,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		documentRepo: documentRepo,
		store:        store,
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
	var payload dto.PersistChunksMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Persisting chunks for document: %s", payload.DocumentId)

	chunks := cs.store.DocumentChunks(payload.DocumentId.String())
	if len(chunks) == 0 {
		// Document deleted before we got here? Ack.
		log.Printf("[WARN] No chunks in index for document %s", payload.DocumentId)
		msg.Ack()
		return
	}

	records := make([]*entity.DocumentChunk, len(chunks))
	for i, chunk := range chunks {
		records[i] = &entity.DocumentChunk{
			Id:         uuid.New(),
			ChunkId:    chunk.ID,
			DocumentId: payload.DocumentId,
			Content:    chunk.Text,
			Embedding:  pgvector.NewVector(chunk.Embedding),
			ChunkIndex: i,
			Page:       chunk.Page,
		}
	}

	if err := cs.documentRepo.CreateChunks(ctx, records); err != nil {
		log.Printf("[ERROR] Failed to persist chunks for document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	log.Printf("[INFO] Persisted %d chunks for document %s", len(records), payload.DocumentId)
	msg.Ack()
}
