package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ai-bizops-be/internal/dto"
	"ai-bizops-be/internal/entity"
	"ai-bizops-be/internal/pkg/logger"
	"ai-bizops-be/internal/repository"
	"ai-bizops-be/pkg/agent"
	"ai-bizops-be/pkg/errs"
	"ai-bizops-be/pkg/rag/retriever"
)

type IChatService interface {
	SendQuery(ctx context.Context, req *dto.SendQueryRequest) (*dto.SendQueryResponse, error)
	StreamQuery(ctx context.Context, req *dto.StreamQueryRequest) (<-chan agent.ProgressEvent, string)
	GetHistory(ctx context.Context, conversationId uuid.UUID) ([]*dto.GetHistoryResponse, error)
	ListConversations(ctx context.Context) ([]*dto.ConversationSummaryResponse, error)
	ClearConversation(ctx context.Context, conversationId uuid.UUID) error
}

type chatService struct {
	orchestrator     *agent.Orchestrator
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	log              logger.ILogger
}

func NewChatService(
	orchestrator *agent.Orchestrator,
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	log logger.ILogger,
) IChatService {
	return &chatService{
		orchestrator:     orchestrator,
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		log:              log,
	}
}

func (s *chatService) SendQuery(ctx context.Context, req *dto.SendQueryRequest) (*dto.SendQueryResponse, error) {
	conversationId, err := s.ensureConversation(ctx, req.ConversationId, req.Query)
	if err != nil {
		return nil, err
	}

	result := s.orchestrator.ProcessQuery(ctx, req.Query, conversationId.String(), req.IncludeSources)

	s.persistExchange(ctx, conversationId, req.Query, result)

	res := &dto.SendQueryResponse{
		ConversationId: result.ConversationID,
		Response:       result.Response,
		AgentSteps:     result.AgentSteps,
		Sources:        result.Sources,
		Confidence:     result.Confidence,
	}
	if len(result.Charts) > 0 {
		res.ChartSpec = &result.Charts[0]
	}
	return res, nil
}

// StreamQuery starts the pipeline and returns the event channel plus the
// conversation id the caller should report back to the client. The streamed
// exchange is persisted once the pipeline channel closes.
func (s *chatService) StreamQuery(ctx context.Context, req *dto.StreamQueryRequest) (<-chan agent.ProgressEvent, string) {
	conversationId, err := s.ensureConversation(ctx, req.ConversationId, req.Query)
	if err != nil {
		s.log.Error("chat_service", "failed to ensure conversation", map[string]any{"error": err})
		// Let the pipeline run anyway; the exchange just won't be persisted.
		conversationId = uuid.New()
	}

	events := s.orchestrator.ProcessQueryStream(ctx, req.Query, conversationId.String())

	out := make(chan agent.ProgressEvent, 16)
	go func() {
		defer close(out)

		var full strings.Builder
		result := agent.Response{ConversationID: conversationId.String()}
		for event := range events {
			switch event.Type {
			case "response_chunk":
				full.WriteString(event.Content)
			case "response_end":
				result.Sources = event.Sources
			}
			out <- event
		}
		result.Response = full.String()
		s.persistExchange(ctx, conversationId, req.Query, &result)
	}()

	return out, conversationId.String()
}

func (s *chatService) GetHistory(ctx context.Context, conversationId uuid.UUID) ([]*dto.GetHistoryResponse, error) {
	conversation, err := s.conversationRepo.FindById(ctx, conversationId)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, errs.New(errs.KindNotFound, "conversation not found")
	}

	messages, err := s.messageRepo.FindByConversationId(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetHistoryResponse, len(messages))
	for i, msg := range messages {
		item := &dto.GetHistoryResponse{
			Id:         msg.Id,
			Role:       msg.Role,
			Content:    msg.Content,
			Confidence: msg.Confidence,
			CreatedAt:  msg.CreatedAt,
		}
		if len(msg.Sources) > 0 {
			var sources []retriever.SourceCitation
			if err := json.Unmarshal(msg.Sources, &sources); err == nil {
				item.Sources = sources
			}
		}
		res[i] = item
	}
	return res, nil
}

func (s *chatService) ListConversations(ctx context.Context) ([]*dto.ConversationSummaryResponse, error) {
	conversations, err := s.conversationRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ConversationSummaryResponse, len(conversations))
	for i, conv := range conversations {
		res[i] = &dto.ConversationSummaryResponse{
			Id:        conv.Id,
			Title:     conv.Title,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		}
	}
	return res, nil
}

func (s *chatService) ClearConversation(ctx context.Context, conversationId uuid.UUID) error {
	s.orchestrator.ClearConversation(conversationId.String())

	if err := s.messageRepo.DeleteByConversationId(ctx, conversationId); err != nil {
		return err
	}
	return s.conversationRepo.Delete(ctx, conversationId)
}

// ensureConversation resolves the conversation row, creating one titled
// after the first query when the client did not pass an id.
func (s *chatService) ensureConversation(ctx context.Context, rawId, query string) (uuid.UUID, error) {
	if rawId != "" {
		id, err := uuid.Parse(rawId)
		if err != nil {
			return uuid.Nil, errs.New(errs.KindParse, "invalid conversation id")
		}
		existing, err := s.conversationRepo.FindById(ctx, id)
		if err != nil {
			return uuid.Nil, err
		}
		if existing != nil {
			return id, nil
		}
		// Unknown id from the client, adopt it so their reference stays valid
		conversation := entity.Conversation{Id: id, Title: conversationTitle(query), CreatedAt: time.Now()}
		return id, s.conversationRepo.Create(ctx, &conversation)
	}

	conversation := entity.Conversation{
		Id:        uuid.New(),
		Title:     conversationTitle(query),
		CreatedAt: time.Now(),
	}
	if err := s.conversationRepo.Create(ctx, &conversation); err != nil {
		return uuid.Nil, err
	}
	return conversation.Id, nil
}

func (s *chatService) persistExchange(ctx context.Context, conversationId uuid.UUID, query string, result *agent.Response) {
	now := time.Now()

	userMsg := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           "user",
		Content:        query,
		CreatedAt:      now,
	}
	if err := s.messageRepo.Create(ctx, &userMsg); err != nil {
		s.log.Error("chat_service", "failed to persist user message", map[string]any{"error": err})
	}

	assistantMsg := entity.Message{
		Id:             uuid.New(),
		ConversationId: conversationId,
		Role:           "assistant",
		Content:        result.Response,
		Confidence:     result.Confidence,
		CreatedAt:      now,
	}
	if len(result.Sources) > 0 {
		if raw, err := json.Marshal(result.Sources); err == nil {
			assistantMsg.Sources = datatypes.JSON(raw)
		}
	}
	if len(result.AgentSteps) > 0 {
		if raw, err := json.Marshal(result.AgentSteps); err == nil {
			assistantMsg.AgentSteps = datatypes.JSON(raw)
		}
	}
	if err := s.messageRepo.Create(ctx, &assistantMsg); err != nil {
		s.log.Error("chat_service", "failed to persist assistant message", map[string]any{"error": err})
	}
}

func conversationTitle(query string) string {
	runes := []rune(query)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return query
}
