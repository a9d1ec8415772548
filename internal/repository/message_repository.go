package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-bizops-be/internal/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByConversationId(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error)
	DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *MessageRepositoryImpl) FindByConversationId(ctx context.Context, conversationId uuid.UUID) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND is_deleted = ?", conversationId, false).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MessageRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationId).
		Delete(&entity.Message{}).Error
}
