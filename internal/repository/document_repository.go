package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ai-bizops-be/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	FindByFilename(ctx context.Context, filename string) (*entity.Document, error)
	FindAll(ctx context.Context) ([]*entity.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateChunks(ctx context.Context, chunks []*entity.DocumentChunk) error
	FindAllChunks(ctx context.Context) ([]*entity.DocumentChunk, error)
	DeleteChunksByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindNearestChunks(ctx context.Context, embedding []float32, limit int) ([]*entity.DocumentChunk, error)
}

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, document *entity.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *DocumentRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var document entity.Document
	err := r.db.WithContext(ctx).Where("id = ? AND is_deleted = ?", id, false).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepositoryImpl) FindByFilename(ctx context.Context, filename string) (*entity.Document, error) {
	var document entity.Document
	err := r.db.WithContext(ctx).Where("filename = ? AND is_deleted = ?", filename, false).First(&document).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &document, nil
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Document, error) {
	var documents []*entity.Document
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

func (r *DocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Document{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *DocumentRepositoryImpl) CreateChunks(ctx context.Context, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(chunks, 100).Error
}

func (r *DocumentRepositoryImpl) FindAllChunks(ctx context.Context) ([]*entity.DocumentChunk, error) {
	var chunks []*entity.DocumentChunk
	err := r.db.WithContext(ctx).
		Order("document_id, chunk_index ASC").
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *DocumentRepositoryImpl) DeleteChunksByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("document_id = ?", documentId).
		Delete(&entity.DocumentChunk{}).Error
}

// FindNearestChunks queries pgvector directly by cosine distance. Used for
// diagnostics when the in-memory index needs cross-checking against storage.
func (r *DocumentRepositoryImpl) FindNearestChunks(ctx context.Context, embedding []float32, limit int) ([]*entity.DocumentChunk, error) {
	var chunks []*entity.DocumentChunk
	err := r.db.WithContext(ctx).
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}
