package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-bizops-be/internal/dto"
	"ai-bizops-be/internal/entity"
	"ai-bizops-be/internal/pkg/logger"
	"ai-bizops-be/internal/repository"
	"ai-bizops-be/pkg/embedding"
	"ai-bizops-be/pkg/errs"
	"ai-bizops-be/pkg/rag/vectorstore"
)

type IDocumentService interface {
	Upload(ctx context.Context, filename string, content []byte) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context) ([]*dto.DocumentResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*dto.KnowledgeBaseStatsResponse, error)
	SearchPersisted(ctx context.Context, query string, limit int) ([]*dto.DocumentChunkResponse, error)
	RestoreIndex(ctx context.Context) error
}

type documentService struct {
	store            vectorstore.IVectorStore
	documentRepo     repository.DocumentRepository
	publisherService IPublisherService
	embedder         embedding.EmbeddingProvider
	log              logger.ILogger
}

func NewDocumentService(
	store vectorstore.IVectorStore,
	documentRepo repository.DocumentRepository,
	publisherService IPublisherService,
	embedder embedding.EmbeddingProvider,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		store:            store,
		documentRepo:     documentRepo,
		publisherService: publisherService,
		embedder:         embedder,
		log:              log,
	}
}

var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".log":  true,
}

func (s *documentService) Upload(ctx context.Context, filename string, content []byte) (*dto.UploadDocumentResponse, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !supportedExtensions[ext] {
		return nil, errs.New(errs.KindParse, fmt.Sprintf("unsupported file type %q", ext))
	}
	if len(content) == 0 {
		return nil, errs.New(errs.KindParse, "uploaded file is empty")
	}

	docId := uuid.New()

	chunkCount, err := s.store.AddDocument(ctx, content, filename, docId.String(), nil)
	if err != nil {
		s.log.Error("document_service", "indexing failed", map[string]any{
			"filename": filename,
			"error":    err,
		})
		return nil, err
	}

	document := entity.Document{
		Id:         docId,
		Filename:   filename,
		ChunkCount: chunkCount,
		CreatedAt:  time.Now(),
	}
	if err := s.documentRepo.Create(ctx, &document); err != nil {
		// Roll the index back so memory and storage stay consistent.
		s.store.DeleteDocument(docId.String())
		return nil, err
	}

	msgPayload := dto.PersistChunksMessage{
		DocumentId: docId,
		Filename:   filename,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.log.Warn("document_service", "failed to enqueue chunk persistence", map[string]any{
			"document_id": docId.String(),
			"error":       err.Error(),
		})
	}

	s.log.Info("document_service", "document indexed", map[string]any{
		"document_id": docId.String(),
		"filename":    filename,
		"chunks":      chunkCount,
	})

	return &dto.UploadDocumentResponse{
		Id:         docId,
		Filename:   filename,
		ChunkCount: chunkCount,
	}, nil
}

func (s *documentService) List(ctx context.Context) ([]*dto.DocumentResponse, error) {
	documents, err := s.documentRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, len(documents))
	for i, doc := range documents {
		res[i] = &dto.DocumentResponse{
			Id:         doc.Id,
			Filename:   doc.Filename,
			ChunkCount: doc.ChunkCount,
			CreatedAt:  doc.CreatedAt,
		}
	}
	return res, nil
}

func (s *documentService) Get(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	document, err := s.documentRepo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errs.New(errs.KindNotFound, "document not found")
	}
	return &dto.DocumentResponse{
		Id:         document.Id,
		Filename:   document.Filename,
		ChunkCount: document.ChunkCount,
		CreatedAt:  document.CreatedAt,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	document, err := s.documentRepo.FindById(ctx, id)
	if err != nil {
		return err
	}
	if document == nil {
		return errs.New(errs.KindNotFound, "document not found")
	}

	s.store.DeleteDocument(id.String())

	if err := s.documentRepo.DeleteChunksByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("document_service", "document deleted", map[string]any{
		"document_id": id.String(),
	})
	return nil
}

func (s *documentService) Stats(ctx context.Context) (*dto.KnowledgeBaseStatsResponse, error) {
	stats := s.store.Stats()
	return &dto.KnowledgeBaseStatsResponse{
		DocumentCount: stats.TotalDocuments,
		ChunkCount:    stats.TotalChunks,
		Dimension:     stats.Dimension,
	}, nil
}

// SearchPersisted queries pgvector directly, bypassing the in-memory index.
// Useful for verifying that storage and index agree on a given query.
func (s *documentService) SearchPersisted(ctx context.Context, query string, limit int) ([]*dto.DocumentChunkResponse, error) {
	if limit <= 0 {
		limit = 5
	}

	queryVec, err := s.embedder.Embed(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, errs.Wrap(errs.KindProvider, "embed query", err)
	}

	chunks, err := s.documentRepo.FindNearestChunks(ctx, queryVec, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentChunkResponse, len(chunks))
	for i, chunk := range chunks {
		res[i] = &dto.DocumentChunkResponse{
			ChunkId:    chunk.ChunkId,
			DocumentId: chunk.DocumentId,
			Content:    chunk.Content,
			Page:       chunk.Page,
			ChunkType:  chunk.ChunkType,
		}
	}
	return res, nil
}

// RestoreIndex rebuilds the in-memory index from persisted chunks. Called
// once at startup so retrieval survives restarts.
func (s *documentService) RestoreIndex(ctx context.Context) error {
	records, err := s.documentRepo.FindAllChunks(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.log.Info("document_service", "no persisted chunks to restore", nil)
		return nil
	}

	documents, err := s.documentRepo.FindAll(ctx)
	if err != nil {
		return err
	}
	filenames := make(map[uuid.UUID]string, len(documents))
	for _, doc := range documents {
		filenames[doc.Id] = doc.Filename
	}

	chunks := make([]vectorstore.RetrievedChunk, 0, len(records))
	for _, rec := range records {
		filename, ok := filenames[rec.DocumentId]
		if !ok {
			continue // chunk of a deleted document
		}
		chunks = append(chunks, vectorstore.RetrievedChunk{
			ID:        rec.ChunkId,
			DocID:     rec.DocumentId.String(),
			Text:      rec.Content,
			Source:    filename,
			Page:      rec.Page,
			Embedding: rec.Embedding.Slice(),
			IndexedAt: rec.CreatedAt,
		})
	}

	restored := s.store.Restore(chunks)
	s.log.Info("document_service", "index restored", map[string]any{
		"chunks": restored,
	})
	return nil
}
