package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-bizops-be/internal/dto"
	"ai-bizops-be/internal/entity"
	"ai-bizops-be/pkg/errs"
	"ai-bizops-be/pkg/rag/vectorstore"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeStore struct {
	addCalls    int
	addErr      error
	chunkCount  int
	deleted     []string
	restored    int
	docChunks   map[string][]vectorstore.RetrievedChunk
	statsResult vectorstore.Stats
}

func (s *fakeStore) AddDocument(ctx context.Context, content []byte, fileName, docID string, metadata map[string]any) (int, error) {
	s.addCalls++
	if s.addErr != nil {
		return 0, s.addErr
	}
	return s.chunkCount, nil
}

func (s *fakeStore) Search(ctx context.Context, query string, topK int, fileFilter []string, threshold float32) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (s *fakeStore) DeleteDocument(docID string) bool {
	s.deleted = append(s.deleted, docID)
	return true
}

func (s *fakeStore) ListDocuments() []vectorstore.DocumentDescriptor { return nil }

func (s *fakeStore) GetDocument(docID string) (*vectorstore.DocumentDescriptor, error) {
	return nil, errs.New(errs.KindNotFound, "not found")
}

func (s *fakeStore) DocumentChunks(docID string) []vectorstore.RetrievedChunk {
	return s.docChunks[docID]
}

func (s *fakeStore) Restore(chunks []vectorstore.RetrievedChunk) int {
	s.restored = len(chunks)
	return len(chunks)
}

func (s *fakeStore) Stats() vectorstore.Stats { return s.statsResult }

type fakeDocumentRepo struct {
	documents map[uuid.UUID]*entity.Document
	chunks    []*entity.DocumentChunk
	createErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: map[uuid.UUID]*entity.Document{}}
}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.documents[document.Id] = document
	return nil
}

func (r *fakeDocumentRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return r.documents[id], nil
}

func (r *fakeDocumentRepo) FindByFilename(ctx context.Context, filename string) (*entity.Document, error) {
	for _, doc := range r.documents {
		if doc.Filename == filename {
			return doc, nil
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context) ([]*entity.Document, error) {
	docs := make([]*entity.Document, 0, len(r.documents))
	for _, doc := range r.documents {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.documents, id)
	return nil
}

func (r *fakeDocumentRepo) CreateChunks(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeDocumentRepo) FindAllChunks(ctx context.Context) ([]*entity.DocumentChunk, error) {
	return r.chunks, nil
}

func (r *fakeDocumentRepo) DeleteChunksByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	kept := r.chunks[:0]
	for _, chunk := range r.chunks {
		if chunk.DocumentId != documentId {
			kept = append(kept, chunk)
		}
	}
	r.chunks = kept
	return nil
}

func (r *fakeDocumentRepo) FindNearestChunks(ctx context.Context, embedding []float32, limit int) ([]*entity.DocumentChunk, error) {
	if limit > len(r.chunks) {
		limit = len(r.chunks)
	}
	return r.chunks[:limit], nil
}

type fakePublisher struct {
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	store := &fakeStore{chunkCount: 2}
	svc := NewDocumentService(store, newFakeDocumentRepo(), &fakePublisher{}, nil, nopLogger{})

	_, err := svc.Upload(context.Background(), "report.exe", []byte("data"))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindParse))
	assert.Zero(t, store.addCalls)
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	store := &fakeStore{chunkCount: 2}
	svc := NewDocumentService(store, newFakeDocumentRepo(), &fakePublisher{}, nil, nopLogger{})

	_, err := svc.Upload(context.Background(), "notes.txt", nil)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindParse))
}

func TestUploadIndexesPersistsAndPublishes(t *testing.T) {
	store := &fakeStore{chunkCount: 3}
	repo := newFakeDocumentRepo()
	publisher := &fakePublisher{}
	svc := NewDocumentService(store, repo, publisher, nil, nopLogger{})

	res, err := svc.Upload(context.Background(), "q3-report.txt", []byte("Q3 revenue was strong."))
	require.NoError(t, err)
	assert.Equal(t, 3, res.ChunkCount)
	assert.Equal(t, "q3-report.txt", res.Filename)

	stored, ok := repo.documents[res.Id]
	require.True(t, ok)
	assert.Equal(t, 3, stored.ChunkCount)

	require.Len(t, publisher.payloads, 1)
	var msg dto.PersistChunksMessage
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &msg))
	assert.Equal(t, res.Id, msg.DocumentId)
	assert.Equal(t, "q3-report.txt", msg.Filename)
}

func TestUploadRollsBackIndexOnPersistFailure(t *testing.T) {
	store := &fakeStore{chunkCount: 2}
	repo := newFakeDocumentRepo()
	repo.createErr = errors.New("db down")
	svc := NewDocumentService(store, repo, &fakePublisher{}, nil, nopLogger{})

	_, err := svc.Upload(context.Background(), "notes.txt", []byte("content"))
	require.Error(t, err)
	require.Len(t, store.deleted, 1)
}

func TestUploadSurfacesIndexingError(t *testing.T) {
	store := &fakeStore{addErr: errs.New(errs.KindIndexing, "no content extracted")}
	svc := NewDocumentService(store, newFakeDocumentRepo(), &fakePublisher{}, nil, nopLogger{})

	_, err := svc.Upload(context.Background(), "blank.txt", []byte("  "))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindIndexing))
}

func TestDeleteUnknownDocument(t *testing.T) {
	svc := NewDocumentService(&fakeStore{}, newFakeDocumentRepo(), &fakePublisher{}, nil, nopLogger{})

	err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindNotFound))
}

func TestRestoreIndexSkipsOrphanChunks(t *testing.T) {
	store := &fakeStore{}
	repo := newFakeDocumentRepo()

	docId := uuid.New()
	repo.documents[docId] = &entity.Document{Id: docId, Filename: "kept.txt", ChunkCount: 1, CreatedAt: time.Now()}
	repo.chunks = []*entity.DocumentChunk{
		{Id: uuid.New(), ChunkId: docId.String() + "_0", DocumentId: docId, Content: "kept", Embedding: pgvector.NewVector([]float32{1, 0})},
		{Id: uuid.New(), ChunkId: "orphan_0", DocumentId: uuid.New(), Content: "orphan", Embedding: pgvector.NewVector([]float32{0, 1})},
	}

	svc := NewDocumentService(store, repo, &fakePublisher{}, nil, nopLogger{})
	require.NoError(t, svc.RestoreIndex(context.Background()))
	assert.Equal(t, 1, store.restored)
}
