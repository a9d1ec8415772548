package vectorstore

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"ai-bizops-be/pkg/embedding"
	"ai-bizops-be/pkg/errs"
	"ai-bizops-be/pkg/rag/chunker"
)

// Gemini text-embedding-004 dimension
const DefaultDimension = 768

// RetrievedChunk is one indexed chunk with its retained embedding.
type RetrievedChunk struct {
	ID        string         `json:"id"`
	DocID     string         `json:"doc_id"`
	Text      string         `json:"text"`
	Source    string         `json:"source"`
	Page      int            `json:"page,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"-"`
	IndexedAt time.Time      `json:"indexed_at"`
}

// SearchResult is a chunk with its similarity score for one query.
type SearchResult struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Page     int            `json:"page,omitempty"`
	DocID    string         `json:"doc_id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentDescriptor is index-level metadata, one per uploaded document.
type DocumentDescriptor struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	FileType   string         `json:"file_type"`
	ChunkCount int            `json:"chunk_count"`
	SizeBytes  int            `json:"size_bytes"`
	IndexedAt  time.Time      `json:"indexed_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type Stats struct {
	TotalDocuments int `json:"total_documents"`
	TotalChunks    int `json:"total_chunks"`
	IndexSize      int `json:"index_size"`
	Dimension      int `json:"dimension"`
}

// IVectorStore is the in-memory similarity index over document chunks.
type IVectorStore interface {
	AddDocument(ctx context.Context, content []byte, fileName string, docID string, metadata map[string]any) (int, error)
	Search(ctx context.Context, query string, topK int, fileFilter []string, threshold float32) ([]SearchResult, error)
	DeleteDocument(docID string) bool
	ListDocuments() []DocumentDescriptor
	GetDocument(docID string) (*DocumentDescriptor, error)
	DocumentChunks(docID string) []RetrievedChunk
	Restore(chunks []RetrievedChunk) int
	Stats() Stats
}

type Store struct {
	mu        sync.RWMutex
	dimension int
	chunker   *chunker.Chunker
	embedder  embedding.EmbeddingProvider

	// index holds L2-normalized vectors, parallel to chunks
	index  [][]float32
	chunks []RetrievedChunk
	docs   map[string]*DocumentDescriptor
}

func NewStore(embedder embedding.EmbeddingProvider) IVectorStore {
	return &Store{
		dimension: DefaultDimension,
		chunker:   chunker.New(),
		embedder:  embedder,
		index:     [][]float32{},
		chunks:    []RetrievedChunk{},
		docs:      map[string]*DocumentDescriptor{},
	}
}

// AddDocument chunks and embeds a document, then appends it to the index.
// Fails without touching the index when no content could be extracted, so
// a document is never partially indexed.
func (s *Store) AddDocument(ctx context.Context, content []byte, fileName string, docID string, metadata map[string]any) (int, error) {
	pieces, err := s.chunker.ChunkDocument(content, fileName)
	if err != nil {
		return 0, err
	}
	if len(pieces) == 0 {
		return 0, errs.New(errs.KindIndexing, fmt.Sprintf("no content extracted from %s", fileName))
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts, embedding.TaskRetrievalDocument)
	if err != nil {
		return 0, errs.Wrap(errs.KindIndexing, "embed document chunks", err)
	}
	if len(vectors) != len(pieces) {
		return 0, errs.New(errs.KindIndexing,
			fmt.Sprintf("embedding count mismatch: %d chunks, %d vectors", len(pieces), len(vectors)))
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, piece := range pieces {
		vec := normalizeL2(vectors[i])
		s.index = append(s.index, vec)
		s.chunks = append(s.chunks, RetrievedChunk{
			ID:        fmt.Sprintf("%s_%d", docID, i),
			DocID:     docID,
			Text:      piece.Text,
			Source:    fileName,
			Page:      piece.Page,
			Metadata:  metadata,
			Embedding: vec,
			IndexedAt: now,
		})
	}

	s.docs[docID] = &DocumentDescriptor{
		ID:         docID,
		Filename:   fileName,
		FileType:   filepath.Ext(fileName),
		ChunkCount: len(pieces),
		SizeBytes:  len(content),
		IndexedAt:  now,
		Metadata:   metadata,
	}

	return len(pieces), nil
}

// Search embeds the query and returns up to topK chunks above the score
// threshold, best first. An empty index yields an empty result, not an error.
func (s *Store) Search(ctx context.Context, query string, topK int, fileFilter []string, threshold float32) ([]SearchResult, error) {
	s.mu.RLock()
	empty := len(s.index) == 0
	s.mu.RUnlock()
	if empty {
		return []SearchResult{}, nil
	}

	queryVec, err := s.embedder.Embed(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, errs.Wrap(errs.KindProvider, "embed query", err)
	}
	queryVec = normalizeL2(queryVec)

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Overfetch to leave headroom for filtering
	searchK := topK * 3
	if searchK > len(s.index) {
		searchK = len(s.index)
	}

	type scored struct {
		idx   int
		score float32
	}
	all := make([]scored, len(s.index))
	for i, vec := range s.index {
		all[i] = scored{idx: i, score: dot(queryVec, vec)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].score > all[j].score })

	allowed := map[string]bool{}
	for _, name := range fileFilter {
		allowed[name] = true
	}

	results := []SearchResult{}
	for _, candidate := range all[:searchK] {
		if candidate.score < threshold {
			continue
		}
		chunk := s.chunks[candidate.idx]
		if len(allowed) > 0 && !allowed[chunk.Source] {
			continue
		}
		results = append(results, SearchResult{
			Content:  chunk.Text,
			Source:   chunk.Source,
			Page:     chunk.Page,
			DocID:    chunk.DocID,
			Score:    candidate.score,
			Metadata: chunk.Metadata,
		})
		if len(results) >= topK {
			break
		}
	}

	return results, nil
}

// DeleteDocument removes every chunk of a document. The flat index has no
// in-place delete, so it is rebuilt from the retained embeddings of the
// surviving chunks. Returns false when the document was not indexed.
func (s *Store) DeleteDocument(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]RetrievedChunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		if chunk.DocID != docID {
			kept = append(kept, chunk)
		}
	}
	if len(kept) == len(s.chunks) {
		return false
	}

	index := make([][]float32, len(kept))
	for i, chunk := range kept {
		index[i] = chunk.Embedding
	}

	s.chunks = kept
	s.index = index
	delete(s.docs, docID)

	return true
}

func (s *Store) ListDocuments() []DocumentDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]DocumentDescriptor, 0, len(s.docs))
	for _, desc := range s.docs {
		docs = append(docs, *desc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].IndexedAt.Before(docs[j].IndexedAt) })
	return docs
}

func (s *Store) GetDocument(docID string) (*DocumentDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	desc, ok := s.docs[docID]
	if !ok {
		return nil, errs.New(errs.KindNotFound, fmt.Sprintf("document %s not found", docID))
	}
	copied := *desc
	return &copied, nil
}

// DocumentChunks returns the indexed chunks of one document, used by the
// persistence layer to write them through to storage.
func (s *Store) DocumentChunks(docID string) []RetrievedChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := []RetrievedChunk{}
	for _, chunk := range s.chunks {
		if chunk.DocID == docID {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Restore bulk-loads previously persisted chunks, rebuilding descriptors
// from the chunk list. Used once at startup.
func (s *Store) Restore(chunks []RetrievedChunk) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, chunk := range chunks {
		vec := normalizeL2(chunk.Embedding)
		chunk.Embedding = vec
		s.index = append(s.index, vec)
		s.chunks = append(s.chunks, chunk)

		desc, ok := s.docs[chunk.DocID]
		if !ok {
			desc = &DocumentDescriptor{
				ID:        chunk.DocID,
				Filename:  chunk.Source,
				FileType:  filepath.Ext(chunk.Source),
				IndexedAt: chunk.IndexedAt,
			}
			s.docs[chunk.DocID] = desc
		}
		desc.ChunkCount++
	}

	return len(chunks)
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		TotalDocuments: len(s.docs),
		TotalChunks:    len(s.chunks),
		IndexSize:      len(s.index),
		Dimension:      s.dimension,
	}
}

// normalizeL2 scales a vector to unit length so that inner product equals
// cosine similarity.
func normalizeL2(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
