package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
}

type DocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type SearchPersistedRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit"`
}

type DocumentChunkResponse struct {
	ChunkId    string    `json:"chunk_id"`
	DocumentId uuid.UUID `json:"document_id"`
	Content    string    `json:"content"`
	Page       int       `json:"page,omitempty"`
	ChunkType  string    `json:"chunk_type,omitempty"`
}

type KnowledgeBaseStatsResponse struct {
	DocumentCount int `json:"document_count"`
	ChunkCount    int `json:"chunk_count"`
	Dimension     int `json:"dimension"`
}
