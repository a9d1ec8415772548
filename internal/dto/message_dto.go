package dto

import "github.com/google/uuid"

// PersistChunksMessage asks the consumer to write a freshly indexed
// document's chunks through to the database.
type PersistChunksMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
}
