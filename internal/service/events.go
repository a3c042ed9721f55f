package service

import "github.com/scriptoriumapp/scriptorium-server/internal/domain"

// Emitter receives mutation events. Notification is synchronous: observers
// see the new state before the mutating call returns.
type Emitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of Emitter for testing.
type NoopEmitter struct{}

// Emit implements Emitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// Event types.
const (
	EventBookCreated       = "book.created"
	EventBookUpdated       = "book.updated"
	EventBookDeleted       = "book.deleted"
	EventBooksImported     = "books.imported"
	EventCollectionAdded   = "collection.added"
	EventCollectionDeleted = "collection.deleted"
	EventCollectionRenamed = "collection.renamed"
)

// BookEvent describes a mutation of a single book.
type BookEvent struct {
	Type string       `json:"type"`
	Book *domain.Book `json:"book,omitempty"`
	ID   string       `json:"id,omitempty"`
}

// ImportEvent describes a completed batch import.
type ImportEvent struct {
	Type     string `json:"type"`
	Imported int    `json:"imported"`
}

// CollectionEvent describes a mutation of the collection registry.
type CollectionEvent struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	OldName string `json:"old_name,omitempty"`
}
