package store

import (
	"context"

	"exambank/internal/domain"
)

// Backend is a document store holding exam records.
type Backend interface {
	// Insert persists a new record stamped with the store's creation time and returns its id.
	Insert(ctx context.Context, name string, questions []domain.Question) (string, error)
	// FindAll returns every record, newest first.
	FindAll(ctx context.Context) ([]Record, error)
	// Find returns domain.ErrExamNotFound when the id does not exist.
	Find(ctx context.Context, id string) (Record, error)
	// Patch writes only the supplied fields and bumps the revision.
	Patch(ctx context.Context, id string, patch domain.ExamPatch) error
	// Remove deletes a record; removing an absent id is not an error.
	Remove(ctx context.Context, id string) error
	Close() error
}
