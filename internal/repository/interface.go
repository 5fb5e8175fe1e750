package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"revision-runtime/backend/pkg/models"
)

// ErrNotFound is returned when no revision exists for an id.
var ErrNotFound = errors.New("transformation revision not found")

// RevisionReader looks up transformation revisions.
type RevisionReader interface {
	// GetRevision retrieves a revision by its id.
	GetRevision(ctx context.Context, id uuid.UUID) (*models.TransformationRevision, error)
	// ListRevisions returns the revisions matching filter.
	ListRevisions(ctx context.Context, filter RevisionFilter) ([]*models.TransformationRevision, error)
}

// RevisionStore reads and writes transformation revisions.
type RevisionStore interface {
	RevisionReader
	// StoreRevision inserts or replaces a revision.
	StoreRevision(ctx context.Context, tr *models.TransformationRevision) error
	// Ping checks the connection to the backing database.
	Ping(ctx context.Context) error
}
