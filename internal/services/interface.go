package services

import (
	"context"

	"revision-runtime/backend/pkg/models"
)

// BackendClient stores transformation revisions through the backend REST API.
type BackendClient interface {
	// PutRevision creates or replaces the revision at the backend.
	PutRevision(ctx context.Context, tr *models.TransformationRevision) error
}
