package repository

import (
	"context"

	"github.com/sanctuary/backend/internal/model"
)

// ProjectRepository handles persistence for fundraising projects and their files.
type ProjectRepository interface {
	// Materialize inserts the project with its files and marks the originating
	// request approved, all in one transaction. The project ID and CreatedAt
	// are filled in on success.
	Materialize(ctx context.Context, p *model.Project, files []*model.ProjectFile) error
	// GetByID returns a single project with its files loaded.
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// GetByRequestID returns the project materialized from the given request,
	// or ErrNotFound if the request was never materialized.
	GetByRequestID(ctx context.Context, requestID string) (*model.Project, error)
	// ListActive returns active projects, urgent first then newest.
	// Files are not loaded.
	ListActive(ctx context.Context) ([]*model.Project, error)
	// UpdateStatus sets the project status.
	UpdateStatus(ctx context.Context, id, status string) error
}
