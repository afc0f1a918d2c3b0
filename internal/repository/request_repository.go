package repository

import (
	"context"

	"github.com/sanctuary/backend/internal/model"
)

// RequestRepository handles persistence for support requests and their files.
type RequestRepository interface {
	// CreateWithFiles inserts a request together with its attachments in one
	// transaction. The request ID and CreatedAt are filled in on success.
	CreateWithFiles(ctx context.Context, req *model.Request, files []*model.RequestFile) error
	// List returns requests, optionally filtered by status (empty = all),
	// newest first. Files are not loaded.
	List(ctx context.Context, status string) ([]*model.Request, error)
	// GetByID returns a single request with its files loaded.
	GetByID(ctx context.Context, id string) (*model.Request, error)
	// UpdateStatus sets the request status.
	UpdateStatus(ctx context.Context, id, status string) error
}
