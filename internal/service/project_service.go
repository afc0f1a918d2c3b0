package service

import (
	"context"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
)

// ProjectService はプロジェクトに関するビジネスロジックのインターフェース
type ProjectService interface {
	// ListActive returns the public listing: active projects, urgent first
	// then newest.
	ListActive(ctx context.Context) ([]*model.Project, error)
	// GetByID returns one project with its files (admin view).
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// UpdateStatus applies an admin project status change. Project statuses
	// are admin-driven and independent of balance state.
	UpdateStatus(ctx context.Context, id, status string) error
}

type projectService struct {
	repo repository.ProjectRepository
}

// NewProjectService creates a ProjectService.
func NewProjectService(repo repository.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) ListActive(ctx context.Context) ([]*model.Project, error) {
	return s.repo.ListActive(ctx)
}

func (s *projectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *projectService) UpdateStatus(ctx context.Context, id, status string) error {
	if !model.ValidProjectStatus(status) {
		return ValidationError{"status": "must be draft, active, completed or cancelled"}
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
