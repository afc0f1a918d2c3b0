package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sanctuary/backend/internal/model"
)

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository returns a PostgreSQL-backed ProjectRepository.
func NewPgProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectSelectCols = `id, request_id, status, slug, is_urgent,
	full_name, applicant_type, species, COALESCE(species_other, '{}'::jsonb),
	animal_name, animals_count,
	title, description, country, COALESCE(animal_age, '{}'::jsonb),
	amount_target, amount_collected, amount_paid, currency, deadline, created_at`

func scanProject(scan func(...any) error) (*model.Project, error) {
	p := &model.Project{}
	return p, scan(
		&p.ID, &p.RequestID, &p.Status, &p.Slug, &p.IsUrgent,
		&p.FullName, &p.ApplicantType, &p.Species, &p.SpeciesOther,
		&p.AnimalName, &p.AnimalsCount,
		&p.Title, &p.Description, &p.Country, &p.AnimalAge,
		&p.AmountTarget, &p.AmountCollected, &p.AmountPaid, &p.Currency,
		&p.Deadline, &p.CreatedAt,
	)
}

func (r *pgProjectRepository) Materialize(ctx context.Context, p *model.Project, files []*model.ProjectFile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO projects
		 (request_id, status, slug, is_urgent, full_name, applicant_type,
		  species, species_other, animal_name, animals_count,
		  title, description, country, animal_age,
		  amount_target, amount_collected, amount_paid, currency, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6,
		         $7, $8, $9, $10,
		         $11, $12, $13, $14,
		         $15, $16, $17, $18, $19)
		 RETURNING id, created_at`,
		p.RequestID, p.Status, p.Slug, p.IsUrgent, p.FullName, p.ApplicantType,
		p.Species, p.SpeciesOther, p.AnimalName, p.AnimalsCount,
		p.Title, p.Description, p.Country, p.AnimalAge,
		p.AmountTarget, p.AmountCollected, p.AmountPaid, p.Currency, p.Deadline,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	for _, f := range files {
		f.ProjectID = p.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO project_files (project_id, path, type, original_name, is_cover)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			f.ProjectID, f.Path, f.Type, f.OriginalName, f.IsCover,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			return err
		}
	}

	if p.RequestID != nil {
		tag, err := tx.Exec(ctx,
			`UPDATE requests SET status = $1 WHERE id = $2`,
			model.RequestStatusApproved, *p.RequestID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
	}

	return tx.Commit(ctx)
}

func (r *pgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectSelectCols+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, project_id, path, type, original_name, is_cover, created_at
		 FROM project_files
		 WHERE project_id = $1
		 ORDER BY is_cover DESC, created_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		f := &model.ProjectFile{}
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Path, &f.Type, &f.OriginalName, &f.IsCover, &f.CreatedAt); err != nil {
			return nil, err
		}
		p.Files = append(p.Files, f)
	}
	return p, rows.Err()
}

func (r *pgProjectRepository) GetByRequestID(ctx context.Context, requestID string) (*model.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectSelectCols+` FROM projects WHERE request_id = $1
		 ORDER BY created_at LIMIT 1`, requestID)
	p, err := scanProject(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) ListActive(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectSelectCols+`
		 FROM projects
		 WHERE status = $1
		 ORDER BY is_urgent DESC, created_at DESC`,
		model.ProjectStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pgProjectRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
