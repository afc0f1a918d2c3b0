package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sanctuary/backend/internal/model"
)

type pgRequestRepository struct {
	pool *pgxpool.Pool
}

// NewPgRequestRepository returns a PostgreSQL-backed RequestRepository.
func NewPgRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &pgRequestRepository{pool: pool}
}

const requestSelectCols = `id, applicant_type, full_name, email, COALESCE(phone, ''),
	country, COALESCE(city, ''), species, COALESCE(species_other, ''),
	animal_name, COALESCE(animal_age, ''), animals_count,
	amount, currency, amount_type, deadline,
	treatment_ongoing, needs_installments,
	COALESCE(payout_name, ''), COALESCE(payout_iban, ''), COALESCE(payout_bank_name, ''),
	COALESCE(payout_bank_country, ''), COALESCE(payout_swift, ''), COALESCE(payout_address, ''),
	consent_contact, consent_terms, language, status, created_at`

func scanRequest(scan func(...any) error) (*model.Request, error) {
	r := &model.Request{}
	return r, scan(
		&r.ID, &r.ApplicantType, &r.FullName, &r.Email, &r.Phone,
		&r.Country, &r.City, &r.Species, &r.SpeciesOther,
		&r.AnimalName, &r.AnimalAge, &r.AnimalsCount,
		&r.Amount, &r.Currency, &r.AmountType, &r.Deadline,
		&r.TreatmentOngoing, &r.NeedsInstallments,
		&r.PayoutName, &r.PayoutIBAN, &r.PayoutBankName,
		&r.PayoutBankCountry, &r.PayoutSWIFT, &r.PayoutAddress,
		&r.ConsentContact, &r.ConsentTerms, &r.Language, &r.Status, &r.CreatedAt,
	)
}

func (r *pgRequestRepository) CreateWithFiles(ctx context.Context, req *model.Request, files []*model.RequestFile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO requests
		 (applicant_type, full_name, email, phone, country, city,
		  species, species_other, animal_name, animal_age, animals_count,
		  amount, currency, amount_type, deadline,
		  treatment_ongoing, needs_installments,
		  payout_name, payout_iban, payout_bank_name, payout_bank_country,
		  payout_swift, payout_address,
		  consent_contact, consent_terms, language, status)
		 VALUES ($1, $2, $3, NULLIF($4,''), $5, NULLIF($6,''),
		         $7, NULLIF($8,''), $9, NULLIF($10,''), $11,
		         $12, $13, $14, $15,
		         $16, $17,
		         NULLIF($18,''), NULLIF($19,''), NULLIF($20,''), NULLIF($21,''),
		         NULLIF($22,''), NULLIF($23,''),
		         $24, $25, $26, $27)
		 RETURNING id, created_at`,
		req.ApplicantType, req.FullName, req.Email, req.Phone, req.Country, req.City,
		req.Species, req.SpeciesOther, req.AnimalName, req.AnimalAge, req.AnimalsCount,
		req.Amount, req.Currency, req.AmountType, req.Deadline,
		req.TreatmentOngoing, req.NeedsInstallments,
		req.PayoutName, req.PayoutIBAN, req.PayoutBankName, req.PayoutBankCountry,
		req.PayoutSWIFT, req.PayoutAddress,
		req.ConsentContact, req.ConsentTerms, req.Language, req.Status,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return err
	}

	for _, f := range files {
		f.RequestID = req.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO request_files (request_id, path, type, original_name)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			f.RequestID, f.Path, f.Type, f.OriginalName,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *pgRequestRepository) List(ctx context.Context, status string) ([]*model.Request, error) {
	query := `SELECT ` + requestSelectCols + ` FROM requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Request
	for rows.Next() {
		req, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func (r *pgRequestRepository) GetByID(ctx context.Context, id string) (*model.Request, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestSelectCols+` FROM requests WHERE id = $1`, id)
	req, err := scanRequest(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, request_id, path, type, original_name, created_at
		 FROM request_files
		 WHERE request_id = $1
		 ORDER BY created_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		f := &model.RequestFile{}
		if err := rows.Scan(&f.ID, &f.RequestID, &f.Path, &f.Type, &f.OriginalName, &f.CreatedAt); err != nil {
			return nil, err
		}
		req.Files = append(req.Files, f)
	}
	return req, rows.Err()
}

func (r *pgRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
