package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sanctuary/backend/internal/model"
	"github.com/shopspring/decimal"
)

type pgDonationRepository struct {
	pool *pgxpool.Pool
}

// NewPgDonationRepository returns a PostgreSQL-backed DonationRepository.
func NewPgDonationRepository(pool *pgxpool.Pool) DonationRepository {
	return &pgDonationRepository{pool: pool}
}

func (r *pgDonationRepository) CreateWithBalance(ctx context.Context, d *model.InternalDonation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO internal_donations
		 (project_id, amount, currency, converted_amount, donation_date, note)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6,''))
		 RETURNING id, created_at`,
		d.ProjectID, d.Amount, d.Currency, d.ConvertedAmount, d.DonationDate, d.Note,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return err
	}

	if err := adjustBalance(ctx, tx, d.ProjectID, fieldCollected, d.ConvertedAmount); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgDonationRepository) DeleteWithBalance(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// 保存済みの converted_amount が取消の根拠。為替を再計算しない。
	var projectID string
	var converted decimal.Decimal
	err = tx.QueryRow(ctx,
		`SELECT project_id, COALESCE(converted_amount, amount)
		 FROM internal_donations WHERE id = $1`, id,
	).Scan(&projectID, &converted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM internal_donations WHERE id = $1`, id); err != nil {
		return err
	}

	if err := adjustBalance(ctx, tx, projectID, fieldCollected, converted.Neg()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgDonationRepository) ListWithProjectTitle(ctx context.Context) ([]*model.InternalDonation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT d.id, d.project_id, d.amount, d.currency, d.converted_amount,
		        d.donation_date, COALESCE(d.note, ''), d.created_at, p.title
		 FROM internal_donations d
		 JOIN projects p ON p.id = d.project_id
		 ORDER BY d.donation_date DESC, d.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.InternalDonation
	for rows.Next() {
		d := &model.InternalDonation{}
		if err := rows.Scan(
			&d.ID, &d.ProjectID, &d.Amount, &d.Currency, &d.ConvertedAmount,
			&d.DonationDate, &d.Note, &d.CreatedAt, &d.ProjectTitle,
		); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
