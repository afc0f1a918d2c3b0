package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sanctuary/backend/internal/model"
	"github.com/shopspring/decimal"
)

type pgPayoutRepository struct {
	pool *pgxpool.Pool
}

// NewPgPayoutRepository returns a PostgreSQL-backed PayoutRepository.
func NewPgPayoutRepository(pool *pgxpool.Pool) PayoutRepository {
	return &pgPayoutRepository{pool: pool}
}

const payoutSelectCols = `p.id, p.project_id, p.amount, p.currency, p.converted_amount,
	p.recipient_name, p.payout_date, COALESCE(p.note, ''), p.created_at, pr.title`

func scanPayout(scan func(...any) error) (*model.Payout, error) {
	p := &model.Payout{}
	return p, scan(
		&p.ID, &p.ProjectID, &p.Amount, &p.Currency, &p.ConvertedAmount,
		&p.RecipientName, &p.PayoutDate, &p.Note, &p.CreatedAt, &p.ProjectTitle,
	)
}

func (r *pgPayoutRepository) CreateWithBalance(ctx context.Context, p *model.Payout) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO payouts
		 (project_id, amount, currency, converted_amount, recipient_name, payout_date, note)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''))
		 RETURNING id, created_at`,
		p.ProjectID, p.Amount, p.Currency, p.ConvertedAmount,
		p.RecipientName, p.PayoutDate, p.Note,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	if err := adjustBalance(ctx, tx, p.ProjectID, fieldPaid, p.ConvertedAmount); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgPayoutRepository) DeleteWithBalance(ctx context.Context, id string) error {
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
		 FROM payouts WHERE id = $1`, id,
	).Scan(&projectID, &converted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM payouts WHERE id = $1`, id); err != nil {
		return err
	}

	if err := adjustBalance(ctx, tx, projectID, fieldPaid, converted.Neg()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *pgPayoutRepository) ListWithProjectTitle(ctx context.Context) ([]*model.Payout, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+payoutSelectCols+`
		 FROM payouts p
		 JOIN projects pr ON pr.id = p.project_id
		 ORDER BY p.payout_date DESC, p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayouts(rows)
}

func (r *pgPayoutRepository) ListByDateRange(ctx context.Context, start, end *time.Time) ([]*model.Payout, error) {
	query := `SELECT ` + payoutSelectCols + `
		 FROM payouts p
		 JOIN projects pr ON pr.id = p.project_id`
	args := []any{}
	where := ""
	if start != nil {
		args = append(args, *start)
		where = fmt.Sprintf(" WHERE p.payout_date >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		if where == "" {
			where = fmt.Sprintf(" WHERE p.payout_date <= $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND p.payout_date <= $%d", len(args))
		}
	}
	query += where + ` ORDER BY p.payout_date DESC, p.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayouts(rows)
}

func collectPayouts(rows pgx.Rows) ([]*model.Payout, error) {
	var list []*model.Payout
	for rows.Next() {
		p, err := scanPayout(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
