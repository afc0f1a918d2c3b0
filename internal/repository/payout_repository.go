package repository

import (
	"context"
	"time"

	"github.com/sanctuary/backend/internal/model"
)

// PayoutRepository handles persistence for payouts.
// Every mutation pairs the ledger-entry write with its balance adjustment in
// one transaction.
type PayoutRepository interface {
	// CreateWithBalance inserts the payout and adds its converted amount to
	// the project's amount_paid atomically. The payout ID and CreatedAt are
	// filled in on success.
	CreateWithBalance(ctx context.Context, p *model.Payout) error
	// DeleteWithBalance removes the payout and subtracts its stored converted
	// amount (raw amount if absent) from amount_paid atomically.
	DeleteWithBalance(ctx context.Context, id string) error
	// ListWithProjectTitle returns all payouts joined with the project title,
	// newest first.
	ListWithProjectTitle(ctx context.Context) ([]*model.Payout, error)
	// ListByDateRange returns payouts with payout_date within [start, end]
	// (either bound optional), joined with the project title, ordered by
	// payout_date then creation time, newest first. Feeds the CSV export.
	ListByDateRange(ctx context.Context, start, end *time.Time) ([]*model.Payout, error)
}
