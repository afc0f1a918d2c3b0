package repository

import (
	"context"

	"github.com/sanctuary/backend/internal/model"
)

// DonationRepository handles persistence for internal donations.
// Every mutation pairs the ledger-entry write with its balance adjustment in
// one transaction.
type DonationRepository interface {
	// CreateWithBalance inserts the donation and adds its converted amount to
	// the project's amount_collected atomically. The donation ID and CreatedAt
	// are filled in on success.
	CreateWithBalance(ctx context.Context, d *model.InternalDonation) error
	// DeleteWithBalance removes the donation and subtracts its stored
	// converted amount (raw amount if absent) from amount_collected atomically.
	DeleteWithBalance(ctx context.Context, id string) error
	// ListWithProjectTitle returns all donations joined with the project
	// title, newest first.
	ListWithProjectTitle(ctx context.Context) ([]*model.InternalDonation, error)
}
