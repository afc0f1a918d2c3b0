package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// balanceField identifies which project running balance a ledger delta targets.
type balanceField string

const (
	fieldCollected balanceField = "amount_collected"
	fieldPaid      balanceField = "amount_paid"
)

// adjustBalance applies a signed delta to one balance column of one project row
// as a single atomic SQL increment. It must run on the same transaction as the
// ledger-entry insert or delete that triggered it, so that neither can be
// committed without the other.
//
// No sign or bounds check happens here; bounds policy belongs to callers.
func adjustBalance(ctx context.Context, tx pgx.Tx, projectID string, field balanceField, delta decimal.Decimal) error {
	switch field {
	case fieldCollected, fieldPaid:
	default:
		panic(fmt.Sprintf("repository: unknown balance field %q", field))
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE projects SET %s = %s + $1 WHERE id = $2`, field, field),
		delta, projectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
