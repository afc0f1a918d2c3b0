package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payout is an outbound transfer from a project's collected funds.
// Amount is in the payout currency; ConvertedAmount is what was actually
// debited in the project's base currency.
type Payout struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	RecipientName   string          `json:"recipient_name"`
	PayoutDate      time.Time       `json:"payout_date"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	// Transient: joined project title for admin listings and the date-range report
	ProjectTitle Localized `json:"project_title,omitempty"`
}
