package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InternalDonation is a self-funded contribution to a project.
// ConvertedAmount is the amount expressed in the project's base currency and is
// authoritative for reversal; deletion never recomputes the conversion.
type InternalDonation struct {
	ID              string          `json:"id"`
	ProjectID       string          `json:"project_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	DonationDate    time.Time       `json:"donation_date"`
	Note            string          `json:"note,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	// Transient: joined project title for admin listings
	ProjectTitle Localized `json:"project_title,omitempty"`
}
