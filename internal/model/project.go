package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project statuses (admin-driven, independent of balance state).
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// Currencies accepted for funding asks and ledger entries.
const (
	CurrencyEUR = "EUR"
	CurrencyPLN = "PLN"
)

// Languages carried by every localized field.
var Languages = []string{"pl", "en", "es"}

// Localized maps a language code (pl/en/es) to its translation.
// Stored as JSONB.
type Localized map[string]string

// Project は承認された申請から実体化された公開募金キャンペーン。
// AmountCollected / AmountPaid はレジャー経由の符号付き差分でのみ変化する。
type Project struct {
	ID        string  `json:"id"`
	RequestID *string `json:"request_id,omitempty"`
	Status    string  `json:"status"`
	Slug      string  `json:"slug"`
	IsUrgent  bool    `json:"is_urgent"`

	// Applicant snapshot
	FullName      string `json:"full_name"`
	ApplicantType string `json:"applicant_type"`

	// Animal snapshot
	Species      string    `json:"species"`
	SpeciesOther Localized `json:"species_other,omitempty"`
	AnimalName   string    `json:"animal_name"`
	AnimalsCount int       `json:"animals_count"`

	Title       Localized `json:"title"`
	Description Localized `json:"description"`
	Country     Localized `json:"country"`
	AnimalAge   Localized `json:"animal_age,omitempty"`

	AmountTarget    decimal.Decimal `json:"amount_target"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Currency        string          `json:"currency"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`

	// Transient: loaded by GetByID, not by list queries
	Files []*ProjectFile `json:"files,omitempty"`
}

// ProjectFile はプロジェクトに紐づく添付ファイル。
// is_cover が true のファイルはプロジェクトにつき最大1件。
type ProjectFile struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Path         string    `json:"path"`
	Type         string    `json:"type"`
	OriginalName string    `json:"original_name"`
	IsCover      bool      `json:"is_cover"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusDraft, ProjectStatusActive, ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

// ValidCurrency reports whether c is a supported currency code.
func ValidCurrency(c string) bool {
	return c == CurrencyEUR || c == CurrencyPLN
}
