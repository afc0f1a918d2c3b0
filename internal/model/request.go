package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request statuses. Transitions between them are owned by the request service.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// Applicant types accepted on public submission.
const (
	ApplicantPerson       = "person"
	ApplicantOrganization = "organization"
	ApplicantVetClinic    = "vetClinic"
)

// Animal species. SpeciesOther requires the free-text species description.
const (
	SpeciesRat       = "rat"
	SpeciesGuineaPig = "guineaPig"
	SpeciesOther     = "other"
)

// Amount types for the funding ask.
const (
	AmountEstimated = "estimated"
	AmountExact     = "exact"
)

// Request は公開フォームから送信された支援申請。
// 作成後は内容不変で、ステータス遷移のみ許される。
type Request struct {
	ID string `json:"id"`

	// Applicant identity
	ApplicantType string `json:"applicant_type"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Country       string `json:"country"`
	City          string `json:"city,omitempty"`

	// Animal facts
	Species      string `json:"species"`
	SpeciesOther string `json:"species_other,omitempty"`
	AnimalName   string `json:"animal_name"`
	AnimalAge    string `json:"animal_age,omitempty"`
	AnimalsCount int    `json:"animals_count"`

	// Funding ask
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	AmountType string          `json:"amount_type"`
	Deadline   *time.Time      `json:"deadline,omitempty"`

	TreatmentOngoing  bool `json:"treatment_ongoing"`
	NeedsInstallments bool `json:"needs_installments"`

	// Payout banking details
	PayoutName        string `json:"payout_name,omitempty"`
	PayoutIBAN        string `json:"payout_iban,omitempty"`
	PayoutBankName    string `json:"payout_bank_name,omitempty"`
	PayoutBankCountry string `json:"payout_bank_country,omitempty"`
	PayoutSWIFT       string `json:"payout_swift,omitempty"`
	PayoutAddress     string `json:"payout_address,omitempty"`

	ConsentContact bool   `json:"consent_contact"`
	ConsentTerms   bool   `json:"consent_terms"`
	Language       string `json:"language"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	// Transient: loaded by GetByID, not by list queries
	Files []*RequestFile `json:"files,omitempty"`
}

// File types shared by request and project attachments.
const (
	FileTypePhoto    = "photo"
	FileTypeDocument = "document"
)

// RequestFile は申請時にアップロードされた添付ファイル。
type RequestFile struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	Path         string    `json:"path"`
	Type         string    `json:"type"`
	OriginalName string    `json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidApplicantType reports whether t is a known applicant type.
func ValidApplicantType(t string) bool {
	return t == ApplicantPerson || t == ApplicantOrganization || t == ApplicantVetClinic
}

// ValidSpecies reports whether s is a known species.
func ValidSpecies(s string) bool {
	return s == SpeciesRat || s == SpeciesGuineaPig || s == SpeciesOther
}

// ValidAmountType reports whether t is a known amount type.
func ValidAmountType(t string) bool {
	return t == AmountEstimated || t == AmountExact
}

// ValidRequestStatus reports whether s is a known request status.
func ValidRequestStatus(s string) bool {
	return s == RequestStatusPending || s == RequestStatusApproved || s == RequestStatusRejected
}

// ValidFileType reports whether t is a known attachment type.
func ValidFileType(t string) bool {
	return t == FileTypePhoto || t == FileTypeDocument
}
