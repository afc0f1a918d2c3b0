package service

import (
	"context"
	"time"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/sanctuary/backend/pkg/exchange"
	"github.com/shopspring/decimal"
)

// DonationInput carries an admin-entered internal donation.
type DonationInput struct {
	ProjectID string
	Amount    decimal.Decimal
	Currency  string
	Date      time.Time
	Note      string
}

// DonationService provides business logic for internal donations.
type DonationService interface {
	// Add records a self-funded contribution and raises the project's
	// amount_collected. The conversion into the project's base currency
	// happens before the transaction opens; the stored converted amount is
	// what the balance moves by.
	Add(ctx context.Context, in DonationInput) (*model.InternalDonation, error)
	// Remove deletes a donation and lowers amount_collected by the stored
	// converted amount. The conversion is never recomputed.
	Remove(ctx context.Context, id string) error
	// List returns all donations with their project titles, newest first.
	List(ctx context.Context) ([]*model.InternalDonation, error)
}

type donationService struct {
	donations repository.DonationRepository
	projects  repository.ProjectRepository
	fx        exchange.Converter
}

// NewDonationService creates a DonationService.
func NewDonationService(donations repository.DonationRepository, projects repository.ProjectRepository, fx exchange.Converter) DonationService {
	return &donationService{donations: donations, projects: projects, fx: fx}
}

func (s *donationService) Add(ctx context.Context, in DonationInput) (*model.InternalDonation, error) {
	ve := ValidationError{}
	if !in.Amount.IsPositive() {
		ve["amount"] = "must be greater than zero"
	}
	if !model.ValidCurrency(in.Currency) {
		ve["currency"] = "must be EUR or PLN"
	}
	if in.Date.IsZero() {
		ve["donation_date"] = "is required"
	}
	if len(ve) > 0 {
		return nil, ve
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}

	// 為替呼び出しは外部 I/O なのでトランザクションの外で行う。
	// 同一通貨なら呼び出し自体を省略する。
	converted := in.Amount
	if in.Currency != project.Currency {
		converted, err = s.fx.Convert(ctx, in.Amount, in.Currency, project.Currency)
		if err != nil {
			return nil, err
		}
	}

	d := &model.InternalDonation{
		ProjectID:       in.ProjectID,
		Amount:          in.Amount,
		Currency:        in.Currency,
		ConvertedAmount: converted,
		DonationDate:    in.Date,
		Note:            in.Note,
	}
	if err := s.donations.CreateWithBalance(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *donationService) Remove(ctx context.Context, id string) error {
	return s.donations.DeleteWithBalance(ctx, id)
}

func (s *donationService) List(ctx context.Context) ([]*model.InternalDonation, error) {
	return s.donations.ListWithProjectTitle(ctx)
}
