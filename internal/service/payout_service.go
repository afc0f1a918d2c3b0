package service

import (
	"context"
	"time"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/sanctuary/backend/pkg/exchange"
	"github.com/shopspring/decimal"
)

// PayoutInput carries an admin-entered outbound transfer.
type PayoutInput struct {
	ProjectID     string
	Amount        decimal.Decimal
	Currency      string
	RecipientName string
	Date          time.Time
	Note          string
}

// PayoutService provides business logic for payouts.
type PayoutService interface {
	// Add records an outbound transfer and raises the project's amount_paid
	// by the amount converted into the project's base currency. Conversion
	// happens before the transaction opens.
	Add(ctx context.Context, in PayoutInput) (*model.Payout, error)
	// Remove deletes a payout and lowers amount_paid by the stored converted
	// amount. The conversion is never recomputed.
	Remove(ctx context.Context, id string) error
	// List returns all payouts with their project titles, newest first.
	List(ctx context.Context) ([]*model.Payout, error)
	// ListByDateRange returns payouts within the inclusive [start, end]
	// window for the export collaborator. Either bound may be nil.
	ListByDateRange(ctx context.Context, start, end *time.Time) ([]*model.Payout, error)
}

type payoutService struct {
	payouts  repository.PayoutRepository
	projects repository.ProjectRepository
	fx       exchange.Converter
}

// NewPayoutService creates a PayoutService.
func NewPayoutService(payouts repository.PayoutRepository, projects repository.ProjectRepository, fx exchange.Converter) PayoutService {
	return &payoutService{payouts: payouts, projects: projects, fx: fx}
}

func (s *payoutService) Add(ctx context.Context, in PayoutInput) (*model.Payout, error) {
	ve := ValidationError{}
	if !in.Amount.IsPositive() {
		ve["amount"] = "must be greater than zero"
	}
	if !model.ValidCurrency(in.Currency) {
		ve["currency"] = "must be EUR or PLN"
	}
	if in.RecipientName == "" {
		ve["recipient_name"] = "is required"
	}
	if in.Date.IsZero() {
		ve["payout_date"] = "is required"
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

	p := &model.Payout{
		ProjectID:       in.ProjectID,
		Amount:          in.Amount,
		Currency:        in.Currency,
		ConvertedAmount: converted,
		RecipientName:   in.RecipientName,
		PayoutDate:      in.Date,
		Note:            in.Note,
	}
	if err := s.payouts.CreateWithBalance(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *payoutService) Remove(ctx context.Context, id string) error {
	return s.payouts.DeleteWithBalance(ctx, id)
}

func (s *payoutService) List(ctx context.Context) ([]*model.Payout, error) {
	return s.payouts.ListWithProjectTitle(ctx)
}

func (s *payoutService) ListByDateRange(ctx context.Context, start, end *time.Time) ([]*model.Payout, error) {
	return s.payouts.ListByDateRange(ctx, start, end)
}
