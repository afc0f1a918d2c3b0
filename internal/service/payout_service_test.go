package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/sanctuary/backend/pkg/exchange"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Mock PayoutRepository
// ---------------------------------------------------------------------------

type mockPayoutRepository struct {
	createFunc    func(ctx context.Context, p *model.Payout) error
	deleteFunc    func(ctx context.Context, id string) error
	listFunc      func(ctx context.Context) ([]*model.Payout, error)
	listRangeFunc func(ctx context.Context, start, end *time.Time) ([]*model.Payout, error)
}

func (m *mockPayoutRepository) CreateWithBalance(ctx context.Context, p *model.Payout) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	return nil
}
func (m *mockPayoutRepository) DeleteWithBalance(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}
func (m *mockPayoutRepository) ListWithProjectTitle(ctx context.Context) ([]*model.Payout, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}
func (m *mockPayoutRepository) ListByDateRange(ctx context.Context, start, end *time.Time) ([]*model.Payout, error) {
	if m.listRangeFunc != nil {
		return m.listRangeFunc(ctx, start, end)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// PayoutService.Add tests
// ---------------------------------------------------------------------------

func TestPayoutService_Add_SameCurrencyNoConversionCall(t *testing.T) {
	var stored *model.Payout
	payouts := &mockPayoutRepository{
		createFunc: func(ctx context.Context, p *model.Payout) error {
			stored = p
			return nil
		},
	}
	fx := &mockConverter{}
	svc := NewPayoutService(payouts, projectRepoReturning(eurProject("p7")), fx)

	got, err := svc.Add(context.Background(), PayoutInput{
		ProjectID:     "p7",
		Amount:        decimal.NewFromInt(50),
		Currency:      model.CurrencyEUR,
		RecipientName: "Jan Kowalski",
		Date:          time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.calls != 0 {
		t.Errorf("expected zero conversion calls, got %d", fx.calls)
	}
	if !got.ConvertedAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected converted_amount 50, got %s", got.ConvertedAmount)
	}
	if stored.RecipientName != "Jan Kowalski" {
		t.Errorf("unexpected recipient: %q", stored.RecipientName)
	}
}

func TestPayoutService_Add_ConvertsWhenCurrenciesDiffer(t *testing.T) {
	payouts := &mockPayoutRepository{}
	fx := &mockConverter{
		convertFunc: func(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
			return decimal.RequireFromString("212.85"), nil
		},
	}
	svc := NewPayoutService(payouts, projectRepoReturning(eurProject("p7")), fx)

	got, err := svc.Add(context.Background(), PayoutInput{
		ProjectID:     "p7",
		Amount:        decimal.NewFromInt(900),
		Currency:      model.CurrencyPLN,
		RecipientName: "Klinika dla Zwierząt",
		Date:          time.Now(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fx.calls != 1 {
		t.Errorf("expected one conversion call, got %d", fx.calls)
	}
	if !got.ConvertedAmount.Equal(decimal.RequireFromString("212.85")) {
		t.Errorf("expected converted_amount 212.85, got %s", got.ConvertedAmount)
	}
	if !got.Amount.Equal(decimal.NewFromInt(900)) {
		t.Errorf("payout must keep the original amount, got %s", got.Amount)
	}
}

func TestPayoutService_Add_ConversionUnavailableAbortsBeforeWrite(t *testing.T) {
	created := false
	payouts := &mockPayoutRepository{
		createFunc: func(ctx context.Context, p *model.Payout) error {
			created = true
			return nil
		},
	}
	fx := &mockConverter{
		convertFunc: func(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
			return decimal.Zero, exchange.ErrUnavailable
		},
	}
	svc := NewPayoutService(payouts, projectRepoReturning(eurProject("p7")), fx)

	_, err := svc.Add(context.Background(), PayoutInput{
		ProjectID: "p7", Amount: decimal.NewFromInt(10), Currency: model.CurrencyPLN,
		RecipientName: "x", Date: time.Now(),
	})
	if !errors.Is(err, exchange.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if created {
		t.Error("no ledger entry may be written when conversion fails")
	}
}

func TestPayoutService_Add_Validation(t *testing.T) {
	svc := NewPayoutService(&mockPayoutRepository{}, projectRepoReturning(eurProject("p7")), &mockConverter{})

	tests := []struct {
		name  string
		in    PayoutInput
		field string
	}{
		{"zero amount", PayoutInput{ProjectID: "p7", Currency: "EUR", RecipientName: "x", Date: time.Now()}, "amount"},
		{"bad currency", PayoutInput{ProjectID: "p7", Amount: decimal.NewFromInt(1), Currency: "USD", RecipientName: "x", Date: time.Now()}, "currency"},
		{"missing recipient", PayoutInput{ProjectID: "p7", Amount: decimal.NewFromInt(1), Currency: "EUR", Date: time.Now()}, "recipient_name"},
		{"missing date", PayoutInput{ProjectID: "p7", Amount: decimal.NewFromInt(1), Currency: "EUR", RecipientName: "x"}, "payout_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), tt.in)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve[tt.field]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.field, ve)
			}
		})
	}
}

func TestPayoutService_Add_UnknownProject(t *testing.T) {
	svc := NewPayoutService(&mockPayoutRepository{}, projectRepoReturning(nil), &mockConverter{})
	_, err := svc.Add(context.Background(), PayoutInput{
		ProjectID: "missing", Amount: decimal.NewFromInt(10), Currency: "EUR",
		RecipientName: "x", Date: time.Now(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// PayoutService.Remove / ListByDateRange tests
// ---------------------------------------------------------------------------

func TestPayoutService_Remove_PropagatesNotFound(t *testing.T) {
	payouts := &mockPayoutRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return repository.ErrNotFound
		},
	}
	svc := NewPayoutService(payouts, &mockProjectRepository{}, &mockConverter{})

	if err := svc.Remove(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPayoutService_ListByDateRange_PassesBounds(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	var gotStart, gotEnd *time.Time
	payouts := &mockPayoutRepository{
		listRangeFunc: func(ctx context.Context, s, e *time.Time) ([]*model.Payout, error) {
			gotStart, gotEnd = s, e
			return []*model.Payout{}, nil
		},
	}
	svc := NewPayoutService(payouts, &mockProjectRepository{}, &mockConverter{})

	_, err := svc.ListByDateRange(context.Background(), &start, &end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStart == nil || !gotStart.Equal(start) || gotEnd == nil || !gotEnd.Equal(end) {
		t.Errorf("bounds not passed through: start=%v end=%v", gotStart, gotEnd)
	}
}
