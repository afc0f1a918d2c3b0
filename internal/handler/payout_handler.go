package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/sanctuary/backend/internal/service"
	"github.com/sanctuary/backend/pkg/exchange"
	"github.com/shopspring/decimal"
)

// PayoutHandler handles payout endpoints (admin only).
type PayoutHandler struct {
	svc service.PayoutService
}

// NewPayoutHandler creates a PayoutHandler.
func NewPayoutHandler(svc service.PayoutService) *PayoutHandler {
	return &PayoutHandler{svc: svc}
}

// List handles GET /api/admin/payouts.
func (h *PayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	payouts, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("payout list failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "list_failed"})
		return
	}
	if payouts == nil {
		payouts = []*model.Payout{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"payouts": payouts})
}

type payoutCreateRequest struct {
	ProjectID     string          `json:"project_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	RecipientName string          `json:"recipient_name"`
	Date          string          `json:"payout_date"` // YYYY-MM-DD
	Note          string          `json:"note"`
}

// Create handles POST /api/admin/payouts.
func (h *PayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req payoutCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}
	date, ok := parseDate(req.Date)
	if !ok || date == nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_date"})
		return
	}

	p, err := h.svc.Add(r.Context(), service.PayoutInput{
		ProjectID:     req.ProjectID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		RecipientName: req.RecipientName,
		Date:          *date,
		Note:          req.Note,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "project_not_found"})
			return
		}
		if errors.Is(err, exchange.ErrUnavailable) {
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "conversion_unavailable"})
			return
		}
		var ve service.ValidationError
		if errors.As(err, &ve) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "validation_failed", "fields": ve})
			return
		}
		slog.Error("payout create failed", "error", err, "project_id", req.ProjectID)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "create_failed"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

// Delete handles DELETE /api/admin/payouts/{id}.
func (h *PayoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := r.PathValue("id")

	if err := h.svc.Remove(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		slog.Error("payout delete failed", "error", err, "payout_id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "delete_failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// Report handles GET /api/admin/payouts/report?start=&end=.
// Both bounds are inclusive and optional.
func (h *PayoutHandler) Report(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	start, ok := parseDate(r.URL.Query().Get("start"))
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_start"})
		return
	}
	end, ok := parseDate(r.URL.Query().Get("end"))
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_end"})
		return
	}

	payouts, err := h.svc.ListByDateRange(r.Context(), start, end)
	if err != nil {
		slog.Error("payout report failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "report_failed"})
		return
	}
	if payouts == nil {
		payouts = []*model.Payout{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"payouts": payouts})
}
