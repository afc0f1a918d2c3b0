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

// DonationHandler handles internal-donation endpoints (admin only).
type DonationHandler struct {
	svc service.DonationService
}

// NewDonationHandler creates a DonationHandler.
func NewDonationHandler(svc service.DonationService) *DonationHandler {
	return &DonationHandler{svc: svc}
}

// List handles GET /api/admin/donations.
func (h *DonationHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	donations, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("donation list failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "list_failed"})
		return
	}
	if donations == nil {
		donations = []*model.InternalDonation{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"donations": donations})
}

type donationCreateRequest struct {
	ProjectID string          `json:"project_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Date      string          `json:"donation_date"` // YYYY-MM-DD
	Note      string          `json:"note"`
}

// Create handles POST /api/admin/donations.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req donationCreateRequest
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

	d, err := h.svc.Add(r.Context(), service.DonationInput{
		ProjectID: req.ProjectID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Date:      *date,
		Note:      req.Note,
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
		slog.Error("donation create failed", "error", err, "project_id", req.ProjectID)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "create_failed"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(d)
}

// Delete handles DELETE /api/admin/donations/{id}.
func (h *DonationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := r.PathValue("id")

	if err := h.svc.Remove(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		slog.Error("donation delete failed", "error", err, "donation_id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "delete_failed"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
