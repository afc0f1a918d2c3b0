package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/sanctuary/backend/internal/service"
	"github.com/sanctuary/backend/internal/storage"
	"github.com/shopspring/decimal"
)

// RequestHandler handles support-request endpoints.
type RequestHandler struct {
	svc   service.RequestService
	store storage.Storage
}

// NewRequestHandler creates a RequestHandler.
func NewRequestHandler(svc service.RequestService, store storage.Storage) *RequestHandler {
	return &RequestHandler{svc: svc, store: store}
}

type requestSubmissionDTO struct {
	ApplicantType string `json:"applicant_type"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	City          string `json:"city"`

	Species      string `json:"species"`
	SpeciesOther string `json:"species_other"`
	AnimalName   string `json:"animal_name"`
	AnimalAge    string `json:"animal_age"`
	AnimalsCount int    `json:"animals_count"`

	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	AmountType string          `json:"amount_type"`
	Deadline   string          `json:"deadline"` // YYYY-MM-DD

	TreatmentOngoing  bool `json:"treatment_ongoing"`
	NeedsInstallments bool `json:"needs_installments"`

	PayoutName        string `json:"payout_name"`
	PayoutIBAN        string `json:"payout_iban"`
	PayoutBankName    string `json:"payout_bank_name"`
	PayoutBankCountry string `json:"payout_bank_country"`
	PayoutSWIFT       string `json:"payout_swift"`
	PayoutAddress     string `json:"payout_address"`

	ConsentContact bool   `json:"consent_contact"`
	ConsentTerms   bool   `json:"consent_terms"`
	Language       string `json:"language"`
}

func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// Create handles POST /api/requests (public submission).
// Multipart body: a "payload" JSON field plus "photos" / "documents" files.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_multipart"})
		return
	}

	var dto requestSubmissionDTO
	if err := json.Unmarshal([]byte(r.FormValue("payload")), &dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	deadline, ok := parseDate(dto.Deadline)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_deadline"})
		return
	}

	photos, err := saveUploads(r.Context(), h.store, r.MultipartForm, "photos", "requests", model.FileTypePhoto)
	if err == nil {
		var docs []service.FileInput
		docs, err = saveUploads(r.Context(), h.store, r.MultipartForm, "documents", "requests", model.FileTypeDocument)
		photos = append(photos, docs...)
	}
	if err != nil {
		slog.Error("request upload failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "upload_failed"})
		return
	}

	in := service.RequestSubmission{
		ApplicantType:     dto.ApplicantType,
		FullName:          dto.FullName,
		Email:             dto.Email,
		Phone:             dto.Phone,
		Country:           dto.Country,
		City:              dto.City,
		Species:           dto.Species,
		SpeciesOther:      dto.SpeciesOther,
		AnimalName:        dto.AnimalName,
		AnimalAge:         dto.AnimalAge,
		AnimalsCount:      dto.AnimalsCount,
		Amount:            dto.Amount,
		Currency:          dto.Currency,
		AmountType:        dto.AmountType,
		Deadline:          deadline,
		TreatmentOngoing:  dto.TreatmentOngoing,
		NeedsInstallments: dto.NeedsInstallments,
		PayoutName:        dto.PayoutName,
		PayoutIBAN:        dto.PayoutIBAN,
		PayoutBankName:    dto.PayoutBankName,
		PayoutBankCountry: dto.PayoutBankCountry,
		PayoutSWIFT:       dto.PayoutSWIFT,
		PayoutAddress:     dto.PayoutAddress,
		ConsentContact:    dto.ConsentContact,
		ConsentTerms:      dto.ConsentTerms,
		Language:          dto.Language,
	}

	req, err := h.svc.Create(r.Context(), in, photos)
	if err != nil {
		var ve service.ValidationError
		if errors.As(err, &ve) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "validation_failed", "fields": ve})
			return
		}
		slog.Error("request create failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "create_failed"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(req)
}

// List handles GET /api/admin/requests?status= (admin).
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	requests, err := h.svc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		var ve service.ValidationError
		if errors.As(err, &ve) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "validation_failed", "fields": ve})
			return
		}
		slog.Error("request list failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "list_failed"})
		return
	}
	if requests == nil {
		requests = []*model.Request{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"requests": requests})
}

// Get handles GET /api/admin/requests/{id} (admin). Files come back grouped
// by type.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		slog.Error("request get failed", "error", err, "request_id", r.PathValue("id"))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "get_failed"})
		return
	}

	photos := []*model.RequestFile{}
	documents := []*model.RequestFile{}
	for _, f := range req.Files {
		if f.Type == model.FileTypePhoto {
			photos = append(photos, f)
		} else {
			documents = append(documents, f)
		}
	}
	req.Files = nil

	_ = json.NewEncoder(w).Encode(map[string]any{
		"request":   req,
		"photos":    photos,
		"documents": documents,
	})
}

type materializationDTO struct {
	ProjectStatus string `json:"project_status"`
	Slug          string `json:"slug"`
	IsUrgent      bool   `json:"is_urgent"`

	Title        model.Localized `json:"title"`
	Description  model.Localized `json:"description"`
	Country      model.Localized `json:"country"`
	AnimalAge    model.Localized `json:"animal_age"`
	SpeciesOther model.Localized `json:"species_other"`

	AmountTarget    decimal.Decimal `json:"amount_target"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
	Deadline        string          `json:"deadline"` // YYYY-MM-DD
	AnimalsCount    int             `json:"animals_count"`

	TransferFileIDs []string `json:"transfer_file_ids"`
	CoverFileID     string   `json:"cover_file_id"`
}

type statusChangeDTO struct {
	Status          string              `json:"status"`
	Materialization *materializationDTO `json:"materialization"`
}

// PatchStatus handles PATCH /api/admin/requests/{id}/status (admin).
// Plain JSON for reject/return-to-pending; multipart with a "payload" JSON
// field (plus optional "new_photos" / "new_documents" files) for approval.
func (h *RequestHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := r.PathValue("id")

	var dto statusChangeDTO
	var newPhotos, newDocuments []service.FileInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_multipart"})
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload")), &dto); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
			return
		}

		var err error
		newPhotos, err = saveUploads(r.Context(), h.store, r.MultipartForm, "new_photos", "projects", model.FileTypePhoto)
		if err == nil {
			newDocuments, err = saveUploads(r.Context(), h.store, r.MultipartForm, "new_documents", "projects", model.FileTypeDocument)
		}
		if err != nil {
			slog.Error("materialization upload failed", "error", err, "request_id", id)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "upload_failed"})
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_json"})
		return
	}

	var m *service.Materialization
	if dto.Materialization != nil {
		deadline, ok := parseDate(dto.Materialization.Deadline)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_deadline"})
			return
		}
		m = &service.Materialization{
			ProjectStatus:   dto.Materialization.ProjectStatus,
			Slug:            dto.Materialization.Slug,
			IsUrgent:        dto.Materialization.IsUrgent,
			Title:           dto.Materialization.Title,
			Description:     dto.Materialization.Description,
			Country:         dto.Materialization.Country,
			AnimalAge:       dto.Materialization.AnimalAge,
			SpeciesOther:    dto.Materialization.SpeciesOther,
			AmountTarget:    dto.Materialization.AmountTarget,
			AmountCollected: dto.Materialization.AmountCollected,
			Deadline:        deadline,
			AnimalsCount:    dto.Materialization.AnimalsCount,
			TransferFileIDs: dto.Materialization.TransferFileIDs,
			CoverFileID:     dto.Materialization.CoverFileID,
			NewFiles:        append(newPhotos, newDocuments...),
		}
	}

	project, err := h.svc.ChangeStatus(r.Context(), id, dto.Status, m)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
			return
		}
		if errors.Is(err, service.ErrInvalidTransition) {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_transition"})
			return
		}
		var ve service.ValidationError
		if errors.As(err, &ve) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "validation_failed", "fields": ve})
			return
		}
		slog.Error("status change failed", "error", err, "request_id", id)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "status_change_failed"})
		return
	}

	resp := map[string]any{"ok": true}
	if project != nil {
		resp["project"] = project
	}
	_ = json.NewEncoder(w).Encode(resp)
}
