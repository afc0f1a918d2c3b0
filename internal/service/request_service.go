package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	goslug "github.com/gosimple/slug"
	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/shopspring/decimal"
)

// allowedTransitions is the full transition set of the request state machine.
// Every status is re-enterable by an admin action (reversible moderation);
// anything not listed here is rejected with ErrInvalidTransition.
var allowedTransitions = map[string]map[string]bool{
	model.RequestStatusPending: {
		model.RequestStatusApproved: true,
		model.RequestStatusRejected: true,
	},
	model.RequestStatusApproved: {
		model.RequestStatusPending:  true,
		model.RequestStatusRejected: true,
	},
	model.RequestStatusRejected: {
		model.RequestStatusPending:  true,
		model.RequestStatusApproved: true,
	},
}

// FileInput describes a stored upload: the storage collaborator has already
// written the bytes; the core only records the returned path.
type FileInput struct {
	Path         string
	Type         string
	OriginalName string
}

// RequestSubmission carries a public support-request form.
type RequestSubmission struct {
	ApplicantType string
	FullName      string
	Email         string
	Phone         string
	Country       string
	City          string

	Species      string
	SpeciesOther string
	AnimalName   string
	AnimalAge    string
	AnimalsCount int

	Amount     decimal.Decimal
	Currency   string
	AmountType string
	Deadline   *time.Time

	TreatmentOngoing  bool
	NeedsInstallments bool

	PayoutName        string
	PayoutIBAN        string
	PayoutBankName    string
	PayoutBankCountry string
	PayoutSWIFT       string
	PayoutAddress     string

	ConsentContact bool
	ConsentTerms   bool
	Language       string
}

// Materialization carries the admin-supplied overrides that turn an approved
// request into a project.
type Materialization struct {
	ProjectStatus string // admin decision, defaults to draft
	Slug          string // defaults to slugified animal name + request id
	IsUrgent      bool

	Title        model.Localized
	Description  model.Localized
	Country      model.Localized
	AnimalAge    model.Localized
	SpeciesOther model.Localized // required per language only when species is "other"

	AmountTarget    decimal.Decimal
	AmountCollected decimal.Decimal // opening balance, usually zero
	Deadline        *time.Time
	AnimalsCount    int // defaults to the request's count

	TransferFileIDs []string // request file ids to carry over
	CoverFileID     string   // must be among TransferFileIDs, else silently dropped
	NewFiles        []FileInput
}

// RequestService owns the request lifecycle and project materialization.
type RequestService interface {
	// Create validates and stores a public submission with its attachments.
	Create(ctx context.Context, in RequestSubmission, files []FileInput) (*model.Request, error)
	// List returns requests filtered by status (empty = all).
	List(ctx context.Context, status string) ([]*model.Request, error)
	// Get returns one request with its files.
	Get(ctx context.Context, id string) (*model.Request, error)
	// ChangeStatus applies an admin status transition. A transition to
	// approved materializes the request into a project and returns it;
	// other transitions return a nil project.
	ChangeStatus(ctx context.Context, id, to string, m *Materialization) (*model.Project, error)
}

type requestService struct {
	requests repository.RequestRepository
	projects repository.ProjectRepository
	now      func() time.Time
}

// NewRequestService creates a RequestService.
func NewRequestService(requests repository.RequestRepository, projects repository.ProjectRepository) RequestService {
	return &requestService{requests: requests, projects: projects, now: time.Now}
}

func (s *requestService) Create(ctx context.Context, in RequestSubmission, files []FileInput) (*model.Request, error) {
	if ve := validateSubmission(in, files); len(ve) > 0 {
		return nil, ve
	}

	count := in.AnimalsCount
	if count == 0 {
		count = 1
	}

	req := &model.Request{
		ApplicantType:     in.ApplicantType,
		FullName:          in.FullName,
		Email:             in.Email,
		Phone:             in.Phone,
		Country:           in.Country,
		City:              in.City,
		Species:           in.Species,
		SpeciesOther:      in.SpeciesOther,
		AnimalName:        in.AnimalName,
		AnimalAge:         in.AnimalAge,
		AnimalsCount:      count,
		Amount:            in.Amount,
		Currency:          in.Currency,
		AmountType:        in.AmountType,
		Deadline:          in.Deadline,
		TreatmentOngoing:  in.TreatmentOngoing,
		NeedsInstallments: in.NeedsInstallments,
		PayoutName:        in.PayoutName,
		PayoutIBAN:        in.PayoutIBAN,
		PayoutBankName:    in.PayoutBankName,
		PayoutBankCountry: in.PayoutBankCountry,
		PayoutSWIFT:       in.PayoutSWIFT,
		PayoutAddress:     in.PayoutAddress,
		ConsentContact:    in.ConsentContact,
		ConsentTerms:      in.ConsentTerms,
		Language:          in.Language,
		Status:            model.RequestStatusPending,
	}

	var reqFiles []*model.RequestFile
	for _, f := range files {
		reqFiles = append(reqFiles, &model.RequestFile{
			Path:         f.Path,
			Type:         f.Type,
			OriginalName: f.OriginalName,
		})
	}

	if err := s.requests.CreateWithFiles(ctx, req, reqFiles); err != nil {
		return nil, err
	}
	req.Files = reqFiles
	return req, nil
}

func (s *requestService) List(ctx context.Context, status string) ([]*model.Request, error) {
	if status != "" && !model.ValidRequestStatus(status) {
		return nil, ValidationError{"status": "must be pending, approved or rejected"}
	}
	return s.requests.List(ctx, status)
}

func (s *requestService) Get(ctx context.Context, id string) (*model.Request, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *requestService) ChangeStatus(ctx context.Context, id, to string, m *Materialization) (*model.Project, error) {
	if !model.ValidRequestStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !allowedTransitions[req.Status][to] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, to)
	}

	if to != model.RequestStatusApproved {
		return nil, s.requests.UpdateStatus(ctx, id, to)
	}

	// 既に実体化済みの申請の再承認はステータス変更のみ（プロジェクト重複を作らない）
	if existing, err := s.projects.GetByRequestID(ctx, id); err == nil {
		if err := s.requests.UpdateStatus(ctx, id, to); err != nil {
			return nil, err
		}
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return s.materialize(ctx, req, m)
}

func (s *requestService) materialize(ctx context.Context, req *model.Request, m *Materialization) (*model.Project, error) {
	if m == nil {
		return nil, ValidationError{"materialization": "is required when approving"}
	}
	if ve := validateMaterialization(req, m, s.now()); len(ve) > 0 {
		return nil, ve
	}

	slug := m.Slug
	if slug == "" {
		slug = DeriveSlug(req.AnimalName, req.ID)
	}
	status := m.ProjectStatus
	if status == "" {
		status = model.ProjectStatusDraft
	}
	count := m.AnimalsCount
	if count == 0 {
		count = req.AnimalsCount
	}

	// Attachment selection: carried-over files keep their stored paths;
	// brand-new files were stored by the upload collaborator before this call.
	byID := make(map[string]*model.RequestFile, len(req.Files))
	for _, f := range req.Files {
		byID[f.ID] = f
	}

	var files []*model.ProjectFile
	for _, fid := range m.TransferFileIDs {
		src, ok := byID[fid]
		if !ok {
			return nil, ValidationError{"files": fmt.Sprintf("id %s does not belong to this request", fid)}
		}
		files = append(files, &model.ProjectFile{
			Path:         src.Path,
			Type:         src.Type,
			OriginalName: src.OriginalName,
			// Cover soft-fail: an id outside the transfer set simply
			// yields a project without a cover.
			IsCover: m.CoverFileID != "" && fid == m.CoverFileID,
		})
	}
	for _, f := range m.NewFiles {
		files = append(files, &model.ProjectFile{
			Path:         f.Path,
			Type:         f.Type,
			OriginalName: f.OriginalName,
		})
	}

	requestID := req.ID
	p := &model.Project{
		RequestID:       &requestID,
		Status:          status,
		Slug:            slug,
		IsUrgent:        m.IsUrgent,
		FullName:        req.FullName,
		ApplicantType:   req.ApplicantType,
		Species:         req.Species,
		SpeciesOther:    m.SpeciesOther,
		AnimalName:      req.AnimalName,
		AnimalsCount:    count,
		Title:           m.Title,
		Description:     m.Description,
		Country:         m.Country,
		AnimalAge:       m.AnimalAge,
		AmountTarget:    m.AmountTarget,
		AmountCollected: m.AmountCollected,
		AmountPaid:      decimal.Zero,
		Currency:        req.Currency,
		Deadline:        m.Deadline,
	}

	if err := s.projects.Materialize(ctx, p, files); err != nil {
		return nil, err
	}
	p.Files = files
	return p, nil
}

// DeriveSlug builds the default project slug from the animal name and the
// originating request id: lowercase, diacritics stripped, non-alphanumerics
// collapsed to hyphens, id suffix.
func DeriveSlug(animalName, requestID string) string {
	return goslug.Make(animalName) + "-" + requestID
}

func validateSubmission(in RequestSubmission, files []FileInput) ValidationError {
	ve := ValidationError{}
	if !model.ValidApplicantType(in.ApplicantType) {
		ve["applicant_type"] = "must be person, organization or vetClinic"
	}
	if in.FullName == "" {
		ve["full_name"] = "is required"
	}
	if in.Email == "" {
		ve["email"] = "is required"
	}
	if in.Country == "" {
		ve["country"] = "is required"
	}
	if !model.ValidSpecies(in.Species) {
		ve["species"] = "must be rat, guineaPig or other"
	} else if in.Species == model.SpeciesOther && in.SpeciesOther == "" {
		ve["species_other"] = "is required when species is other"
	}
	if in.AnimalName == "" {
		ve["animal_name"] = "is required"
	}
	if in.AnimalsCount < 0 {
		ve["animals_count"] = "must not be negative"
	}
	if !in.Amount.IsPositive() {
		ve["amount"] = "must be greater than zero"
	}
	if !model.ValidCurrency(in.Currency) {
		ve["currency"] = "must be EUR or PLN"
	}
	if !model.ValidAmountType(in.AmountType) {
		ve["amount_type"] = "must be estimated or exact"
	}
	if !in.ConsentTerms {
		ve["consent_terms"] = "must be accepted"
	}
	if in.Language == "" {
		ve["language"] = "is required"
	}
	for _, f := range files {
		if !model.ValidFileType(f.Type) {
			ve["files"] = "type must be photo or document"
			break
		}
	}
	return ve
}

func validateMaterialization(req *model.Request, m *Materialization, now time.Time) ValidationError {
	ve := ValidationError{}

	requireLocalized(ve, "title", m.Title)
	requireLocalized(ve, "description", m.Description)
	requireLocalized(ve, "country", m.Country)
	if req.Species == model.SpeciesOther {
		requireLocalized(ve, "species_other", m.SpeciesOther)
	}

	if !m.AmountTarget.IsPositive() {
		ve["amount_target"] = "must be greater than zero"
	}
	if m.AmountCollected.IsNegative() {
		ve["amount_collected"] = "must not be negative"
	}
	if m.Deadline != nil && m.Deadline.Before(now) {
		ve["deadline"] = "must not be in the past"
	}
	if m.AnimalsCount < 0 || (m.AnimalsCount == 0 && req.AnimalsCount < 1) {
		ve["animals_count"] = "must be at least 1"
	}
	if m.ProjectStatus != "" && !model.ValidProjectStatus(m.ProjectStatus) {
		ve["status"] = "must be draft, active, completed or cancelled"
	}
	for _, f := range m.NewFiles {
		if !model.ValidFileType(f.Type) {
			ve["files"] = "type must be photo or document"
			break
		}
	}
	return ve
}

// requireLocalized は全対応言語のテキストが非空であることを検証する
func requireLocalized(ve ValidationError, field string, loc model.Localized) {
	for _, lang := range model.Languages {
		if loc[lang] == "" {
			ve[field] = fmt.Sprintf("translation for %q is required", lang)
			return
		}
	}
}
