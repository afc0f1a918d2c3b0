package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sanctuary/backend/internal/model"
	"github.com/sanctuary/backend/internal/repository"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Mock RequestRepository
// ---------------------------------------------------------------------------

type mockRequestRepository struct {
	createFunc       func(ctx context.Context, req *model.Request, files []*model.RequestFile) error
	listFunc         func(ctx context.Context, status string) ([]*model.Request, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.Request, error)
	updateStatusFunc func(ctx context.Context, id, status string) error
}

func (m *mockRequestRepository) CreateWithFiles(ctx context.Context, req *model.Request, files []*model.RequestFile) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, req, files)
	}
	return nil
}
func (m *mockRequestRepository) List(ctx context.Context, status string) ([]*model.Request, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, status)
	}
	return nil, nil
}
func (m *mockRequestRepository) GetByID(ctx context.Context, id string) (*model.Request, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}
func (m *mockRequestRepository) UpdateStatus(ctx context.Context, id, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func pendingRequest(id string) *model.Request {
	return &model.Request{
		ID:            id,
		ApplicantType: model.ApplicantPerson,
		FullName:      "Anna Nowak",
		Email:         "anna@example.com",
		Country:       "PL",
		Species:       model.SpeciesRat,
		AnimalName:    "Pepe",
		AnimalsCount:  1,
		Amount:        decimal.NewFromInt(500),
		Currency:      model.CurrencyPLN,
		AmountType:    model.AmountEstimated,
		ConsentTerms:  true,
		Language:      "pl",
		Status:        model.RequestStatusPending,
		Files: []*model.RequestFile{
			{ID: "f1", RequestID: id, Path: "requests/" + id + "/a.jpg", Type: model.FileTypePhoto, OriginalName: "a.jpg"},
			{ID: "f2", RequestID: id, Path: "requests/" + id + "/b.pdf", Type: model.FileTypeDocument, OriginalName: "b.pdf"},
		},
	}
}

func fullLocalized(text string) model.Localized {
	return model.Localized{"pl": text + " pl", "en": text + " en", "es": text + " es"}
}

func validMaterialization() *Materialization {
	deadline := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	return &Materialization{
		ProjectStatus:   model.ProjectStatusActive,
		Title:           fullLocalized("title"),
		Description:     fullLocalized("desc"),
		Country:         fullLocalized("Poland"),
		AmountTarget:    decimal.NewFromInt(500),
		AmountCollected: decimal.Zero,
		Deadline:        &deadline,
		TransferFileIDs: []string{"f1", "f2"},
		CoverFileID:     "f1",
	}
}

func newTestRequestService(requests *mockRequestRepository, projects *mockProjectRepository) *requestService {
	return &requestService{
		requests: requests,
		projects: projects,
		now:      func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}
}

// ---------------------------------------------------------------------------
// Status transition table
// ---------------------------------------------------------------------------

func TestRequestService_ChangeStatus_TransitionClosure(t *testing.T) {
	statuses := []string{
		model.RequestStatusPending,
		model.RequestStatusApproved,
		model.RequestStatusRejected,
	}
	allowed := map[[2]string]bool{
		{model.RequestStatusPending, model.RequestStatusApproved}:  true,
		{model.RequestStatusPending, model.RequestStatusRejected}:  true,
		{model.RequestStatusApproved, model.RequestStatusPending}:  true,
		{model.RequestStatusApproved, model.RequestStatusRejected}: true,
		{model.RequestStatusRejected, model.RequestStatusPending}:  true,
		{model.RequestStatusRejected, model.RequestStatusApproved}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			req := pendingRequest("r1")
			req.Status = from
			requests := &mockRequestRepository{
				getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
					return req, nil
				},
			}
			svc := newTestRequestService(requests, &mockProjectRepository{})

			_, err := svc.ChangeStatus(context.Background(), "r1", to, validMaterialization())

			if allowed[[2]string{from, to}] {
				if err != nil {
					t.Errorf("%s -> %s: expected success, got %v", from, to, err)
				}
			} else if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("%s -> %s: expected ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestRequestService_ChangeStatus_UnknownTargetStatus(t *testing.T) {
	svc := newTestRequestService(&mockRequestRepository{}, &mockProjectRepository{})
	_, err := svc.ChangeStatus(context.Background(), "r1", "archived", nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestService_ChangeStatus_RejectIsPureStatusUpdate(t *testing.T) {
	var updatedTo string
	materialized := false
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
		updateStatusFunc: func(ctx context.Context, id, status string) error {
			updatedTo = status
			return nil
		},
	}
	projects := &mockProjectRepository{
		materializeFunc: func(ctx context.Context, p *model.Project, files []*model.ProjectFile) error {
			materialized = true
			return nil
		},
	}
	svc := newTestRequestService(requests, projects)

	p, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusRejected, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Error("rejection must not return a project")
	}
	if updatedTo != model.RequestStatusRejected {
		t.Errorf("expected status update to rejected, got %q", updatedTo)
	}
	if materialized {
		t.Error("rejection must not materialize a project")
	}
}

// ---------------------------------------------------------------------------
// Materialization
// ---------------------------------------------------------------------------

func TestRequestService_Approve_MaterializesProject(t *testing.T) {
	var created *model.Project
	var createdFiles []*model.ProjectFile
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
	}
	projects := &mockProjectRepository{
		materializeFunc: func(ctx context.Context, p *model.Project, files []*model.ProjectFile) error {
			created = p
			createdFiles = files
			p.ID = "p1"
			return nil
		},
	}
	svc := newTestRequestService(requests, projects)

	p, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, validMaterialization())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || created == nil {
		t.Fatal("expected a materialized project")
	}
	if created.RequestID == nil || *created.RequestID != "r1" {
		t.Error("project must reference the originating request")
	}
	if created.FullName != "Anna Nowak" || created.Species != model.SpeciesRat || created.AnimalName != "Pepe" {
		t.Errorf("snapshot fields not copied from request: %+v", created)
	}
	if created.Currency != model.CurrencyPLN {
		t.Errorf("project currency must come from the request, got %q", created.Currency)
	}
	if !created.AmountPaid.IsZero() {
		t.Errorf("amount_paid must start at zero, got %s", created.AmountPaid)
	}
	if len(createdFiles) != 2 {
		t.Fatalf("expected 2 carried-over files, got %d", len(createdFiles))
	}
	covers := 0
	for _, f := range createdFiles {
		if f.IsCover {
			covers++
			if f.Path != "requests/r1/a.jpg" {
				t.Errorf("wrong file marked as cover: %+v", f)
			}
		}
	}
	if covers != 1 {
		t.Errorf("expected exactly one cover, got %d", covers)
	}
}

func TestRequestService_Approve_MissingTranslationFailsBeforeWrite(t *testing.T) {
	materialized := false
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
	}
	projects := &mockProjectRepository{
		materializeFunc: func(ctx context.Context, p *model.Project, files []*model.ProjectFile) error {
			materialized = true
			return nil
		},
	}
	svc := newTestRequestService(requests, projects)

	m := validMaterialization()
	m.Title = model.Localized{"pl": "Ratuj Pepe", "en": "", "es": "Salva a Pepe"}

	_, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, m)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve["title"]; !ok {
		t.Errorf("expected error on title, got %v", ve)
	}
	if materialized {
		t.Error("validation failure must abort before any write")
	}
}

func TestRequestService_Approve_SpeciesOtherRequiresAllLanguages(t *testing.T) {
	req := pendingRequest("r1")
	req.Species = model.SpeciesOther
	req.SpeciesOther = "chinchilla"
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return req, nil
		},
	}
	svc := newTestRequestService(requests, &mockProjectRepository{})

	m := validMaterialization()
	m.SpeciesOther = model.Localized{"pl": "szynszyla", "en": "chinchilla"} // es missing

	_, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, m)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve["species_other"]; !ok {
		t.Errorf("expected error on species_other, got %v", ve)
	}
}

func TestRequestService_Approve_CoverOutsideTransferSetIsDropped(t *testing.T) {
	var createdFiles []*model.ProjectFile
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
	}
	projects := &mockProjectRepository{
		materializeFunc: func(ctx context.Context, p *model.Project, files []*model.ProjectFile) error {
			createdFiles = files
			return nil
		},
	}
	svc := newTestRequestService(requests, projects)

	m := validMaterialization()
	m.TransferFileIDs = []string{"f2"}
	m.CoverFileID = "f1" // not transferred, so no cover gets set

	_, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, m)
	if err != nil {
		t.Fatalf("expected soft-fail, got error: %v", err)
	}
	for _, f := range createdFiles {
		if f.IsCover {
			t.Errorf("no file may be cover when the chosen id was not transferred: %+v", f)
		}
	}
}

func TestRequestService_Approve_UnknownTransferIDRejected(t *testing.T) {
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
	}
	svc := newTestRequestService(requests, &mockProjectRepository{})

	m := validMaterialization()
	m.TransferFileIDs = []string{"f1", "f99"}

	_, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, m)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRequestService_Approve_PastDeadlineRejected(t *testing.T) {
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
	}
	svc := newTestRequestService(requests, &mockProjectRepository{})

	m := validMaterialization()
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Deadline = &past

	_, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, m)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := ve["deadline"]; !ok {
		t.Errorf("expected error on deadline, got %v", ve)
	}
}

func TestRequestService_Approve_MissingPayloadRejected(t *testing.T) {
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return pendingRequest(id), nil
		},
	}
	svc := newTestRequestService(requests, &mockProjectRepository{})

	_, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, nil)
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRequestService_ReApprove_DoesNotDuplicateProject(t *testing.T) {
	req := pendingRequest("r1")
	req.Status = model.RequestStatusRejected // approved earlier, then rejected
	existing := &model.Project{ID: "p1", Status: model.ProjectStatusActive}

	materialized := false
	var updatedTo string
	requests := &mockRequestRepository{
		getByIDFunc: func(ctx context.Context, id string) (*model.Request, error) {
			return req, nil
		},
		updateStatusFunc: func(ctx context.Context, id, status string) error {
			updatedTo = status
			return nil
		},
	}
	projects := &mockProjectRepository{
		getByRequestIDFunc: func(ctx context.Context, requestID string) (*model.Project, error) {
			return existing, nil
		},
		materializeFunc: func(ctx context.Context, p *model.Project, files []*model.ProjectFile) error {
			materialized = true
			return nil
		},
	}
	svc := newTestRequestService(requests, projects)

	p, err := svc.ChangeStatus(context.Background(), "r1", model.RequestStatusApproved, validMaterialization())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if materialized {
		t.Error("re-approval must not create a duplicate project")
	}
	if p == nil || p.ID != "p1" {
		t.Errorf("expected the existing project back, got %+v", p)
	}
	if updatedTo != model.RequestStatusApproved {
		t.Errorf("expected plain status flip to approved, got %q", updatedTo)
	}
}

// ---------------------------------------------------------------------------
// Slug derivation
// ---------------------------------------------------------------------------

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name, id, want string
	}{
		{"Pepe", "42", "pepe-42"},
		{"Pépé Łapka", "7", "pepe-lapka-7"},
		{"Mr. Whiskers!", "abc", "mr-whiskers-abc"},
	}
	for _, tt := range tests {
		if got := DeriveSlug(tt.name, tt.id); got != tt.want {
			t.Errorf("DeriveSlug(%q, %q) = %q, want %q", tt.name, tt.id, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Public submission
// ---------------------------------------------------------------------------

func validSubmission() RequestSubmission {
	return RequestSubmission{
		ApplicantType: model.ApplicantPerson,
		FullName:      "Anna Nowak",
		Email:         "anna@example.com",
		Country:       "PL",
		Species:       model.SpeciesRat,
		AnimalName:    "Pepe",
		AnimalsCount:  1,
		Amount:        decimal.NewFromInt(500),
		Currency:      model.CurrencyPLN,
		AmountType:    model.AmountEstimated,
		ConsentTerms:  true,
		Language:      "pl",
	}
}

func TestRequestService_Create_SetsPendingStatus(t *testing.T) {
	var stored *model.Request
	requests := &mockRequestRepository{
		createFunc: func(ctx context.Context, req *model.Request, files []*model.RequestFile) error {
			stored = req
			req.ID = "r1"
			return nil
		},
	}
	svc := newTestRequestService(requests, &mockProjectRepository{})

	got, err := svc.Create(context.Background(), validSubmission(), []FileInput{
		{Path: "requests/tmp/a.jpg", Type: model.FileTypePhoto, OriginalName: "a.jpg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.RequestStatusPending {
		t.Errorf("expected pending status, got %q", stored.Status)
	}
	if len(got.Files) != 1 {
		t.Errorf("expected 1 file, got %d", len(got.Files))
	}
}

func TestRequestService_Create_Validation(t *testing.T) {
	svc := newTestRequestService(&mockRequestRepository{}, &mockProjectRepository{})

	tests := []struct {
		name   string
		mutate func(*RequestSubmission)
		field  string
	}{
		{"bad applicant type", func(s *RequestSubmission) { s.ApplicantType = "alien" }, "applicant_type"},
		{"missing name", func(s *RequestSubmission) { s.FullName = "" }, "full_name"},
		{"missing email", func(s *RequestSubmission) { s.Email = "" }, "email"},
		{"bad species", func(s *RequestSubmission) { s.Species = "hamster" }, "species"},
		{"other without text", func(s *RequestSubmission) { s.Species = model.SpeciesOther }, "species_other"},
		{"zero amount", func(s *RequestSubmission) { s.Amount = decimal.Zero }, "amount"},
		{"bad currency", func(s *RequestSubmission) { s.Currency = "USD" }, "currency"},
		{"bad amount type", func(s *RequestSubmission) { s.AmountType = "roughly" }, "amount_type"},
		{"terms not accepted", func(s *RequestSubmission) { s.ConsentTerms = false }, "consent_terms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSubmission()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in, nil)
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := ve[tt.field]; !ok {
				t.Errorf("expected error on %q, got %v", tt.field, ve)
			}
		})
	}
}

func TestRequestService_List_RejectsUnknownStatusFilter(t *testing.T) {
	svc := newTestRequestService(&mockRequestRepository{}, &mockProjectRepository{})
	_, err := svc.List(context.Background(), "archived")
	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}
