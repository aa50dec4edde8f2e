package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/domain/records"
	"github.com/badpower45/ttyyttmed/internal/domain/scheduling"
	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

// -- Mocks --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*Patient, error) {
	for _, p := range m.patients {
		if p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) List(_ context.Context, _ pagination.Params) ([]Patient, int, error) {
	out := []Patient{}
	for _, p := range m.patients {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

type mockRecordSource struct {
	byPatient map[uuid.UUID][]records.MedicalRecord
}

func (m *mockRecordSource) ListByPatient(_ context.Context, id uuid.UUID) ([]records.MedicalRecord, error) {
	return m.byPatient[id], nil
}

type mockApptSource struct {
	byPatient map[uuid.UUID][]scheduling.Appointment
}

func (m *mockApptSource) UpcomingForPatient(_ context.Context, id uuid.UUID) ([]scheduling.Appointment, error) {
	return m.byPatient[id], nil
}

type fixture struct {
	svc   *Service
	repo  *mockRepo
	recs  *mockRecordSource
	appts *mockApptSource
}

func newFixture() *fixture {
	repo := newMockRepo()
	recs := &mockRecordSource{byPatient: make(map[uuid.UUID][]records.MedicalRecord)}
	appts := &mockApptSource{byPatient: make(map[uuid.UUID][]scheduling.Appointment)}
	return &fixture{svc: NewService(repo, recs, appts), repo: repo, recs: recs, appts: appts}
}

// -- Tests --

func TestCreate_Succeeds(t *testing.T) {
	f := newFixture()
	p, err := f.svc.Create(context.Background(), CreateInput{
		Name: "Ana", Age: 34, Gender: "Female", BloodType: "O+",
		ChronicDiseases: []string{"asthma"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != nil {
		t.Error("staff-created patient without user_id must stay unlinked")
	}
	if p.Allergies == nil {
		t.Error("allergies must be an empty list, not nil")
	}
}

func TestCreate_Validates(t *testing.T) {
	f := newFixture()
	cases := []CreateInput{
		{Name: "", Age: 30},
		{Name: "Ana", Age: -1},
		{Name: "Ana", Age: 200},
	}
	for i, in := range cases {
		if _, err := f.svc.Create(context.Background(), in); apierr.KindOf(err) != apierr.Validation {
			t.Errorf("case %d: expected Validation, got %v", i, err)
		}
	}
}

func TestCreateGuest_HasNoUser(t *testing.T) {
	f := newFixture()
	id, err := f.svc.CreateGuest(context.Background(), "Walk In", 50, "Male")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := f.svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserID != nil {
		t.Error("guest patients must not be linked to a user account")
	}
}

func TestUpdate_StaffUpdatesAnything(t *testing.T) {
	f := newFixture()
	p, _ := f.svc.Create(context.Background(), CreateInput{Name: "Ana", Age: 34})

	name := "Ana Maria"
	diseases := []string{"diabetes"}
	staff := auth.Principal{UserID: uuid.New().String(), Role: auth.RoleDoctor}
	updated, err := f.svc.Update(context.Background(), staff, p.ID, UpdateInput{
		Name: &name, ChronicDiseases: &diseases,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Ana Maria" || len(updated.ChronicDiseases) != 1 {
		t.Errorf("partial update not applied: %+v", updated)
	}
	if updated.Age != 34 {
		t.Error("unset fields must be left unchanged")
	}
}

func TestUpdate_PatientOwnRecordOnly(t *testing.T) {
	f := newFixture()
	ownUser := uuid.New()
	own, _ := f.svc.Create(context.Background(), CreateInput{Name: "Ana", Age: 34, UserID: &ownUser})
	other, _ := f.svc.Create(context.Background(), CreateInput{Name: "Omar", Age: 41})

	caller := auth.Principal{UserID: ownUser.String(), Role: auth.RolePatient}
	age := 35

	if _, err := f.svc.Update(context.Background(), caller, own.ID, UpdateInput{Age: &age}); err != nil {
		t.Errorf("updating own record should succeed, got %v", err)
	}
	_, err := f.svc.Update(context.Background(), caller, other.ID, UpdateInput{Age: &age})
	if apierr.KindOf(err) != apierr.Authorization {
		t.Errorf("expected Authorization for foreign record, got %v", err)
	}
}

func TestUpdate_PatientCannotTouchClinicalFields(t *testing.T) {
	f := newFixture()
	ownUser := uuid.New()
	own, _ := f.svc.Create(context.Background(), CreateInput{Name: "Ana", Age: 34, UserID: &ownUser})

	caller := auth.Principal{UserID: ownUser.String(), Role: auth.RolePatient}
	allergies := []string{"penicillin"}
	_, err := f.svc.Update(context.Background(), caller, own.ID, UpdateInput{Allergies: &allergies})
	if apierr.KindOf(err) != apierr.Authorization {
		t.Errorf("expected Authorization for clinical fields, got %v", err)
	}
}

func TestUpdate_UnknownPatient(t *testing.T) {
	f := newFixture()
	staff := auth.Principal{UserID: uuid.New().String(), Role: auth.RoleAdmin}
	name := "x"
	_, err := f.svc.Update(context.Background(), staff, uuid.New(), UpdateInput{Name: &name})
	if apierr.KindOf(err) != apierr.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestHistory_ComposesAllThreeViews(t *testing.T) {
	f := newFixture()
	p, _ := f.svc.Create(context.Background(), CreateInput{Name: "Ana", Age: 34})

	f.recs.byPatient[p.ID] = []records.MedicalRecord{
		{ID: uuid.New(), PatientID: p.ID, VisitDate: "2026-08-20", Diagnosis: "flu"},
	}
	f.appts.byPatient[p.ID] = []scheduling.Appointment{
		{ID: uuid.New(), PatientID: p.ID, Date: "2026-09-15", Status: scheduling.StatusPending},
	}

	hist, err := f.svc.History(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hist.Patient.Name != "Ana" {
		t.Errorf("unexpected snapshot: %+v", hist.Patient)
	}
	if len(hist.MedicalRecords) != 1 || len(hist.UpcomingAppointments) != 1 {
		t.Errorf("incomplete history: %+v", hist)
	}
}

func TestHistory_UnknownPatient(t *testing.T) {
	f := newFixture()
	_, err := f.svc.History(context.Background(), uuid.New())
	if apierr.KindOf(err) != apierr.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestPatientIDForUser(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	p, _ := f.svc.Create(context.Background(), CreateInput{Name: "Ana", Age: 34, UserID: &userID})

	got, err := f.svc.PatientIDForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p.ID {
		t.Errorf("expected %s, got %s", p.ID, got)
	}
	if _, err := f.svc.PatientIDForUser(context.Background(), uuid.New()); apierr.KindOf(err) != apierr.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}
