package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/badpower45/ttyyttmed/internal/platform/apierr"
	"github.com/badpower45/ttyyttmed/internal/platform/auth"
	"github.com/badpower45/ttyyttmed/pkg/pagination"
)

// -- Mocks --

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockRepo) List(_ context.Context, scope Scope, _ pagination.Params) ([]Appointment, int, error) {
	out := []Appointment{}
	for _, a := range m.appts {
		if scope.Allows(a) {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) UpcomingForPatient(_ context.Context, patientID uuid.UUID, fromDate string) ([]Appointment, error) {
	out := []Appointment{}
	for _, a := range m.appts {
		if a.PatientID != patientID {
			continue
		}
		if a.Status != StatusPending && a.Status != StatusConfirmed {
			continue
		}
		if a.Date < fromDate {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := m.appts[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	a.Status = status
	return nil
}

type mockPatientDir struct {
	names  map[uuid.UUID]string
	guests int
}

func newMockPatientDir() *mockPatientDir {
	return &mockPatientDir{names: make(map[uuid.UUID]string)}
}

func (m *mockPatientDir) NameByID(_ context.Context, id uuid.UUID) (string, error) {
	name, ok := m.names[id]
	if !ok {
		return "", fmt.Errorf("not found")
	}
	return name, nil
}

func (m *mockPatientDir) CreateGuest(_ context.Context, name string, _ int, _ string) (uuid.UUID, error) {
	id := uuid.New()
	m.names[id] = name
	m.guests++
	return id, nil
}

type mockDoctorDir struct {
	id uuid.UUID
}

func (m *mockDoctorDir) ClinicDoctorID(_ context.Context) (uuid.UUID, error) {
	return m.id, nil
}

type mockResolver struct {
	doctorByUser  map[uuid.UUID]uuid.UUID
	patientByUser map[uuid.UUID]uuid.UUID
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		doctorByUser:  make(map[uuid.UUID]uuid.UUID),
		patientByUser: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *mockResolver) DoctorIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := m.doctorByUser[userID]
	if !ok {
		return uuid.Nil, fmt.Errorf("not found")
	}
	return id, nil
}

func (m *mockResolver) PatientIDForUser(_ context.Context, userID uuid.UUID) (uuid.UUID, error) {
	id, ok := m.patientByUser[userID]
	if !ok {
		return uuid.Nil, fmt.Errorf("not found")
	}
	return id, nil
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	patients *mockPatientDir
	resolver *mockResolver
	doctorID uuid.UUID
}

func newFixture() *fixture {
	repo := newMockRepo()
	patients := newMockPatientDir()
	resolver := newMockResolver()
	doctorID := uuid.New()
	svc := NewService(repo, patients, &mockDoctorDir{id: doctorID}, resolver)
	return &fixture{svc: svc, repo: repo, patients: patients, resolver: resolver, doctorID: doctorID}
}

func staffPrincipal(role string) auth.Principal {
	return auth.Principal{UserID: uuid.New().String(), Role: role, Name: "Staff"}
}

// -- Tests --

func TestBook_AlwaysStartsPending(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	f.patients.names[patientID] = "Ana"

	a, err := f.svc.Book(context.Background(), staffPrincipal(auth.RoleReceptionist), BookInput{
		PatientID: patientID,
		Date:      "2026-09-15",
		Time:      "10:30",
		Type:      TypeGeneral,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", a.Status)
	}
	if a.PatientName != "Ana" {
		t.Errorf("expected snapshot of patient name, got %q", a.PatientName)
	}
	if a.DoctorID != f.doctorID {
		t.Error("expected booking to default to the clinic doctor")
	}
}

func TestBook_PatientBooksOnlySelf(t *testing.T) {
	f := newFixture()
	userID := uuid.New()
	ownPatientID := uuid.New()
	otherPatientID := uuid.New()
	f.resolver.patientByUser[userID] = ownPatientID
	f.patients.names[ownPatientID] = "Ana"
	f.patients.names[otherPatientID] = "Someone Else"

	p := auth.Principal{UserID: userID.String(), Role: auth.RolePatient, Name: "Ana"}
	a, err := f.svc.Book(context.Background(), p, BookInput{
		PatientID: otherPatientID,
		Date:      "2026-09-15",
		Time:      "10:30",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.PatientID != ownPatientID {
		t.Error("a patient booking must be bound to the caller's own record")
	}
}

func TestBook_ValidatesInput(t *testing.T) {
	f := newFixture()
	patientID := uuid.New()
	f.patients.names[patientID] = "Ana"
	p := staffPrincipal(auth.RoleDoctor)

	cases := []BookInput{
		{PatientID: patientID, Date: "15-09-2026", Time: "10:30"},
		{PatientID: patientID, Date: "2026-09-15", Time: "25:99"},
		{PatientID: patientID, Date: "2026-09-15", Time: "10:30", Type: "Surgery"},
	}
	for i, in := range cases {
		if _, err := f.svc.Book(context.Background(), p, in); apierr.KindOf(err) != apierr.Validation {
			t.Errorf("case %d: expected Validation, got %v", i, err)
		}
	}
}

func TestBook_UnknownPatient(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), staffPrincipal(auth.RoleDoctor), BookInput{
		PatientID: uuid.New(),
		Date:      "2026-09-15",
		Time:      "10:30",
	})
	if apierr.KindOf(err) != apierr.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestBookPublic_CreatesGuestAndPends(t *testing.T) {
	f := newFixture()
	a, err := f.svc.BookPublic(context.Background(), PublicBookingInput{
		Name:   "Walk In",
		Age:    40,
		Gender: "Male",
		Date:   "2026-09-20",
		Time:   "09:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.patients.guests != 1 {
		t.Errorf("expected one guest patient, got %d", f.patients.guests)
	}
	if a.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", a.Status)
	}
	if a.Type != TypeGeneral {
		t.Errorf("expected default type General, got %s", a.Type)
	}
}

func TestListForCaller_ScopesByRole(t *testing.T) {
	f := newFixture()

	docUser, patUser := uuid.New(), uuid.New()
	docID, patID := uuid.New(), uuid.New()
	f.resolver.doctorByUser[docUser] = docID
	f.resolver.patientByUser[patUser] = patID

	otherDoc, otherPat := uuid.New(), uuid.New()
	seed := []*Appointment{
		{PatientID: patID, DoctorID: docID, Date: "2026-09-01", Status: StatusPending},
		{PatientID: otherPat, DoctorID: docID, Date: "2026-09-02", Status: StatusPending},
		{PatientID: patID, DoctorID: otherDoc, Date: "2026-09-03", Status: StatusPending},
		{PatientID: otherPat, DoctorID: otherDoc, Date: "2026-09-04", Status: StatusPending},
	}
	for _, a := range seed {
		if err := f.repo.Create(context.Background(), a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cases := []struct {
		name      string
		principal auth.Principal
		want      int
	}{
		{"admin sees all", auth.Principal{UserID: uuid.New().String(), Role: auth.RoleAdmin}, 4},
		{"receptionist sees all", auth.Principal{UserID: uuid.New().String(), Role: auth.RoleReceptionist}, 4},
		{"doctor sees own", auth.Principal{UserID: docUser.String(), Role: auth.RoleDoctor}, 2},
		{"patient sees own", auth.Principal{UserID: patUser.String(), Role: auth.RolePatient}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appts, total, err := f.svc.ListForCaller(context.Background(), tc.principal, pagination.Params{Limit: 20})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(appts) != tc.want || total != tc.want {
				t.Errorf("expected %d appointments, got %d (total %d)", tc.want, len(appts), total)
			}
		})
	}
}

func TestScopeFor_ValuesAreExplicit(t *testing.T) {
	resolver := newMockResolver()
	docUser, docID := uuid.New(), uuid.New()
	resolver.doctorByUser[docUser] = docID

	scope, err := ScopeFor(context.Background(),
		auth.Principal{UserID: docUser.String(), Role: auth.RoleDoctor}, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.All || scope.DoctorID == nil || *scope.DoctorID != docID {
		t.Errorf("expected doctor-bound scope, got %+v", scope)
	}

	admin, err := ScopeFor(context.Background(),
		auth.Principal{UserID: uuid.New().String(), Role: auth.RoleAdmin}, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !admin.All {
		t.Errorf("expected unfiltered scope for admin, got %+v", admin)
	}
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tc := range cases {
		f := newFixture()
		a := &Appointment{PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2026-09-01", Status: tc.from}
		if err := f.repo.Create(context.Background(), a); err != nil {
			t.Fatalf("seed: %v", err)
		}

		updated, err := f.svc.UpdateStatus(context.Background(), a.ID, tc.to)
		if tc.allowed {
			if err != nil {
				t.Errorf("%s -> %s: unexpected error: %v", tc.from, tc.to, err)
				continue
			}
			if updated.Status != tc.to {
				t.Errorf("%s -> %s: status not applied", tc.from, tc.to)
			}
		} else {
			if apierr.KindOf(err) != apierr.Conflict {
				t.Errorf("%s -> %s: expected Conflict, got %v", tc.from, tc.to, err)
			}
		}
	}
}

func TestUpdateStatus_UnknownStatusAndID(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.UpdateStatus(context.Background(), uuid.New(), "ARCHIVED"); apierr.KindOf(err) != apierr.Validation {
		t.Errorf("expected Validation for unknown status, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), uuid.New(), StatusConfirmed); apierr.KindOf(err) != apierr.NotFound {
		t.Errorf("expected NotFound for unknown id, got %v", err)
	}
}

func TestUpcomingForPatient_FiltersStatusAndDate(t *testing.T) {
	f := newFixture()
	f.svc.now = func() time.Time { return time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC) }
	patID := uuid.New()

	seed := []*Appointment{
		{PatientID: patID, DoctorID: f.doctorID, Date: "2026-09-11", Status: StatusPending},
		{PatientID: patID, DoctorID: f.doctorID, Date: "2026-09-12", Status: StatusConfirmed},
		{PatientID: patID, DoctorID: f.doctorID, Date: "2026-09-13", Status: StatusCancelled},
		{PatientID: patID, DoctorID: f.doctorID, Date: "2026-09-01", Status: StatusPending},
	}
	for _, a := range seed {
		if err := f.repo.Create(context.Background(), a); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	appts, err := f.svc.UpcomingForPatient(context.Background(), patID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(appts) != 2 {
		t.Errorf("expected 2 upcoming appointments, got %d", len(appts))
	}
}
