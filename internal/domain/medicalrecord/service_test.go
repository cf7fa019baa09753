package medicalrecord

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic/clinic/internal/domain/notification"
	"github.com/clinic/clinic/internal/domain/user"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
)

// -- Mocks --

type mockRepo struct {
	records map[int64]*MedicalRecord
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*MedicalRecord)}
}

func (m *mockRepo) Create(_ context.Context, r *MedicalRecord) error {
	m.nextID++
	r.ID = m.nextID
	r.Timestamp = time.Now()
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "Medical record not found")
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, id int64, patch RecordPatch) error {
	if r, ok := m.records[id]; ok {
		patch.Apply(r)
	}
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]*MedicalRecord, error) {
	return m.filter(func(*MedicalRecord) bool { return true }), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64) ([]*MedicalRecord, error) {
	return m.filter(func(r *MedicalRecord) bool { return r.PatientID == patientID }), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID int64) ([]*MedicalRecord, error) {
	return m.filter(func(r *MedicalRecord) bool { return r.DoctorID == doctorID }), nil
}

func (m *mockRepo) filter(keep func(*MedicalRecord) bool) []*MedicalRecord {
	items := []*MedicalRecord{}
	for _, r := range m.records {
		if keep(r) {
			cp := *r
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

type mockUsers map[int64]*user.User

func (m mockUsers) GetUserByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, apperr.New(apperr.ErrNotFound, "User not found")
	}
	return u, nil
}

type mockNotifier struct {
	sent []*notification.Notification
}

func (m *mockNotifier) CreateNotification(_ context.Context, n *notification.Notification) error {
	n.ID = int64(len(m.sent) + 1)
	m.sent = append(m.sent, n)
	return nil
}

type auditEntry struct {
	actorID int64
	action  string
}

type mockAudit struct {
	entries []auditEntry
}

func (m *mockAudit) LogAction(_ context.Context, actorID int64, action string) (int64, error) {
	m.entries = append(m.entries, auditEntry{actorID, action})
	return int64(len(m.entries)), nil
}

type fixture struct {
	svc    *Service
	repo   *mockRepo
	notify *mockNotifier
	audit  *mockAudit
}

// Users: 1 patient, 2 doctor, 3 admin, 4 patient, 5 doctor.
func newFixture(opts Options) *fixture {
	users := mockUsers{
		1: {ID: 1, Role: auth.RolePatient},
		2: {ID: 2, Role: auth.RoleDoctor},
		3: {ID: 3, Role: auth.RoleAdmin},
		4: {ID: 4, Role: auth.RolePatient},
		5: {ID: 5, Role: auth.RoleDoctor},
	}
	f := &fixture{repo: newMockRepo(), notify: &mockNotifier{}, audit: &mockAudit{}}
	f.svc = NewService(f.repo, users, f.notify, f.audit, opts)
	return f
}

func (f *fixture) record(t *testing.T, patientID, doctorID int64, diagnosis string) int64 {
	t.Helper()
	id, err := f.svc.CreateRecord(context.Background(), &MedicalRecord{
		PatientID: patientID, DoctorID: doctorID, Diagnosis: diagnosis,
	})
	require.NoError(t, err)
	return id
}

func strPtr(s string) *string { return &s }

// -- CreateRecord --

func TestService_CreateRecord(t *testing.T) {
	f := newFixture(Options{})

	id := f.record(t, 1, 2, "Seasonal allergies")

	assert.Positive(t, id)
	require.Len(t, f.notify.sent, 1)
	assert.Equal(t, int64(1), f.notify.sent[0].UserID)
	assert.Equal(t, notification.TypeMedicalRecord, f.notify.sent[0].Type)
	assert.Equal(t, "Your medical record has been updated by doctor ID: 2.", f.notify.sent[0].Message)
	assert.Equal(t, []auditEntry{{2, "Created a medical record"}}, f.audit.entries)
}

func TestService_CreateRecord_InvalidParticipant(t *testing.T) {
	tests := []struct {
		name      string
		patientID int64
		doctorID  int64
	}{
		{"patient is a doctor", 5, 2},
		{"patient missing", 99, 2},
		{"doctor is a patient", 1, 4},
		{"doctor is an admin", 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Options{})
			_, err := f.svc.CreateRecord(context.Background(), &MedicalRecord{
				PatientID: tt.patientID, DoctorID: tt.doctorID, Diagnosis: "Flu",
			})
			assert.ErrorIs(t, err, apperr.ErrInvalidParticipant)
			assert.Empty(t, f.repo.records)
			assert.Empty(t, f.notify.sent)
		})
	}
}

func TestService_CreateRecord_DiagnosisRequired(t *testing.T) {
	f := newFixture(Options{})
	_, err := f.svc.CreateRecord(context.Background(), &MedicalRecord{PatientID: 1, DoctorID: 2, Diagnosis: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, f.repo.records)
}

// -- UpdateRecord --

func TestService_UpdateRecord(t *testing.T) {
	f := newFixture(Options{NotifyOnUpdate: true})
	id := f.record(t, 1, 2, "Flu")
	f.notify.sent = nil
	f.audit.entries = nil

	got, err := f.svc.UpdateRecord(context.Background(), id, RecordPatch{
		Prescriptions: strPtr("Oseltamivir 75mg"),
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, "Flu", got.Diagnosis)
	assert.Equal(t, "Oseltamivir 75mg", got.Prescriptions)
	assert.Equal(t, "Oseltamivir 75mg", f.repo.records[id].Prescriptions)
	require.Len(t, f.notify.sent, 1)
	assert.Equal(t, int64(1), f.notify.sent[0].UserID)
	assert.Equal(t, []auditEntry{{2, "Updated medical record with ID: 1"}}, f.audit.entries)
}

func TestService_UpdateRecord_NoNotificationWhenDisabled(t *testing.T) {
	f := newFixture(Options{NotifyOnUpdate: false})
	id := f.record(t, 1, 2, "Flu")
	f.notify.sent = nil

	_, err := f.svc.UpdateRecord(context.Background(), id, RecordPatch{Diagnosis: strPtr("Cold")}, 2)
	require.NoError(t, err)
	assert.Empty(t, f.notify.sent)
	assert.Len(t, f.audit.entries, 2)
}

func TestService_UpdateRecord_NotAuthor(t *testing.T) {
	f := newFixture(Options{NotifyOnUpdate: true})
	id := f.record(t, 1, 2, "Flu")
	f.notify.sent = nil
	f.audit.entries = nil

	_, err := f.svc.UpdateRecord(context.Background(), id, RecordPatch{Diagnosis: strPtr("Something else")}, 5)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.EqualError(t, err, "Access forbidden: You can only modify your own medical records")
	assert.Equal(t, "Flu", f.repo.records[id].Diagnosis)
	assert.Empty(t, f.notify.sent)
	assert.Empty(t, f.audit.entries)
}

func TestService_UpdateRecord_NotFound(t *testing.T) {
	f := newFixture(Options{})
	_, err := f.svc.UpdateRecord(context.Background(), 42, RecordPatch{Diagnosis: strPtr("x")}, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_UpdateRecord_InvalidPatch(t *testing.T) {
	f := newFixture(Options{})
	id := f.record(t, 1, 2, "Flu")

	_, err := f.svc.UpdateRecord(context.Background(), id, RecordPatch{}, 2)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.UpdateRecord(context.Background(), id, RecordPatch{Diagnosis: strPtr("")}, 2)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Flu", f.repo.records[id].Diagnosis)
}

// -- GetMedicalRecords --

func TestService_GetMedicalRecords(t *testing.T) {
	f := newFixture(Options{})
	f.record(t, 1, 2, "Flu")
	f.record(t, 4, 2, "Sprained ankle")
	f.record(t, 1, 5, "Migraine")

	patient, err := f.svc.GetMedicalRecords(context.Background(), 1, auth.RolePatient)
	require.NoError(t, err)
	require.Len(t, patient, 2)
	for _, r := range patient {
		assert.Equal(t, int64(1), r.PatientID)
	}

	doctor, err := f.svc.GetMedicalRecords(context.Background(), 2, auth.RoleDoctor)
	require.NoError(t, err)
	require.Len(t, doctor, 2)
	for _, r := range doctor {
		assert.Equal(t, int64(2), r.DoctorID)
	}

	all, err := f.svc.GetMedicalRecords(context.Background(), 3, auth.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := f.svc.GetMedicalRecords(context.Background(), 4, auth.RolePatient)
	require.NoError(t, err)
	assert.Len(t, none, 1)
}

func TestService_GetMedicalRecords_UnknownRole(t *testing.T) {
	f := newFixture(Options{})
	_, err := f.svc.GetMedicalRecords(context.Background(), 1, auth.Role("nurse"))
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
