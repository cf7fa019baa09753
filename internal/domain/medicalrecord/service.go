package medicalrecord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/notification"
	"github.com/clinic/clinic/internal/domain/user"
	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
)

type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

type Notifier interface {
	CreateNotification(ctx context.Context, n *notification.Notification) error
}

type AuditLogger interface {
	LogAction(ctx context.Context, actorID int64, action string) (int64, error)
}

type Options struct {
	// NotifyOnUpdate sends the patient a notification when a record is amended.
	NotifyOnUpdate bool
}

type Service struct {
	repo   Repository
	users  UserLookup
	notify Notifier
	audit  AuditLogger
	opts   Options
}

func NewService(repo Repository, users UserLookup, notify Notifier, audit AuditLogger, opts Options) *Service {
	return &Service{repo: repo, users: users, notify: notify, audit: audit, opts: opts}
}

// CreateRecord stores m, notifies the patient and returns the new id.
func (s *Service) CreateRecord(ctx context.Context, m *MedicalRecord) (int64, error) {
	if err := s.requireRole(ctx, m.PatientID, auth.RolePatient,
		"Invalid patient ID or the user is not a patient"); err != nil {
		return 0, err
	}
	if err := s.requireRole(ctx, m.DoctorID, auth.RoleDoctor,
		"Invalid doctor ID or the user is not a doctor"); err != nil {
		return 0, err
	}
	if strings.TrimSpace(m.Diagnosis) == "" {
		return 0, apperr.New(apperr.ErrValidation, "diagnosis is required")
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return 0, fmt.Errorf("create medical record: %w", err)
	}
	if err := s.notifyPatient(ctx, m.PatientID, m.DoctorID); err != nil {
		return 0, err
	}
	if _, err := s.audit.LogAction(ctx, m.DoctorID, "Created a medical record"); err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Info().Int64("record_id", m.ID).Int64("doctor_id", m.DoctorID).Msg("medical record created")
	return m.ID, nil
}

// UpdateRecord applies patch to record id. Only the doctor who authored the
// record may amend it.
func (s *Service) UpdateRecord(ctx context.Context, id int64, patch RecordPatch, actingDoctorID int64) (*MedicalRecord, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.DoctorID != actingDoctorID {
		return nil, apperr.New(apperr.ErrForbidden, "Access forbidden: You can only modify your own medical records")
	}
	if patch.IsEmpty() {
		return nil, apperr.New(apperr.ErrValidation, "no fields to update")
	}
	if patch.clearsDiagnosis() {
		return nil, apperr.New(apperr.ErrValidation, "diagnosis cannot be empty")
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("update medical record %d: %w", id, err)
	}
	patch.Apply(m)

	if s.opts.NotifyOnUpdate {
		if err := s.notifyPatient(ctx, m.PatientID, actingDoctorID); err != nil {
			return nil, err
		}
	}
	if _, err := s.audit.LogAction(ctx, actingDoctorID,
		fmt.Sprintf("Updated medical record with ID: %d", id)); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int64("record_id", id).Msg("medical record updated")
	return m, nil
}

// GetMedicalRecords returns every record for admins, a patient's own records
// for patients and the records a doctor authored for doctors.
func (s *Service) GetMedicalRecords(ctx context.Context, userID int64, role auth.Role) ([]*MedicalRecord, error) {
	switch role {
	case auth.RoleAdmin:
		return s.repo.List(ctx)
	case auth.RolePatient:
		return s.repo.ListByPatient(ctx, userID)
	case auth.RoleDoctor:
		return s.repo.ListByDoctor(ctx, userID)
	}
	return nil, apperr.New(apperr.ErrUnauthorized, "Unauthorized access")
}

func (s *Service) requireRole(ctx context.Context, userID int64, role auth.Role, msg string) error {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.ErrInvalidParticipant, msg)
	}
	if err != nil {
		return err
	}
	if u.Role != role {
		return apperr.New(apperr.ErrInvalidParticipant, msg)
	}
	return nil
}

func (s *Service) notifyPatient(ctx context.Context, patientID, doctorID int64) error {
	return s.notify.CreateNotification(ctx, &notification.Notification{
		UserID:  patientID,
		Message: fmt.Sprintf("Your medical record has been updated by doctor ID: %d.", doctorID),
		Type:    notification.TypeMedicalRecord,
	})
}
