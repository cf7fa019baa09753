package appointment

import (
	"context"
	"errors"
	"fmt"

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

// Service runs the appointment workflow. Each step is a separate statement;
// a failing notification or audit append is returned to the caller without
// undoing the write before it.
type Service struct {
	repo   Repository
	users  UserLookup
	notify Notifier
	audit  AuditLogger
}

func NewService(repo Repository, users UserLookup, notify Notifier, audit AuditLogger) *Service {
	return &Service{repo: repo, users: users, notify: notify, audit: audit}
}

// CreateAppointment books a, notifies both participants and returns the new id.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) (int64, error) {
	if err := s.requireRole(ctx, a.PatientID, auth.RolePatient,
		"Invalid patient ID or the user is not a patient"); err != nil {
		return 0, err
	}
	if err := s.requireRole(ctx, a.DoctorID, auth.RoleDoctor,
		"Invalid doctor ID or the user is not a doctor"); err != nil {
		return 0, err
	}

	at, err := ParseDateTime(a.DateTime)
	if err != nil {
		return 0, apperr.New(apperr.ErrValidation, "date_time must be an ISO 8601 date and time")
	}
	a.ScheduledAt = at

	if err := s.repo.Create(ctx, a); err != nil {
		return 0, fmt.Errorf("create appointment: %w", err)
	}

	if err := s.send(ctx, a.PatientID,
		fmt.Sprintf("Your appointment with doctor ID: %d has been scheduled for %s.", a.DoctorID, a.DateTime)); err != nil {
		return 0, err
	}
	if err := s.send(ctx, a.DoctorID,
		fmt.Sprintf("A new appointment with patient ID: %d has been scheduled for %s.", a.PatientID, a.DateTime)); err != nil {
		return 0, err
	}
	if _, err := s.audit.LogAction(ctx, a.PatientID,
		fmt.Sprintf("Created appointment with ID: %d", a.ID)); err != nil {
		return 0, err
	}

	zerolog.Ctx(ctx).Info().Int64("appointment_id", a.ID).Msg("appointment created")
	return a.ID, nil
}

// RescheduleAppointment moves an existing appointment to newDateTime.
func (s *Service) RescheduleAppointment(ctx context.Context, id int64, newDateTime string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	at, err := ParseDateTime(newDateTime)
	if err != nil {
		return nil, apperr.New(apperr.ErrValidation, "date_time must be an ISO 8601 date and time")
	}

	if err := s.repo.UpdateDateTime(ctx, id, newDateTime, at); err != nil {
		return nil, fmt.Errorf("reschedule appointment %d: %w", id, err)
	}
	a.DateTime = newDateTime
	a.ScheduledAt = at
	a.RemindedAt = nil

	msg := fmt.Sprintf("Your appointment (ID: %d) has been rescheduled to %s.", id, newDateTime)
	for _, uid := range []int64{a.PatientID, a.DoctorID} {
		if err := s.send(ctx, uid, msg); err != nil {
			return nil, err
		}
	}
	if _, err := s.audit.LogAction(ctx, id,
		fmt.Sprintf("Rescheduled appointment to %s", newDateTime)); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int64("appointment_id", id).Msg("appointment rescheduled")
	return a, nil
}

// CancelAppointment deletes the appointment. Participants are notified only
// when it exists; the delete and the audit entry happen either way.
func (s *Service) CancelAppointment(ctx context.Context, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if a != nil {
		msg := fmt.Sprintf("Your appointment (ID: %d) scheduled for %s has been cancelled.", id, a.DateTime)
		for _, uid := range []int64{a.PatientID, a.DoctorID} {
			if err := s.send(ctx, uid, msg); err != nil {
				return err
			}
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete appointment %d: %w", id, err)
	}
	if _, err := s.audit.LogAction(ctx, id,
		fmt.Sprintf("Cancelled appointment with ID: %d", id)); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("appointment_id", id).Bool("existed", a != nil).Msg("appointment cancelled")
	return nil
}

// GetAppointmentsForUser lists the appointments of a patient or doctor. A user
// with no appointments gets apperr.ErrNotFound rather than an empty list.
func (s *Service) GetAppointmentsForUser(ctx context.Context, userID int64) ([]*Appointment, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.New(apperr.ErrInvalidUser, "Invalid user ID or the user is neither a patient nor a doctor")
	}
	if err != nil {
		return nil, err
	}
	switch u.Role {
	case auth.RolePatient, auth.RoleDoctor:
	default:
		return nil, apperr.New(apperr.ErrInvalidUser, "Invalid user ID or the user is neither a patient nor a doctor")
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.ErrNotFound, "No appointments found for this user")
	}
	return items, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
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

func (s *Service) send(ctx context.Context, userID int64, msg string) error {
	return s.notify.CreateNotification(ctx, &notification.Notification{
		UserID:  userID,
		Message: msg,
		Type:    notification.TypeAppointment,
	})
}
