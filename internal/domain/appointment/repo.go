package appointment

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	// GetByID returns apperr.ErrNotFound for a missing appointment.
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	// UpdateDateTime moves the appointment and clears its reminder mark.
	UpdateDateTime(ctx context.Context, id int64, dateTime string, scheduledAt time.Time) error
	Delete(ctx context.Context, id int64) error
	// ListByUser returns appointments where the user is patient or doctor.
	ListByUser(ctx context.Context, userID int64) ([]*Appointment, error)
	// ListDue returns unreminded appointments scheduled in [from, to).
	ListDue(ctx context.Context, from, to time.Time) ([]*Appointment, error)
	MarkReminded(ctx context.Context, id int64, at time.Time) error
}
