package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/domain/notification"
)

// Reminder notifies both participants once, ahead of an upcoming appointment.
type Reminder struct {
	repo      Repository
	notify    Notifier
	interval  time.Duration
	lead      time.Duration
	logger    zerolog.Logger
	now       func() time.Time
	scheduler *gocron.Scheduler
}

func NewReminder(repo Repository, notify Notifier, interval, lead time.Duration, logger zerolog.Logger) *Reminder {
	return &Reminder{
		repo:     repo,
		notify:   notify,
		interval: interval,
		lead:     lead,
		logger:   logger.With().Str("component", "reminder").Logger(),
		now:      time.Now,
	}
}

// RunOnce reminds every appointment starting within the lead window and
// returns how many were reminded. A failure on one appointment does not stop
// the others.
func (r *Reminder) RunOnce(ctx context.Context) (int, error) {
	now := r.now().UTC()
	due, err := r.repo.ListDue(ctx, now, now.Add(r.lead))
	if err != nil {
		return 0, fmt.Errorf("list due appointments: %w", err)
	}

	sent := 0
	var errs []error
	for _, a := range due {
		if err := r.remind(ctx, a, now); err != nil {
			r.logger.Error().Err(err).Int64("appointment_id", a.ID).Msg("reminder failed")
			errs = append(errs, err)
			continue
		}
		sent++
	}
	return sent, errors.Join(errs...)
}

func (r *Reminder) remind(ctx context.Context, a *Appointment, now time.Time) error {
	msg := fmt.Sprintf("Reminder: your appointment (ID: %d) is scheduled for %s.", a.ID, a.DateTime)
	for _, uid := range []int64{a.PatientID, a.DoctorID} {
		err := r.notify.CreateNotification(ctx, &notification.Notification{
			UserID:  uid,
			Message: msg,
			Type:    notification.TypeAppointment,
		})
		if err != nil {
			return err
		}
	}
	return r.repo.MarkReminded(ctx, a.ID, now)
}

// Start runs RunOnce every interval on a background scheduler until Stop.
func (r *Reminder) Start(ctx context.Context) error {
	r.scheduler = gocron.NewScheduler(time.UTC)
	_, err := r.scheduler.Every(r.interval).SingletonMode().Do(func() {
		n, err := r.RunOnce(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("reminder run finished with errors")
		}
		if n > 0 {
			r.logger.Info().Int("reminded", n).Msg("appointment reminders sent")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	r.scheduler.StartAsync()
	r.logger.Info().Dur("interval", r.interval).Dur("lead", r.lead).Msg("reminder scheduler started")
	return nil
}

func (r *Reminder) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
