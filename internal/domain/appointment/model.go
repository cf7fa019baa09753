package appointment

import (
	"fmt"
	"strings"
	"time"
)

type Appointment struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patient_id"`
	DoctorID  int64  `json:"doctor_id"`
	DateTime  string `json:"date_time"`
	Reason    string `json:"reason,omitempty"`
	// ScheduledAt is DateTime parsed; it drives reminders.
	ScheduledAt time.Time  `json:"-"`
	RemindedAt  *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

type RescheduleRequest struct {
	DateTime string `json:"date_time"`
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDateTime accepts RFC 3339 or a local date-time without offset, which is
// read as UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date_time %q", s)
}
