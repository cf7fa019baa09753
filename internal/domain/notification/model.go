package notification

import "time"

type Type string

const (
	TypeAppointment   Type = "appointment"
	TypeMedicalRecord Type = "medical_record"
)

func (t Type) Valid() bool {
	return t == TypeAppointment || t == TypeMedicalRecord
}

// Notification is an append-only message addressed to one user.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
