package medicalrecord

import "context"

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	// GetByID returns apperr.ErrNotFound for a missing record.
	GetByID(ctx context.Context, id int64) (*MedicalRecord, error)
	Update(ctx context.Context, id int64, patch RecordPatch) error
	List(ctx context.Context) ([]*MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID int64) ([]*MedicalRecord, error)
	ListByDoctor(ctx context.Context, doctorID int64) ([]*MedicalRecord, error)
}
