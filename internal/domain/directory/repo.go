package directory

import "context"

type Repository interface {
	ListDepartments(ctx context.Context) ([]*Department, error)
	CreateDepartment(ctx context.Context, d *Department) error
	ListSpecialties(ctx context.Context) ([]*Specialty, error)
	CreateSpecialty(ctx context.Context, s *Specialty) error
	// DoctorsBySpecialty lists doctors holding the specialty, each with all
	// of their specialty names.
	DoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error)
}
