package directory

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListDepartments(ctx context.Context) ([]*Department, error) {
	return s.repo.ListDepartments(ctx)
}

func (s *Service) ListSpecialties(ctx context.Context) ([]*Specialty, error) {
	return s.repo.ListSpecialties(ctx)
}

func (s *Service) FilterDoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error) {
	if specialtyID <= 0 {
		return nil, apperr.New(apperr.ErrValidation, "specialty_id must be a positive integer")
	}
	return s.repo.DoctorsBySpecialty(ctx, specialtyID)
}

// CreateDepartment trims and de-duplicates the service names before storing d.
func (s *Service) CreateDepartment(ctx context.Context, d *Department) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperr.New(apperr.ErrValidation, "name is required")
	}
	services := make([]string, 0, len(d.Services))
	seen := make(map[string]bool, len(d.Services))
	for _, svc := range d.Services {
		svc = strings.TrimSpace(svc)
		if svc == "" || seen[svc] {
			continue
		}
		seen[svc] = true
		services = append(services, svc)
	}
	d.Services = services

	if err := s.repo.CreateDepartment(ctx, d); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("department_id", d.ID).Msg("department created")
	return nil
}

func (s *Service) CreateSpecialty(ctx context.Context, sp *Specialty) error {
	sp.Name = strings.TrimSpace(sp.Name)
	if sp.Name == "" {
		return apperr.New(apperr.ErrValidation, "name is required")
	}
	if err := s.repo.CreateSpecialty(ctx, sp); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("specialty_id", sp.ID).Msg("specialty created")
	return nil
}
