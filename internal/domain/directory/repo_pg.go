package directory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *repoPG) ListDepartments(ctx context.Context) ([]*Department, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.created_at,
		       COALESCE(array_agg(s.service ORDER BY s.service) FILTER (WHERE s.service IS NOT NULL), '{}')
		FROM departments d
		LEFT JOIN department_services s ON s.department_id = d.id
		GROUP BY d.id
		ORDER BY d.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Department{}
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.Services); err != nil {
			return nil, err
		}
		items = append(items, &d)
	}
	return items, rows.Err()
}

// CreateDepartment inserts the department and its services in one statement.
func (r *repoPG) CreateDepartment(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx, `
		WITH dep AS (
			INSERT INTO departments (name) VALUES ($1) RETURNING id, created_at
		), svc AS (
			INSERT INTO department_services (department_id, service)
			SELECT DISTINCT dep.id, s FROM dep, unnest($2::text[]) AS s
		)
		SELECT id, created_at FROM dep`,
		d.Name, d.Services,
	).Scan(&d.ID, &d.CreatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.New(apperr.ErrConflict, "Department already exists")
	}
	return err
}

func (r *repoPG) ListSpecialties(ctx context.Context) ([]*Specialty, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, name, created_at FROM specialties ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Specialty{}
	for rows.Next() {
		var s Specialty
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *repoPG) CreateSpecialty(ctx context.Context, s *Specialty) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO specialties (name) VALUES ($1) RETURNING id, created_at`, s.Name,
	).Scan(&s.ID, &s.CreatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.New(apperr.ErrConflict, "Specialty already exists")
	}
	return err
}

func (r *repoPG) DoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]*Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT u.id, u.username, COALESCE(d.name, ''),
		       COALESCE((SELECT array_agg(s.name ORDER BY s.name)
		                 FROM doctor_specialties ds2
		                 JOIN specialties s ON s.id = ds2.specialty_id
		                 WHERE ds2.doctor_id = u.id), '{}')
		FROM users u
		JOIN doctor_specialties ds ON ds.doctor_id = u.id
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE ds.specialty_id = $1 AND u.role = 'doctor'
		ORDER BY u.username, u.id`, specialtyID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Doctor, error) {
		var doc Doctor
		err := row.Scan(&doc.ID, &doc.Name, &doc.Department, &doc.Specialties)
		return &doc, err
	})
}
