package user

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, username, email, password_hash, role, department_id, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role,
		&u.DepartmentID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.Role = parsed
	return &u, nil
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return apperr.New(apperr.ErrConflict, "Email already exists")
	case db.IsForeignKeyViolation(err):
		return apperr.New(apperr.ErrValidation, "Department or specialty does not exist")
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, role, department_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, string(u.Role), u.DepartmentID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapWriteErr(err)
}

func (r *repoPG) get(ctx context.Context, where string, arg interface{}) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE `+where, arg))
	if db.IsNoRows(err) {
		return nil, apperr.New(apperr.ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	if u.IsDoctor() {
		if u.SpecialtyIDs, err = r.specialties(ctx, u.ID); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `LOWER(email) = LOWER($1)`, email)
}

func (r *repoPG) specialties(ctx context.Context, doctorID int64) ([]int64, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT specialty_id FROM doctor_specialties WHERE doctor_id = $1 ORDER BY specialty_id`, doctorID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET username=$2, email=$3, password_hash=$4, department_id=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.DepartmentID,
	).Scan(&u.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.New(apperr.ErrNotFound, "User not found")
	}
	return mapWriteErr(err)
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

// SetSpecialties replaces the doctor's specialty links.
func (r *repoPG) SetSpecialties(ctx context.Context, doctorID int64, specialtyIDs []int64) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM doctor_specialties WHERE doctor_id = $1`, doctorID); err != nil {
		return err
	}
	if len(specialtyIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO doctor_specialties (doctor_id, specialty_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`, doctorID, specialtyIDs)
	return mapWriteErr(err)
}
