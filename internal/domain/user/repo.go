package user

import "context"

// Repository persists users. Lookups return apperr.ErrNotFound for a missing row.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	SetSpecialties(ctx context.Context, doctorID int64, specialtyIDs []int64) error
}
