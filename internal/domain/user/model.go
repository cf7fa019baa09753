package user

import (
	"time"

	"github.com/clinic/clinic/internal/platform/auth"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	DepartmentID *int64    `json:"department_id,omitempty"`
	SpecialtyIDs []int64   `json:"specialty_ids,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsDoctor reports whether u may carry a department and specialties.
func (u *User) IsDoctor() bool { return u.Role == auth.RoleDoctor }

type RegisterRequest struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	SpecialtyIDs []int64 `json:"specialty_ids,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UserPatch lists the profile fields a caller may change. Nil fields are left
// untouched. ClearDepartment removes the doctor's department and cannot be
// combined with DepartmentID.
type UserPatch struct {
	Username        *string  `json:"username,omitempty"`
	Email           *string  `json:"email,omitempty"`
	Password        *string  `json:"password,omitempty"`
	DepartmentID    *int64   `json:"department_id,omitempty"`
	ClearDepartment bool     `json:"clear_department,omitempty"`
	SpecialtyIDs    *[]int64 `json:"specialty_ids,omitempty"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil &&
		p.DepartmentID == nil && !p.ClearDepartment && p.SpecialtyIDs == nil
}

func (p UserPatch) touchesDoctorFields() bool {
	return p.DepartmentID != nil || p.ClearDepartment || p.SpecialtyIDs != nil
}
