package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
)

const minPasswordLength = 6

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(userID int64, role auth.Role) (string, error)
}

type AuditLogger interface {
	LogAction(ctx context.Context, actorID int64, action string) (int64, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	tokens TokenIssuer
	audit  AuditLogger
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenIssuer, audit AuditLogger) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, audit: audit}
}

// Register creates a patient or doctor account. Admin accounts can only be
// created through CreateAdmin.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, apperr.New(apperr.ErrValidation, "role must be one of patient, doctor, admin")
	}
	if role == auth.RoleAdmin {
		return nil, apperr.New(apperr.ErrForbidden, "admin accounts cannot be self-registered")
	}
	return s.create(ctx, req, role)
}

func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (*User, error) {
	return s.create(ctx, RegisterRequest{Username: username, Email: email, Password: password}, auth.RoleAdmin)
}

func (s *Service) create(ctx context.Context, req RegisterRequest, role auth.Role) (*User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.New(apperr.ErrValidation, "username is required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	if role != auth.RoleDoctor && (req.DepartmentID != nil || len(req.SpecialtyIDs) > 0) {
		return nil, apperr.New(apperr.ErrValidation, "only doctors can have a department or specialties")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		DepartmentID: req.DepartmentID,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	if len(req.SpecialtyIDs) > 0 {
		if err := s.repo.SetSpecialties(ctx, u.ID, req.SpecialtyIDs); err != nil {
			return nil, err
		}
		u.SpecialtyIDs = req.SpecialtyIDs
	}
	if _, err := s.audit.LogAction(ctx, u.ID, "User created"); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", u.ID).Str("role", string(role)).Msg("user registered")
	return u, nil
}

// Login checks the credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	invalid := apperr.New(apperr.ErrUnauthorized, "Invalid credentials")

	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		zerolog.Ctx(ctx).Warn().Int64("user_id", u.ID).Msg("failed login")
		return nil, invalid
	}
	if _, err := s.audit.LogAction(ctx, u.ID, "User authenticated"); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	if _, err := s.audit.LogAction(ctx, u.ID, "Token generated"); err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: u}, nil
}

// GetUserByID returns apperr.ErrNotFound when no user has the id.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	if patch.IsEmpty() {
		return nil, apperr.New(apperr.ErrValidation, "no fields to update")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.touchesDoctorFields() && !u.IsDoctor() {
		return nil, apperr.New(apperr.ErrValidation, "only doctors can have a department or specialties")
	}
	if patch.ClearDepartment && patch.DepartmentID != nil {
		return nil, apperr.New(apperr.ErrValidation, "department_id and clear_department are mutually exclusive")
	}

	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if name == "" {
			return nil, apperr.New(apperr.ErrValidation, "username cannot be empty")
		}
		u.Username = name
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		if u.PasswordHash, err = s.hasher.Hash(*patch.Password); err != nil {
			return nil, err
		}
	}
	if patch.DepartmentID != nil {
		u.DepartmentID = patch.DepartmentID
	}
	if patch.ClearDepartment {
		u.DepartmentID = nil
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	if patch.SpecialtyIDs != nil {
		if err := s.repo.SetSpecialties(ctx, u.ID, *patch.SpecialtyIDs); err != nil {
			return nil, err
		}
		u.SpecialtyIDs = *patch.SpecialtyIDs
	}
	if _, err := s.audit.LogAction(ctx, u.ID, "User updated"); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if _, err := s.audit.LogAction(ctx, id, "User deleted"); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.New(apperr.ErrValidation, "email is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", apperr.New(apperr.ErrValidation, "email is not valid")
	}
	return email, nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return apperr.New(apperr.ErrValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}
