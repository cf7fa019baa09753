package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinic/clinic/internal/platform/apperr"
	"github.com/clinic/clinic/internal/platform/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateNotification validates and stores n, setting its ID.
func (s *Service) CreateNotification(ctx context.Context, n *Notification) error {
	if n.UserID <= 0 {
		return apperr.New(apperr.ErrValidation, "user_id is required")
	}
	if strings.TrimSpace(n.Message) == "" {
		return apperr.New(apperr.ErrValidation, "message is required")
	}
	if !n.Type.Valid() {
		return apperr.New(apperr.ErrValidation, fmt.Sprintf("invalid notification type: %s", n.Type))
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification for user %d: %w", n.UserID, err)
	}
	return nil
}

// GetNotificationsByUser returns every notification addressed to userID,
// newest first.
func (s *Service) GetNotificationsByUser(ctx context.Context, userID int64) ([]*Notification, error) {
	items, _, err := s.repo.ListByUser(ctx, userID, 0, 0)
	return items, err
}

// GetNotifications returns the global feed for admins and the caller's own
// notifications for patients and doctors.
func (s *Service) GetNotifications(ctx context.Context, userID int64, role auth.Role, limit, offset int) ([]*Notification, int, error) {
	switch role {
	case auth.RoleAdmin:
		return s.repo.List(ctx, limit, offset)
	case auth.RolePatient, auth.RoleDoctor:
		return s.repo.ListByUser(ctx, userID, limit, offset)
	}
	return nil, 0, apperr.New(apperr.ErrUnauthorized, "role not permitted to view notifications")
}
