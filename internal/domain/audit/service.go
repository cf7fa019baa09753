package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clinic/clinic/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// LogAction appends an entry and returns its id.
func (s *Service) LogAction(ctx context.Context, actorID int64, action string) (int64, error) {
	e := &Entry{UserID: actorID, Action: action}
	if err := s.repo.Create(ctx, e); err != nil {
		return 0, fmt.Errorf("append audit log: %w", err)
	}
	return e.ID, nil
}

// GetLogs returns matching entries, newest first. No match is an empty list.
func (s *Service) GetLogs(ctx context.Context, f Filter, limit, offset int) ([]*Entry, int, error) {
	f.Action = strings.TrimSpace(f.Action)
	if f.UserID < 0 {
		return nil, 0, apperr.New(apperr.ErrValidation, "user_id must be positive")
	}
	if f.Date != "" {
		if _, err := time.Parse(time.DateOnly, f.Date); err != nil {
			return nil, 0, apperr.New(apperr.ErrValidation, "date must be formatted as YYYY-MM-DD")
		}
	}
	return s.repo.Search(ctx, f, limit, offset)
}
