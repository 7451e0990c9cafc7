package account

import (
	"context"
	"errors"
	"strings"

	"jobtracker-backend/internal/shared/telemetry"
)

// GuestClaimer moves records owned by a guest to a registered user.
type GuestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

type Service struct {
	Applications GuestClaimer
}

type ClaimResult struct {
	MigratedApplications int `json:"migratedApplications"`
}

func NewService(apps GuestClaimer) *Service {
	return &Service{Applications: apps}
}

// ClaimGuest is idempotent: a second call finds nothing left to move.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	if s.Applications == nil {
		return ClaimResult{}, errors.New("applications store not configured")
	}

	count, err := s.Applications.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	if count > 0 {
		telemetry.Info("account.guest_claimed", map[string]any{
			"user_id":      authedUserID,
			"applications": count,
		})
	}
	return ClaimResult{MigratedApplications: count}, nil
}
