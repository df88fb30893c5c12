package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

// PollAfterSeconds is how often clients are told to come back for new rows.
const PollAfterSeconds = 30

type NotificationService struct {
	store repo.Store
	now   func() time.Time
	log   *slog.Logger
}

func NewNotificationService(store repo.Store, log *slog.Logger) *NotificationService {
	if log == nil {
		log = slog.Default()
	}
	return &NotificationService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

type Feed struct {
	Items            []models.ActivityLog `json:"items"`
	Unread           int                  `json:"unread"`
	PollAfterSeconds int                  `json:"poll_after_seconds"`
}

// filter builds the visibility filter for p: admins see everything,
// companies their own rows, providers only rows addressed to them.
func (s *NotificationService) filter(ctx context.Context, p Principal) (repo.ActivityFilter, error) {
	switch p.Role {
	case models.RoleAdmin:
		return repo.ActivityFilter{}, nil
	case models.RoleCompany:
		if p.CompanyID == "" {
			return repo.ActivityFilter{}, ErrForbidden
		}
		return repo.ActivityFilter{CompanyID: p.CompanyID}, nil
	case models.RoleProvider:
		prov, err := s.store.Providers().GetByUserID(ctx, p.UserID)
		if err != nil {
			return repo.ActivityFilter{}, translate(err)
		}
		return repo.ActivityFilter{CompanyID: prov.CompanyID, ProviderID: prov.ID}, nil
	}
	return repo.ActivityFilter{}, ErrForbidden
}

func (s *NotificationService) List(ctx context.Context, p Principal, since time.Time, limit int) (Feed, error) {
	f, err := s.filter(ctx, p)
	if err != nil {
		return Feed{}, err
	}
	f.Since = since
	f.Limit = limit
	items, err := s.store.ActivityLogs().List(ctx, f)
	if err != nil {
		return Feed{}, err
	}
	if items == nil {
		items = []models.ActivityLog{}
	}
	unread, err := s.UnreadCount(ctx, p)
	if err != nil {
		return Feed{}, err
	}
	return Feed{Items: items, Unread: unread, PollAfterSeconds: PollAfterSeconds}, nil
}

// UnreadCount counts visible rows newer than the user's last MarkAllRead.
func (s *NotificationService) UnreadCount(ctx context.Context, p Principal) (int, error) {
	f, err := s.filter(ctx, p)
	if err != nil {
		return 0, err
	}
	u, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return 0, translate(err)
	}
	f.Since = u.NotificationsSeenAt
	return s.store.ActivityLogs().CountSince(ctx, f)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, p Principal) error {
	if err := s.store.Users().MarkNotificationsSeen(ctx, p.UserID, s.now()); err != nil {
		return translate(err)
	}
	s.log.Debug("notifications marked read", "user_id", p.UserID)
	return nil
}
