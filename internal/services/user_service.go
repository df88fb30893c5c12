package services

import (
	"context"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

type UserService struct {
	store repo.Store
}

func NewUserService(store repo.Store) *UserService { return &UserService{store: store} }

func (s *UserService) List(ctx context.Context, p Principal, f repo.UserFilter) ([]models.User, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if f.Role != "" && !f.Role.Valid() {
		return nil, validate.Errs{{Field: "role", Msg: "unknown role"}}
	}
	out, err := s.store.Users().List(ctx, f)
	return out, translate(err)
}

func (s *UserService) SetActive(ctx context.Context, p Principal, id string, active bool) (models.User, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return models.User{}, err
	}
	if id == p.UserID && !active {
		return models.User{}, validate.Errs{{Field: "id", Msg: "cannot deactivate yourself"}}
	}

	var out models.User
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		if err := tx.Users().SetActive(ctx, id, active); err != nil {
			return err
		}
		u, err := tx.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		out = u
		action, msg := "user.activated", u.FullName+" was re-activated"
		if !active {
			action, msg = "user.deactivated", u.FullName+" was deactivated"
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   u.CompanyID,
			ActorUserID: p.actorID(),
			Action:      action,
			Message:     msg,
			Details:     map[string]any{"user_id": u.ID},
		})
	})
	return out, translate(err)
}
