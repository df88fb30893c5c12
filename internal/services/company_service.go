package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

// CompanyService is the admin side of tenancy: reviewing and moderating companies.
type CompanyService struct {
	store repo.Store
	log   *slog.Logger
}

func NewCompanyService(store repo.Store, log *slog.Logger) *CompanyService {
	if log == nil {
		log = slog.Default()
	}
	return &CompanyService{store: store, log: log}
}

func (s *CompanyService) List(ctx context.Context, p Principal, f repo.CompanyFilter) ([]models.Company, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, validate.Errs{{Field: "status", Msg: "unknown status"}}
	}
	out, err := s.store.Companies().List(ctx, f)
	return out, translate(err)
}

// Get: admins see any company, company users only their own.
func (s *CompanyService) Get(ctx context.Context, p Principal, id string) (models.Company, error) {
	if !p.IsAdmin() && p.CompanyID != id {
		return models.Company{}, ErrNotFound
	}
	c, err := s.store.Companies().GetByID(ctx, id)
	return c, translate(err)
}

// companyMove is one admin verb: it only fires from its own source status.
type companyMove struct {
	from, to models.CompanyStatus
	action   string
}

var (
	moveApprove    = companyMove{models.CompanyPending, models.CompanyApproved, "company.approved"}
	moveReject     = companyMove{models.CompanyPending, models.CompanyRejected, "company.rejected"}
	moveSuspend    = companyMove{models.CompanyApproved, models.CompanySuspended, "company.suspended"}
	moveReactivate = companyMove{models.CompanySuspended, models.CompanyApproved, "company.reactivated"}
)

func (s *CompanyService) move(ctx context.Context, p Principal, id string, m companyMove, reason string) (models.Company, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return models.Company{}, err
	}
	reason = strings.TrimSpace(reason)
	if m.to == models.CompanyRejected || m.to == models.CompanySuspended {
		if err := validate.Collect(validate.Required("reason", reason)); err != nil {
			return models.Company{}, err
		}
	}

	var out models.Company
	err := s.store.WithTx(ctx, func(tx repo.Store) error {
		cur, err := tx.Companies().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if cur.Status != m.from || !cur.Status.CanMoveTo(m.to) {
			return fmt.Errorf("%w: cannot move company from %s to %s", ErrInvalidTransition, cur.Status, m.to)
		}
		out, err = tx.Companies().UpdateStatus(ctx, id, cur.Status, m.to, reason)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%s is now %s", out.Name, m.to)
		if reason != "" {
			msg += ": " + reason
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &out.ID,
			ActorUserID: p.actorID(),
			Action:      m.action,
			Message:     msg,
			Details:     map[string]any{"from": string(cur.Status), "to": string(m.to)},
		})
	})
	if err != nil {
		return models.Company{}, translate(err)
	}
	s.log.Info("company status changed", "company_id", id, "status", m.to, "by", p.UserID)
	return out, nil
}

func (s *CompanyService) Approve(ctx context.Context, p Principal, id string) (models.Company, error) {
	return s.move(ctx, p, id, moveApprove, "")
}

func (s *CompanyService) Reject(ctx context.Context, p Principal, id, reason string) (models.Company, error) {
	return s.move(ctx, p, id, moveReject, reason)
}

func (s *CompanyService) Suspend(ctx context.Context, p Principal, id, reason string) (models.Company, error) {
	return s.move(ctx, p, id, moveSuspend, reason)
}

// Reactivate lifts a suspension.
func (s *CompanyService) Reactivate(ctx context.Context, p Principal, id string) (models.Company, error) {
	return s.move(ctx, p, id, moveReactivate, "")
}
