package services

import (
	"context"
	"strings"

	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

type ProviderService struct {
	store repo.Store
}

func NewProviderService(store repo.Store) *ProviderService { return &ProviderService{store: store} }

type CreateProviderInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Password  string `json:"password"`
}

type UpdateProviderInput struct {
	Name      *string `json:"name"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
}

// Create adds a provider login and its provider row in one transaction.
func (s *ProviderService) Create(ctx context.Context, p Principal, in CreateProviderInput) (models.Provider, error) {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return models.Provider{}, err
	}
	if err := validate.Collect(
		validate.MinLen("name", in.Name, 2),
		validate.Email("email", in.Email),
		validate.MaxLen("specialty", in.Specialty, 120),
		validate.If(auth.ValidatePassword(in.Password) != nil, "password", auth.ErrWeakPassword.Error()),
	); err != nil {
		return models.Provider{}, err
	}
	if _, err := requireApproved(ctx, s.store, p.CompanyID); err != nil {
		return models.Provider{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.Provider{}, err
	}

	companyID := p.CompanyID
	var out models.Provider
	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		u, err := tx.Users().Create(ctx, models.User{
			Email:        models.NormalizeEmail(in.Email),
			FullName:     strings.TrimSpace(in.Name),
			Phone:        strings.TrimSpace(in.Phone),
			PasswordHash: hash,
			Role:         models.RoleProvider,
			CompanyID:    &companyID,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		out, err = tx.Providers().Create(ctx, models.Provider{
			UserID:    u.ID,
			CompanyID: companyID,
			Name:      u.FullName,
			Phone:     u.Phone,
			Specialty: strings.TrimSpace(in.Specialty),
			IsActive:  true,
		})
		if err != nil {
			return err
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &companyID,
			ProviderID:  &out.ID,
			ActorUserID: p.actorID(),
			Action:      "provider.created",
			Message:     out.Name + " joined as a service provider",
		})
	})
	return out, translate(err)
}

func (s *ProviderService) List(ctx context.Context, p Principal, f repo.ProviderFilter) ([]models.Provider, error) {
	switch p.Role {
	case models.RoleAdmin:
	case models.RoleCompany:
		f.CompanyID = p.CompanyID
	default:
		return nil, ErrForbidden
	}
	out, err := s.store.Providers().List(ctx, f)
	return out, translate(err)
}

// owned loads a provider and hides other tenants' rows as not found.
func (s *ProviderService) owned(ctx context.Context, p Principal, id string) (models.Provider, error) {
	prov, err := s.store.Providers().GetByID(ctx, id)
	if err != nil {
		return models.Provider{}, translate(err)
	}
	if !p.IsAdmin() && prov.CompanyID != p.CompanyID {
		return models.Provider{}, ErrNotFound
	}
	return prov, nil
}

func (s *ProviderService) Get(ctx context.Context, p Principal, id string) (models.Provider, error) {
	if err := requireRole(p, models.RoleAdmin, models.RoleCompany); err != nil {
		return models.Provider{}, err
	}
	return s.owned(ctx, p, id)
}

func (s *ProviderService) Update(ctx context.Context, p Principal, id string, in UpdateProviderInput) (models.Provider, error) {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return models.Provider{}, err
	}
	prov, err := s.owned(ctx, p, id)
	if err != nil {
		return models.Provider{}, err
	}
	if _, err := requireApproved(ctx, s.store, p.CompanyID); err != nil {
		return models.Provider{}, err
	}
	if in.Name != nil {
		prov.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		prov.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Specialty != nil {
		prov.Specialty = strings.TrimSpace(*in.Specialty)
	}
	if err := validate.Collect(
		validate.MinLen("name", prov.Name, 2),
		validate.MaxLen("specialty", prov.Specialty, 120),
	); err != nil {
		return models.Provider{}, err
	}
	out, err := s.store.Providers().Update(ctx, prov)
	return out, translate(err)
}

// SetActive flips the provider row only. The login flag belongs to the admin,
// so a company cannot re-enable an account the admin switched off.
func (s *ProviderService) SetActive(ctx context.Context, p Principal, id string, active bool) (models.Provider, error) {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return models.Provider{}, err
	}
	prov, err := s.owned(ctx, p, id)
	if err != nil {
		return models.Provider{}, err
	}
	if _, err := requireApproved(ctx, s.store, p.CompanyID); err != nil {
		return models.Provider{}, err
	}

	var out models.Provider
	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		if err := tx.Providers().SetActive(ctx, prov.ID, active); err != nil {
			return err
		}
		var err error
		out, err = tx.Providers().GetByID(ctx, prov.ID)
		if err != nil {
			return err
		}
		action, msg := "provider.activated", prov.Name+" was activated"
		if !active {
			action, msg = "provider.deactivated", prov.Name+" was deactivated"
		}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &prov.CompanyID,
			ProviderID:  &prov.ID,
			ActorUserID: p.actorID(),
			Action:      action,
			Message:     msg,
		})
	})
	return out, translate(err)
}
