package services

import (
	"context"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

// Principal is the authenticated caller as read from the access token.
type Principal struct {
	UserID    string
	Role      models.Role
	CompanyID string
}

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

func (p Principal) actorID() *string {
	if p.UserID == "" {
		return nil
	}
	id := p.UserID
	return &id
}

func requireRole(p Principal, roles ...models.Role) error {
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// requireApproved blocks writes by tenants whose company is not approved.
func requireApproved(ctx context.Context, store repo.Store, companyID string) (models.Company, error) {
	c, err := store.Companies().GetByID(ctx, companyID)
	if err != nil {
		return models.Company{}, translate(err)
	}
	if c.Status != models.CompanyApproved {
		return c, ErrCompanyNotApproved
	}
	return c, nil
}

// providerFor resolves the provider row behind a provider principal.
func providerFor(ctx context.Context, store repo.Store, p Principal) (models.Provider, error) {
	if p.Role != models.RoleProvider {
		return models.Provider{}, ErrForbidden
	}
	prov, err := store.Providers().GetByUserID(ctx, p.UserID)
	if err != nil {
		return models.Provider{}, translate(err)
	}
	ok, err := workable(ctx, store, prov)
	if err != nil {
		return models.Provider{}, err
	}
	if !ok {
		return prov, ErrAccountDisabled
	}
	return prov, nil
}

// workable reports whether a provider may take and move work. The company owns
// providers.is_active, the admin owns users.is_active; both must hold.
func workable(ctx context.Context, store repo.Store, prov models.Provider) (bool, error) {
	if !prov.IsActive {
		return false, nil
	}
	u, err := store.Users().GetByID(ctx, prov.UserID)
	if err != nil {
		return false, translate(err)
	}
	return u.IsActive, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
