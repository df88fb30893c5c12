package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

func TestCompanyStatusFlow(t *testing.T) {
	f := newFixture(t)
	c := f.pendingCompany("Acme", "acme.io")

	got, err := f.companies.Approve(f.ctx, f.admin, c.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyApproved, got.Status)

	_, err = f.companies.Approve(f.ctx, f.admin, c.CompanyID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.companies.Suspend(f.ctx, f.admin, c.CompanyID, "")
	var verrs validate.Errs
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "reason", verrs[0].Field)

	got, err = f.companies.Suspend(f.ctx, f.admin, c.CompanyID, "unpaid invoices")
	require.NoError(t, err)
	assert.Equal(t, models.CompanySuspended, got.Status)
	assert.Equal(t, "unpaid invoices", got.StatusReason)

	got, err = f.companies.Reactivate(f.ctx, f.admin, c.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyApproved, got.Status)

	logs, err := f.store.ActivityLogs().List(f.ctx, repo.ActivityFilter{CompanyID: c.CompanyID})
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.Equal(t, []string{"company.reactivated", "company.suspended", "company.approved", "company.registered"}, actions)
}

func TestCompanyStatus_VerbsFireFromTheirOwnStatus(t *testing.T) {
	f := newFixture(t)

	t.Run("rejected stays rejected", func(t *testing.T) {
		c := f.pendingCompany("Rejected", "rejected.io")
		_, err := f.companies.Reject(f.ctx, f.admin, c.CompanyID, "fake documents")
		require.NoError(t, err)

		_, err = f.companies.Approve(f.ctx, f.admin, c.CompanyID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = f.companies.Reactivate(f.ctx, f.admin, c.CompanyID)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		got, err := f.companies.Get(f.ctx, f.admin, c.CompanyID)
		require.NoError(t, err)
		assert.Equal(t, models.CompanyRejected, got.Status)
	})

	t.Run("suspended only comes back through reactivate", func(t *testing.T) {
		c := f.approvedCompany("Suspended", "suspended.io")
		_, err := f.companies.Suspend(f.ctx, f.admin, c.CompanyID, "unpaid invoices")
		require.NoError(t, err)

		_, err = f.companies.Approve(f.ctx, f.admin, c.CompanyID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = f.companies.Reject(f.ctx, f.admin, c.CompanyID, "too late")
		assert.ErrorIs(t, err, ErrInvalidTransition)

		got, err := f.companies.Reactivate(f.ctx, f.admin, c.CompanyID)
		require.NoError(t, err)
		assert.Equal(t, models.CompanyApproved, got.Status)
	})

	t.Run("pending cannot be reactivated or suspended", func(t *testing.T) {
		c := f.pendingCompany("Pending", "pending.io")
		_, err := f.companies.Reactivate(f.ctx, f.admin, c.CompanyID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		_, err = f.companies.Suspend(f.ctx, f.admin, c.CompanyID, "why")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestCompanyService_AdminOnly(t *testing.T) {
	f := newFixture(t)
	c := f.pendingCompany("Acme", "acme.io")
	other := f.pendingCompany("Other", "other.io")

	_, err := f.companies.Approve(f.ctx, c, c.CompanyID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.companies.List(f.ctx, c, repo.CompanyFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	own, err := f.companies.Get(f.ctx, c, c.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", own.Name)

	_, err = f.companies.Get(f.ctx, c, other.CompanyID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompanyService_ListFilters(t *testing.T) {
	f := newFixture(t)
	f.approvedCompany("Acme Servis", "acme.io")
	f.pendingCompany("Boğaziçi Tesisat", "bogazici.io")

	pending, err := f.companies.List(f.ctx, f.admin, repo.CompanyFilter{Status: models.CompanyPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Boğaziçi Tesisat", pending[0].Name)

	found, err := f.companies.List(f.ctx, f.admin, repo.CompanyFilter{Query: "ACME"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Acme Servis", found[0].Name)

	_, err = f.companies.List(f.ctx, f.admin, repo.CompanyFilter{Status: "bogus"})
	var verrs validate.Errs
	assert.ErrorAs(t, err, &verrs)
}

func TestUserService(t *testing.T) {
	f := newFixture(t)
	c := f.approvedCompany("Acme", "acme.io")
	f.addProvider(c, "Mehmet Usta", "mehmet@acme.io")

	providers, err := f.users.List(f.ctx, f.admin, repo.UserFilter{Role: models.RoleProvider})
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, "mehmet@acme.io", providers[0].Email)

	_, err = f.users.List(f.ctx, c, repo.UserFilter{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.users.SetActive(f.ctx, f.admin, f.admin.UserID, false)
	var verrs validate.Errs
	assert.ErrorAs(t, err, &verrs)

	u, err := f.users.SetActive(f.ctx, f.admin, c.UserID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, err = f.users.SetActive(f.ctx, f.admin, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}
