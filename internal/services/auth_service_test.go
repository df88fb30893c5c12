package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

func TestRegisterCompany_PendingCompanyWithOwner(t *testing.T) {
	f := newFixture(t)

	prof, err := f.auth.RegisterCompany(f.ctx, RegisterCompanyInput{
		CompanyName:  "Acme Servis",
		CompanyEmail: "office@acme.io",
		OwnerName:    "Ayşe Yılmaz",
		OwnerEmail:   "Ayse@Acme.io",
		Password:     testPassword,
	})
	require.NoError(t, err)
	require.NotNil(t, prof.Company)

	assert.Equal(t, models.CompanyPending, prof.Company.Status)
	assert.Equal(t, prof.User.ID, prof.Company.OwnerUserID)
	assert.Equal(t, "ayse@acme.io", prof.User.Email)
	assert.Equal(t, models.RoleCompany, prof.User.Role)
	require.NotNil(t, prof.User.CompanyID)
	assert.Equal(t, prof.Company.ID, *prof.User.CompanyID)

	logs, err := f.store.ActivityLogs().List(f.ctx, repo.ActivityFilter{CompanyID: prof.Company.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "company.registered", logs[0].Action)
}

func TestRegisterCompany_DuplicateEmailLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	f.pendingCompany("Acme", "acme.io")

	_, err := f.auth.RegisterCompany(f.ctx, RegisterCompanyInput{
		CompanyName:  "Other",
		CompanyEmail: "x@other.io",
		OwnerName:    "Someone",
		OwnerEmail:   "owner@acme.io",
		Password:     testPassword,
	})
	assert.ErrorIs(t, err, ErrConflict)

	all, err := f.store.Companies().List(f.ctx, repo.CompanyFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegisterCompany_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.RegisterCompany(f.ctx, RegisterCompanyInput{CompanyName: "A", OwnerEmail: "nope", Password: "short"})
	var verrs validate.Errs
	require.ErrorAs(t, err, &verrs)

	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["company_name"])
	assert.True(t, fields["owner_email"])
	assert.True(t, fields["password"])
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	pending := f.pendingCompany("Pending Co", "pending.io")
	rejected := f.pendingCompany("Rejected Co", "rejected.io")
	_, err := f.companies.Reject(f.ctx, f.admin, rejected.CompanyID, "incomplete documents")
	require.NoError(t, err)

	t.Run("pending company may sign in", func(t *testing.T) {
		sess, err := f.auth.Login(f.ctx, "owner@pending.io", testPassword)
		require.NoError(t, err)
		assert.NotEmpty(t, sess.AccessToken)
		assert.NotEmpty(t, sess.RefreshToken)
		require.NotNil(t, sess.Profile.Company)
		assert.Equal(t, pending.CompanyID, sess.Profile.Company.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, "owner@pending.io", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, "ghost@nowhere.io", testPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejected company is locked out", func(t *testing.T) {
		_, err := f.auth.Login(f.ctx, "owner@rejected.io", testPassword)
		assert.ErrorIs(t, err, ErrCompanyLocked)
	})

	t.Run("deactivated user", func(t *testing.T) {
		_, err := f.users.SetActive(f.ctx, f.admin, pending.UserID, false)
		require.NoError(t, err)
		_, err = f.auth.Login(f.ctx, "owner@pending.io", testPassword)
		assert.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestLogin_InactiveProviderRefused(t *testing.T) {
	f := newFixture(t)
	company := f.approvedCompany("Acme", "acme.io")
	prov, _ := f.addProvider(company, "Mehmet Usta", "mehmet@acme.io")

	_, err := f.auth.Login(f.ctx, "mehmet@acme.io", testPassword)
	require.NoError(t, err)

	_, err = f.providers.SetActive(f.ctx, company, prov.ID, false)
	require.NoError(t, err)
	_, err = f.auth.Login(f.ctx, "mehmet@acme.io", testPassword)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	sess, err := f.auth.Login(f.ctx, "admin@jobcards.io", testPassword)
	require.NoError(t, err)

	next, err := f.auth.Refresh(f.ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, f.admin.UserID, next.Profile.User.ID)

	_, err = f.auth.Refresh(f.ctx, sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)

	err := f.auth.ChangePassword(f.ctx, f.admin, "wrong-old-pass", "brand-new-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = f.auth.ChangePassword(f.ctx, f.admin, testPassword, "short")
	var verrs validate.Errs
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, f.auth.ChangePassword(f.ctx, f.admin, testPassword, "brand-new-pass"))
	_, err = f.auth.Login(f.ctx, "admin@jobcards.io", testPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(f.ctx, "admin@jobcards.io", "brand-new-pass")
	assert.NoError(t, err)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	f := newFixture(t)

	created, err := f.auth.EnsureAdmin(f.ctx, "admin@jobcards.io", testPassword)
	require.NoError(t, err)
	assert.False(t, created)

	created, err = f.auth.EnsureAdmin(f.ctx, "", "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestMe_IncludesProvider(t *testing.T) {
	f := newFixture(t)
	company := f.approvedCompany("Acme", "acme.io")
	prov, pp := f.addProvider(company, "Mehmet Usta", "mehmet@acme.io")

	prof, err := f.auth.Me(f.ctx, pp)
	require.NoError(t, err)
	require.NotNil(t, prof.Provider)
	assert.Equal(t, prov.ID, prof.Provider.ID)
	require.NotNil(t, prof.Company)
	assert.Equal(t, models.CompanyApproved, prof.Company.Status)
}
