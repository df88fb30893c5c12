package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyStatus_CanMoveTo(t *testing.T) {
	all := []CompanyStatus{CompanyPending, CompanyApproved, CompanyRejected, CompanySuspended}
	allowed := map[[2]CompanyStatus]bool{
		{CompanyPending, CompanyApproved}:   true,
		{CompanyPending, CompanyRejected}:   true,
		{CompanyApproved, CompanySuspended}: true,
		{CompanySuspended, CompanyApproved}: true,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, allowed[[2]CompanyStatus{from, to}], from.CanMoveTo(to))
			})
		}
	}
}

func TestCompanyStatus_CanLogin(t *testing.T) {
	assert.True(t, CompanyPending.CanLogin())
	assert.True(t, CompanyApproved.CanLogin())
	assert.False(t, CompanyRejected.CanLogin())
	assert.False(t, CompanySuspended.CanLogin())
}
