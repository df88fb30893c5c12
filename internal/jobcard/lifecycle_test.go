package jobcard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/jobcard-backend/internal/models"
)

func strp(s string) *string { return &s }

func card(status models.JobStatus) models.JobCard {
	return models.JobCard{
		ID:         "job-1",
		CompanyID:  "co-1",
		ProviderID: strp("prov-1"),
		Status:     status,
	}
}

var (
	provider = Actor{UserID: "u-prov", Role: models.RoleProvider, ProviderID: "prov-1"}
	other    = Actor{UserID: "u-other", Role: models.RoleProvider, ProviderID: "prov-2"}
	company  = Actor{UserID: "u-co", Role: models.RoleCompany}
	admin    = Actor{UserID: "u-admin", Role: models.RoleAdmin}
	now      = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)

func TestApply_HappyPath(t *testing.T) {
	c := card(models.JobPending)

	c, err := Apply(c, ActionAccept, provider, Input{}, now)
	require.NoError(t, err)
	assert.Equal(t, models.JobAccepted, c.Status)
	require.NotNil(t, c.AcceptedAt)

	c, err = Apply(c, ActionStart, provider, Input{}, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.JobInProgress, c.Status)
	require.NotNil(t, c.StartedAt)

	c, err = Apply(c, ActionComplete, provider, Input{Notes: "  fixed the leak ", PhotoCount: 2}, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.JobCompleted, c.Status)
	assert.Equal(t, "fixed the leak", c.CompletionNotes)
	require.NotNil(t, c.CompletedAt)
	assert.True(t, c.Status.Terminal())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	c := card(models.JobPending)
	_, err := Apply(c, ActionAccept, provider, Input{}, now)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, c.Status)
	assert.Nil(t, c.AcceptedAt)
}

func TestApply_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		status models.JobStatus
		action Action
		actor  Actor
		in     Input
		want   error
	}{
		{"complete from pending", models.JobPending, ActionComplete, provider, Input{PhotoCount: 1}, ErrInvalidTransition},
		{"start from pending", models.JobPending, ActionStart, provider, Input{}, ErrInvalidTransition},
		{"accept completed", models.JobCompleted, ActionAccept, provider, Input{}, ErrInvalidTransition},
		{"cancel completed", models.JobCompleted, ActionCancel, company, Input{}, ErrInvalidTransition},
		{"cancel in progress", models.JobInProgress, ActionCancel, company, Input{}, ErrInvalidTransition},
		{"reassign accepted", models.JobAccepted, ActionAssign, company, Input{NewProviderID: "prov-2"}, ErrInvalidTransition},
		{"company accepts", models.JobPending, ActionAccept, company, Input{}, ErrNotAllowed},
		{"provider cancels", models.JobPending, ActionCancel, provider, Input{}, ErrNotAllowed},
		{"admin assigns", models.JobPending, ActionAssign, admin, Input{NewProviderID: "prov-2"}, ErrNotAllowed},
		{"other provider accepts", models.JobPending, ActionAccept, other, Input{}, ErrNotAssigned},
		{"decline without reason", models.JobPending, ActionDecline, provider, Input{Reason: "   "}, ErrReasonRequired},
		{"complete without photo", models.JobInProgress, ActionComplete, provider, Input{}, ErrPhotoRequired},
		{"assign without provider", models.JobDeclined, ActionAssign, company, Input{}, ErrNoProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(card(tt.status), tt.action, tt.actor, tt.in, now)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApply_UnassignedCardRefusesProvider(t *testing.T) {
	c := card(models.JobPending)
	c.ProviderID = nil
	_, err := Apply(c, ActionAccept, provider, Input{}, now)
	assert.ErrorIs(t, err, ErrNotAssigned)
}

func TestApply_DeclineThenReassign(t *testing.T) {
	c, err := Apply(card(models.JobPending), ActionDecline, provider, Input{Reason: "out of area"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.JobDeclined, c.Status)
	assert.Equal(t, "out of area", c.DeclineReason)

	c, err = Apply(c, ActionAssign, company, Input{NewProviderID: "prov-2"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, c.Status)
	assert.Empty(t, c.DeclineReason)
	assert.True(t, c.AssignedTo("prov-2"))

	c, err = Apply(c, ActionAccept, other, Input{}, now)
	require.NoError(t, err)
	assert.Equal(t, models.JobAccepted, c.Status)
}

func TestApply_CancelStampsTime(t *testing.T) {
	for _, st := range []models.JobStatus{models.JobPending, models.JobAccepted, models.JobDeclined} {
		c, err := Apply(card(st), ActionCancel, admin, Input{}, now)
		require.NoError(t, err, st)
		assert.Equal(t, models.JobCancelled, c.Status)
		require.NotNil(t, c.CancelledAt)
		assert.Equal(t, now, *c.CancelledAt)
	}
}

func TestAllowed(t *testing.T) {
	assert.ElementsMatch(t, []Action{ActionAccept, ActionDecline}, Allowed(models.JobPending, models.RoleProvider))
	assert.ElementsMatch(t, []Action{ActionAssign, ActionCancel}, Allowed(models.JobPending, models.RoleCompany))
	assert.ElementsMatch(t, []Action{ActionCancel}, Allowed(models.JobAccepted, models.RoleAdmin))
	assert.Empty(t, Allowed(models.JobCompleted, models.RoleCompany))
	assert.Empty(t, Allowed(models.JobCancelled, models.RoleProvider))
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "job_card.completed", EventName(ActionComplete))
	assert.Equal(t, "job_card.assigned", EventName(ActionAssign))
}
