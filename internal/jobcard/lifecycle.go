// Package jobcard holds the job-card lifecycle: which actor may move a card
// from one status to another, and what each move stamps on the card.
package jobcard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/models"
)

type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionAssign   Action = "assign"
	ActionCancel   Action = "cancel"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAllowed        = errors.New("actor not allowed")
	ErrReasonRequired    = errors.New("decline reason required")
	ErrPhotoRequired     = errors.New("at least one photo is required to complete")
	ErrNotAssigned       = errors.New("job card is not assigned to this provider")
	ErrNoProvider        = errors.New("provider required")
)

type rule struct {
	to    models.JobStatus
	roles []models.Role
}

// transitions: from -> action -> rule. Anything not listed is rejected.
var transitions = map[models.JobStatus]map[Action]rule{
	models.JobPending: {
		ActionAccept:  {to: models.JobAccepted, roles: []models.Role{models.RoleProvider}},
		ActionDecline: {to: models.JobDeclined, roles: []models.Role{models.RoleProvider}},
		ActionAssign:  {to: models.JobPending, roles: []models.Role{models.RoleCompany}},
		ActionCancel:  {to: models.JobCancelled, roles: []models.Role{models.RoleCompany, models.RoleAdmin}},
	},
	models.JobAccepted: {
		ActionStart:  {to: models.JobInProgress, roles: []models.Role{models.RoleProvider}},
		ActionCancel: {to: models.JobCancelled, roles: []models.Role{models.RoleCompany, models.RoleAdmin}},
	},
	models.JobDeclined: {
		ActionAssign: {to: models.JobPending, roles: []models.Role{models.RoleCompany}},
		ActionCancel: {to: models.JobCancelled, roles: []models.Role{models.RoleCompany, models.RoleAdmin}},
	},
	models.JobInProgress: {
		ActionComplete: {to: models.JobCompleted, roles: []models.Role{models.RoleProvider}},
	},
}

// Actor is who is asking for the move. ProviderID is set only for providers.
type Actor struct {
	UserID     string
	Role       models.Role
	ProviderID string
}

// Input carries the per-action payload.
type Input struct {
	Reason        string // decline
	Notes         string // complete
	NewProviderID string // assign
	PhotoCount    int    // complete
}

// Allowed lists the actions role may take on a card in status from.
func Allowed(from models.JobStatus, role models.Role) []Action {
	out := []Action{}
	if from.Terminal() {
		return out
	}
	for _, a := range []Action{ActionAccept, ActionDecline, ActionStart, ActionComplete, ActionAssign, ActionCancel} {
		r, ok := transitions[from][a]
		if ok && hasRole(r.roles, role) {
			out = append(out, a)
		}
	}
	return out
}

// Apply validates the move and returns the updated card. card is not mutated.
func Apply(card models.JobCard, a Action, actor Actor, in Input, now time.Time) (models.JobCard, error) {
	r, ok := transitions[card.Status][a]
	if !ok {
		return card, fmt.Errorf("%w: cannot %s a %s job card", ErrInvalidTransition, a, card.Status)
	}
	if !hasRole(r.roles, actor.Role) {
		return card, fmt.Errorf("%w: %s cannot %s", ErrNotAllowed, actor.Role, a)
	}
	if actor.Role == models.RoleProvider && !card.AssignedTo(actor.ProviderID) {
		return card, ErrNotAssigned
	}

	next := card
	next.Status = r.to
	next.UpdatedAt = now

	switch a {
	case ActionAccept:
		next.AcceptedAt = &now
	case ActionDecline:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			return card, ErrReasonRequired
		}
		next.DeclineReason = reason
	case ActionStart:
		next.StartedAt = &now
	case ActionComplete:
		if in.PhotoCount < 1 {
			return card, ErrPhotoRequired
		}
		next.CompletionNotes = strings.TrimSpace(in.Notes)
		next.CompletedAt = &now
	case ActionAssign:
		if in.NewProviderID == "" {
			return card, ErrNoProvider
		}
		pid := in.NewProviderID
		next.ProviderID = &pid
		next.DeclineReason = ""
		next.AcceptedAt = nil
	case ActionCancel:
		next.CancelledAt = &now
	}
	return next, nil
}

// EventName is the activity-log action and the message routing key for a move.
func EventName(a Action) string {
	switch a {
	case ActionAccept:
		return "job_card.accepted"
	case ActionDecline:
		return "job_card.declined"
	case ActionStart:
		return "job_card.started"
	case ActionComplete:
		return "job_card.completed"
	case ActionAssign:
		return "job_card.assigned"
	case ActionCancel:
		return "job_card.cancelled"
	}
	return "job_card." + string(a)
}

func hasRole(roles []models.Role, r models.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}
