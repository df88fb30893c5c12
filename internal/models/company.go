package models

import "time"

type CompanyStatus string

const (
	CompanyPending   CompanyStatus = "pending"
	CompanyApproved  CompanyStatus = "approved"
	CompanyRejected  CompanyStatus = "rejected"
	CompanySuspended CompanyStatus = "suspended"
)

func (s CompanyStatus) Valid() bool {
	switch s {
	case CompanyPending, CompanyApproved, CompanyRejected, CompanySuspended:
		return true
	}
	return false
}

// CanMoveTo reports whether an admin may move a company from s to next.
// Rejected is terminal.
func (s CompanyStatus) CanMoveTo(next CompanyStatus) bool {
	switch s {
	case CompanyPending:
		return next == CompanyApproved || next == CompanyRejected
	case CompanyApproved:
		return next == CompanySuspended
	case CompanySuspended:
		return next == CompanyApproved
	}
	return false
}

// CanLogin: rejected and suspended companies are locked out, pending ones are read-only.
func (s CompanyStatus) CanLogin() bool { return s == CompanyPending || s == CompanyApproved }

type Company struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	Address      string        `json:"address"`
	Status       CompanyStatus `json:"status"`
	StatusReason string        `json:"status_reason,omitempty"`
	OwnerUserID  string        `json:"owner_user_id"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
