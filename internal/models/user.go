package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCompany  Role = "company"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCompany, RoleProvider:
		return true
	}
	return false
}

type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	FullName            string    `json:"full_name"`
	Phone               string    `json:"phone,omitempty"`
	PasswordHash        string    `json:"-"`
	Role                Role      `json:"role"`
	CompanyID           *string   `json:"company_id,omitempty"`
	IsActive            bool      `json:"is_active"`
	NotificationsSeenAt time.Time `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NormalizeEmail lower-cases and trims; emails are unique case-insensitively.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
