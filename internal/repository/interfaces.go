package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrStale: a conditional update matched no row because the row moved on.
	ErrStale = errors.New("stale write")
)

type Page struct {
	Limit  int
	Offset int
}

// Normalize clamps to 1..200, default 50.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type UserFilter struct {
	Role  models.Role
	Query string
	Page
}

type CompanyFilter struct {
	Status models.CompanyStatus
	Query  string
	Page
}

type ProviderFilter struct {
	CompanyID string
	Active    *bool
	Query     string
	Page
}

type JobCardFilter struct {
	CompanyID  string
	ProviderID string
	Status     models.JobStatus
	Query      string
	Page
}

// ActivityFilter: empty CompanyID and ProviderID means every row (admin view).
type ActivityFilter struct {
	CompanyID  string
	ProviderID string
	Since      time.Time
	Limit      int
}

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, f UserFilter) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	MarkNotificationsSeen(ctx context.Context, id string, at time.Time) error
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}

type Companies interface {
	Create(ctx context.Context, c models.Company) (models.Company, error)
	GetByID(ctx context.Context, id string) (models.Company, error)
	List(ctx context.Context, f CompanyFilter) ([]models.Company, error)
	// UpdateStatus only succeeds while the row still has status from.
	UpdateStatus(ctx context.Context, id string, from, to models.CompanyStatus, reason string) (models.Company, error)
	CountByStatus(ctx context.Context) (map[models.CompanyStatus]int, error)
}

type Providers interface {
	Create(ctx context.Context, p models.Provider) (models.Provider, error)
	GetByID(ctx context.Context, id string) (models.Provider, error)
	GetByUserID(ctx context.Context, userID string) (models.Provider, error)
	List(ctx context.Context, f ProviderFilter) ([]models.Provider, error)
	Update(ctx context.Context, p models.Provider) (models.Provider, error)
	SetActive(ctx context.Context, id string, active bool) error
	// CountByActive groups a company's providers by is_active.
	CountByActive(ctx context.Context, companyID string) (map[bool]int, error)
}

type JobCards interface {
	Create(ctx context.Context, j models.JobCard) (models.JobCard, error)
	GetByID(ctx context.Context, id string) (models.JobCard, error)
	List(ctx context.Context, f JobCardFilter) ([]models.JobCard, error)
	// Update writes the editable fields, guarded on the status read by the caller.
	Update(ctx context.Context, j models.JobCard, expect models.JobStatus) (models.JobCard, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, companyID string) (map[models.JobStatus]int, error)
}

type JobPhotos interface {
	Create(ctx context.Context, p models.JobPhoto) (models.JobPhoto, error)
	GetByID(ctx context.Context, id string) (models.JobPhoto, error)
	ListByJobCard(ctx context.Context, jobCardID string) ([]models.JobPhoto, error)
	CountByJobCard(ctx context.Context, jobCardID string) (int, error)
}

type ActivityLogs interface {
	Create(ctx context.Context, l models.ActivityLog) error
	List(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error)
	CountSince(ctx context.Context, f ActivityFilter) (int, error)
}

// Store groups the repositories. WithTx runs fn against a transactional view.
type Store interface {
	Users() Users
	Companies() Companies
	Providers() Providers
	JobCards() JobCards
	JobPhotos() JobPhotos
	ActivityLogs() ActivityLogs

	// Atomik iş bloğu: tek DB transaction'ı içinde çalıştır.
	WithTx(ctx context.Context, fn func(Store) error) error
}
