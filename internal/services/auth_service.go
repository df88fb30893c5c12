package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/metrics"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

type AuthService struct {
	store repo.Store
	tm    *auth.TokenManager
	log   *slog.Logger
}

func NewAuthService(store repo.Store, tm *auth.TokenManager, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{store: store, tm: tm, log: log}
}

type RegisterCompanyInput struct {
	CompanyName    string `json:"company_name"`
	CompanyEmail   string `json:"company_email"`
	CompanyPhone   string `json:"company_phone"`
	CompanyAddress string `json:"company_address"`
	OwnerName      string `json:"owner_name"`
	OwnerEmail     string `json:"owner_email"`
	OwnerPhone     string `json:"owner_phone"`
	Password       string `json:"password"`
}

func (in RegisterCompanyInput) validate() error {
	return validate.Collect(
		validate.MinLen("company_name", in.CompanyName, 2),
		validate.MaxLen("company_name", in.CompanyName, 200),
		validate.Email("company_email", in.CompanyEmail),
		validate.MinLen("owner_name", in.OwnerName, 2),
		validate.Email("owner_email", in.OwnerEmail),
		validate.If(auth.ValidatePassword(in.Password) != nil, "password", auth.ErrWeakPassword.Error()),
	)
}

type Profile struct {
	User     models.User      `json:"user"`
	Company  *models.Company  `json:"company,omitempty"`
	Provider *models.Provider `json:"provider,omitempty"`
}

type Session struct {
	auth.Pair
	Profile Profile
}

// RegisterCompany creates the owner account and the pending company atomically.
func (s *AuthService) RegisterCompany(ctx context.Context, in RegisterCompanyInput) (Profile, error) {
	if err := in.validate(); err != nil {
		return Profile{}, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Profile{}, err
	}

	companyID := uuid.NewString()
	var out Profile
	err = s.store.WithTx(ctx, func(tx repo.Store) error {
		u, err := tx.Users().Create(ctx, models.User{
			Email:        models.NormalizeEmail(in.OwnerEmail),
			FullName:     strings.TrimSpace(in.OwnerName),
			Phone:        strings.TrimSpace(in.OwnerPhone),
			PasswordHash: hash,
			Role:         models.RoleCompany,
			CompanyID:    &companyID,
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		c, err := tx.Companies().Create(ctx, models.Company{
			ID:          companyID,
			Name:        strings.TrimSpace(in.CompanyName),
			Email:       models.NormalizeEmail(in.CompanyEmail),
			Phone:       strings.TrimSpace(in.CompanyPhone),
			Address:     strings.TrimSpace(in.CompanyAddress),
			Status:      models.CompanyPending,
			OwnerUserID: u.ID,
		})
		if err != nil {
			return err
		}
		out = Profile{User: u, Company: &c}
		return record(ctx, tx, models.ActivityLog{
			CompanyID:   &c.ID,
			ActorUserID: &u.ID,
			Action:      "company.registered",
			Message:     fmt.Sprintf("%s registered and is awaiting approval", c.Name),
		})
	})
	if err != nil {
		return Profile{}, translate(err)
	}
	metrics.CompanyRegistrations.Inc()
	s.log.Info("company registered", "company_id", companyID, "owner_id", out.User.ID)
	return out, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		// burn comparable time so unknown emails are not distinguishable
		auth.BurnCompare(password)
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return Session{}, ErrInvalidCredentials
	}
	sess, err := s.issue(ctx, u)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("refused").Inc()
		return Session{}, err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return sess, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tm.ParseRefresh(refreshToken)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.store.Users().GetByID(ctx, claims.UserID)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, u)
}

// issue re-checks that the account may still sign in and mints a token pair.
func (s *AuthService) issue(ctx context.Context, u models.User) (Session, error) {
	if !u.IsActive {
		return Session{}, ErrAccountDisabled
	}
	prof, err := s.profile(ctx, u)
	if err != nil {
		return Session{}, err
	}
	if prof.Company != nil && !prof.Company.Status.CanLogin() {
		return Session{}, ErrCompanyLocked
	}
	if prof.Provider != nil && !prof.Provider.IsActive {
		return Session{}, ErrAccountDisabled
	}

	sub := auth.Subject{UserID: u.ID, Role: string(u.Role)}
	if u.CompanyID != nil {
		sub.CompanyID = *u.CompanyID
	}
	pair, err := s.tm.GeneratePair(sub)
	if err != nil {
		return Session{}, err
	}
	return Session{Pair: pair, Profile: prof}, nil
}

func (s *AuthService) profile(ctx context.Context, u models.User) (Profile, error) {
	prof := Profile{User: u}
	if u.CompanyID != nil {
		c, err := s.store.Companies().GetByID(ctx, *u.CompanyID)
		if err != nil {
			return Profile{}, translate(err)
		}
		prof.Company = &c
	}
	if u.Role == models.RoleProvider {
		p, err := s.store.Providers().GetByUserID(ctx, u.ID)
		if err != nil {
			return Profile{}, translate(err)
		}
		prof.Provider = &p
	}
	return prof, nil
}

func (s *AuthService) Me(ctx context.Context, p Principal) (Profile, error) {
	u, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return Profile{}, translate(err)
	}
	return s.profile(ctx, u)
}

func (s *AuthService) ChangePassword(ctx context.Context, p Principal, oldPassword, newPassword string) error {
	if err := validate.Collect(
		validate.Required("old_password", oldPassword),
		validate.If(auth.ValidatePassword(newPassword) != nil, "new_password", auth.ErrWeakPassword.Error()),
	); err != nil {
		return err
	}
	u, err := s.store.Users().GetByID(ctx, p.UserID)
	if err != nil {
		return translate(err)
	}
	if auth.VerifyPassword(oldPassword, u.PasswordHash) != nil {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return translate(s.store.Users().SetPasswordHash(ctx, u.ID, hash))
}

// EnsureAdmin creates the bootstrap admin when the email is not taken yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	if err := auth.ValidatePassword(password); err != nil {
		return false, err
	}
	_, err := s.store.Users().GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	_, err = s.store.Users().Create(ctx, models.User{
		Email:        models.NormalizeEmail(email),
		FullName:     "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
	})
	if errors.Is(err, repo.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.log.Info("bootstrap admin created", "email", models.NormalizeEmail(email))
	return true, nil
}
