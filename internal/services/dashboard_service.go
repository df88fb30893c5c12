package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type DashboardService struct {
	store repo.Store
}

func NewDashboardService(store repo.Store) *DashboardService {
	return &DashboardService{store: store}
}

// CompanyStats is readable by pending companies too, so no approval gate here.
func (s *DashboardService) CompanyStats(ctx context.Context, p Principal) (models.CompanyStats, error) {
	if err := requireRole(p, models.RoleCompany); err != nil {
		return models.CompanyStats{}, err
	}
	byStatus, err := s.store.JobCards().CountByStatus(ctx, p.CompanyID)
	if err != nil {
		return models.CompanyStats{}, err
	}
	provs, err := s.store.Providers().CountByActive(ctx, p.CompanyID)
	if err != nil {
		return models.CompanyStats{}, err
	}
	return models.CompanyStats{
		JobCardsByStatus: fillStatuses(byStatus),
		ActiveProviders:  provs[true],
		TotalProviders:   provs[true] + provs[false],
	}, nil
}

func (s *DashboardService) AdminStats(ctx context.Context, p Principal) (models.AdminStats, error) {
	if err := requireRole(p, models.RoleAdmin); err != nil {
		return models.AdminStats{}, err
	}
	var out models.AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.store.Companies().CountByStatus(gctx)
		out.CompaniesByStatus = m
		return err
	})
	g.Go(func() error {
		m, err := s.store.Users().CountByRole(gctx)
		out.UsersByRole = m
		return err
	})
	g.Go(func() error {
		m, err := s.store.JobCards().CountByStatus(gctx, "")
		out.JobCardsByStatus = fillStatuses(m)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.AdminStats{}, err
	}
	return out, nil
}

// fillStatuses reports every status, zero when absent.
func fillStatuses(m map[models.JobStatus]int) map[models.JobStatus]int {
	out := make(map[models.JobStatus]int, len(models.AllJobStatuses))
	for _, st := range models.AllJobStatuses {
		out[st] = m[st]
	}
	return out
}
