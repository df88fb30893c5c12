package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type activityLogsRepo struct{ q querier }

const activityCols = `id, company_id, provider_id, job_card_id, actor_user_id, action, message, details, created_at`

func (r *activityLogsRepo) Create(ctx context.Context, l models.ActivityLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	details := l.Details
	if details == nil {
		details = map[string]any{}
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO activity_logs(id, company_id, provider_id, job_card_id, actor_user_id, action, message, details)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		l.ID, l.CompanyID, l.ProviderID, l.JobCardID, l.ActorUserID, l.Action, l.Message, details,
	)
	return mapErr(err)
}

// visibility: a provider sees its own rows, a company sees every row of the company.
func activityWhere(f repo.ActivityFilter) where {
	var w where
	if f.ProviderID != "" {
		w.add("provider_id = ?", f.ProviderID)
	} else if f.CompanyID != "" {
		w.add("company_id = ?", f.CompanyID)
	}
	if !f.Since.IsZero() {
		w.add("created_at > ?", f.Since)
	}
	return w
}

func (r *activityLogsRepo) List(ctx context.Context, f repo.ActivityFilter) ([]models.ActivityLog, error) {
	limit := repo.Page{Limit: f.Limit}.Normalize().Limit
	w := activityWhere(f)
	sql := `SELECT ` + activityCols + ` FROM activity_logs` + w.sql() + ` ORDER BY created_at DESC` + w.page(limit, 0)

	rows, err := r.q.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ActivityLog
	for rows.Next() {
		var l models.ActivityLog
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.ProviderID, &l.JobCardID, &l.ActorUserID,
			&l.Action, &l.Message, &l.Details, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *activityLogsRepo) CountSince(ctx context.Context, f repo.ActivityFilter) (int, error) {
	w := activityWhere(f)
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM activity_logs`+w.sql(), w.args...).Scan(&n)
	return n, err
}
