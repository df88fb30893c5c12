package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type jobCardsRepo struct{ q querier }

const jobCardCols = `id, company_id, provider_id, title, description, customer_name, customer_phone, location,
  priority, status, scheduled_for, decline_reason, completion_notes, created_by,
  accepted_at, started_at, completed_at, cancelled_at, created_at, updated_at`

func scanJobCard(row interface{ Scan(...any) error }) (models.JobCard, error) {
	var j models.JobCard
	err := row.Scan(&j.ID, &j.CompanyID, &j.ProviderID, &j.Title, &j.Description, &j.CustomerName,
		&j.CustomerPhone, &j.Location, &j.Priority, &j.Status, &j.ScheduledFor, &j.DeclineReason,
		&j.CompletionNotes, &j.CreatedBy, &j.AcceptedAt, &j.StartedAt, &j.CompletedAt, &j.CancelledAt,
		&j.CreatedAt, &j.UpdatedAt)
	return j, err
}

func (r *jobCardsRepo) Create(ctx context.Context, j models.JobCard) (models.JobCard, error) {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	out, err := scanJobCard(r.q.QueryRow(ctx,
		`INSERT INTO job_cards(id, company_id, provider_id, title, description, customer_name, customer_phone,
		                       location, priority, status, scheduled_for, created_by)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+jobCardCols,
		j.ID, j.CompanyID, j.ProviderID, j.Title, j.Description, j.CustomerName, j.CustomerPhone,
		j.Location, j.Priority, j.Status, j.ScheduledFor, j.CreatedBy,
	))
	return out, mapErr(err)
}

func (r *jobCardsRepo) GetByID(ctx context.Context, id string) (models.JobCard, error) {
	j, err := scanJobCard(r.q.QueryRow(ctx, `SELECT `+jobCardCols+` FROM job_cards WHERE id=$1`, id))
	return j, mapErr(err)
}

func (r *jobCardsRepo) List(ctx context.Context, f repo.JobCardFilter) ([]models.JobCard, error) {
	f.Page = f.Page.Normalize()
	var w where
	if f.CompanyID != "" {
		w.add("company_id = ?", f.CompanyID)
	}
	if f.ProviderID != "" {
		w.add("provider_id = ?", f.ProviderID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Query != "" {
		w.addAny([]string{"title ILIKE ?", "customer_name ILIKE ?", "location ILIKE ?", "description ILIKE ?"}, likePattern(f.Query))
	}
	sql := `SELECT ` + jobCardCols + ` FROM job_cards` + w.sql() + ` ORDER BY created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobCard
	for rows.Next() {
		j, err := scanJobCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Update is a compare-and-set on status: a concurrent move makes it return ErrStale.
func (r *jobCardsRepo) Update(ctx context.Context, j models.JobCard, expect models.JobStatus) (models.JobCard, error) {
	out, err := scanJobCard(r.q.QueryRow(ctx,
		`UPDATE job_cards SET
		    provider_id=$3, title=$4, description=$5, customer_name=$6, customer_phone=$7, location=$8,
		    priority=$9, status=$10, scheduled_for=$11, decline_reason=$12, completion_notes=$13,
		    accepted_at=$14, started_at=$15, completed_at=$16, cancelled_at=$17, updated_at=now()
		  WHERE id=$1 AND status=$2
		  RETURNING `+jobCardCols,
		j.ID, expect, j.ProviderID, j.Title, j.Description, j.CustomerName, j.CustomerPhone, j.Location,
		j.Priority, j.Status, j.ScheduledFor, j.DeclineReason, j.CompletionNotes,
		j.AcceptedAt, j.StartedAt, j.CompletedAt, j.CancelledAt,
	))
	if err = mapErr(err); errors.Is(err, repo.ErrNotFound) {
		return out, repo.ErrStale
	}
	return out, err
}

func (r *jobCardsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM job_cards WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// CountByStatus counts every card when companyID is empty.
func (r *jobCardsRepo) CountByStatus(ctx context.Context, companyID string) (map[models.JobStatus]int, error) {
	var w where
	if companyID != "" {
		w.add("company_id = ?", companyID)
	}
	rows, err := r.q.Query(ctx, `SELECT status, count(*) FROM job_cards`+w.sql()+` GROUP BY status`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.JobStatus]int{}
	for rows.Next() {
		var st models.JobStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}
