package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type companiesRepo struct{ q querier }

const companyCols = `id, name, email, phone, address, status, status_reason, owner_user_id, created_at, updated_at`

func scanCompany(row interface{ Scan(...any) error }) (models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Status, &c.StatusReason,
		&c.OwnerUserID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *companiesRepo) Create(ctx context.Context, c models.Company) (models.Company, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	out, err := scanCompany(r.q.QueryRow(ctx,
		`INSERT INTO companies(id, name, email, phone, address, status, owner_user_id)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+companyCols,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.Status, c.OwnerUserID,
	))
	return out, mapErr(err)
}

func (r *companiesRepo) GetByID(ctx context.Context, id string) (models.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx, `SELECT `+companyCols+` FROM companies WHERE id=$1`, id))
	return c, mapErr(err)
}

func (r *companiesRepo) List(ctx context.Context, f repo.CompanyFilter) ([]models.Company, error) {
	f.Page = f.Page.Normalize()
	var w where
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Query != "" {
		w.addAny([]string{"name ILIKE ?", "email ILIKE ?"}, likePattern(f.Query))
	}
	sql := `SELECT ` + companyCols + ` FROM companies` + w.sql() + ` ORDER BY created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *companiesRepo) UpdateStatus(ctx context.Context, id string, from, to models.CompanyStatus, reason string) (models.Company, error) {
	c, err := scanCompany(r.q.QueryRow(ctx,
		`UPDATE companies SET status=$3, status_reason=$4, updated_at=now()
		  WHERE id=$1 AND status=$2
		  RETURNING `+companyCols,
		id, from, to, reason,
	))
	if err = mapErr(err); errors.Is(err, repo.ErrNotFound) {
		return c, repo.ErrStale
	}
	return c, err
}

func (r *companiesRepo) CountByStatus(ctx context.Context) (map[models.CompanyStatus]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, count(*) FROM companies GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.CompanyStatus]int{}
	for rows.Next() {
		var st models.CompanyStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}
