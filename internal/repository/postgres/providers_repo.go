package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type providersRepo struct{ q querier }

// email is joined in from users so listings show the login.
const providerSelect = `SELECT p.id, p.user_id, p.company_id, p.name, u.email, p.phone, p.specialty, p.is_active, p.created_at, p.updated_at
  FROM providers p JOIN users u ON u.id = p.user_id`

func scanProvider(row interface{ Scan(...any) error }) (models.Provider, error) {
	var p models.Provider
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyID, &p.Name, &p.Email, &p.Phone, &p.Specialty,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *providersRepo) Create(ctx context.Context, p models.Provider) (models.Provider, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO providers(id, user_id, company_id, name, phone, specialty, is_active)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.UserID, p.CompanyID, p.Name, p.Phone, p.Specialty, p.IsActive,
	)
	if err != nil {
		return models.Provider{}, mapErr(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *providersRepo) GetByID(ctx context.Context, id string) (models.Provider, error) {
	p, err := scanProvider(r.q.QueryRow(ctx, providerSelect+` WHERE p.id=$1`, id))
	return p, mapErr(err)
}

func (r *providersRepo) GetByUserID(ctx context.Context, userID string) (models.Provider, error) {
	p, err := scanProvider(r.q.QueryRow(ctx, providerSelect+` WHERE p.user_id=$1`, userID))
	return p, mapErr(err)
}

func (r *providersRepo) List(ctx context.Context, f repo.ProviderFilter) ([]models.Provider, error) {
	f.Page = f.Page.Normalize()
	var w where
	if f.CompanyID != "" {
		w.add("p.company_id = ?", f.CompanyID)
	}
	if f.Active != nil {
		w.add("p.is_active = ?", *f.Active)
	}
	if f.Query != "" {
		w.addAny([]string{"p.name ILIKE ?", "p.specialty ILIKE ?", "u.email ILIKE ?"}, likePattern(f.Query))
	}
	sql := providerSelect + w.sql() + ` ORDER BY p.name ASC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *providersRepo) Update(ctx context.Context, p models.Provider) (models.Provider, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE providers SET name=$2, phone=$3, specialty=$4, updated_at=now() WHERE id=$1`,
		p.ID, p.Name, p.Phone, p.Specialty,
	)
	if err != nil {
		return models.Provider{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return models.Provider{}, repo.ErrNotFound
	}
	return r.GetByID(ctx, p.ID)
}

func (r *providersRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx, `UPDATE providers SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *providersRepo) CountByActive(ctx context.Context, companyID string) (map[bool]int, error) {
	rows, err := r.q.Query(ctx, `SELECT is_active, count(*) FROM providers WHERE company_id=$1 GROUP BY is_active`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[bool]int{}
	for rows.Next() {
		var active bool
		var n int
		if err := rows.Scan(&active, &n); err != nil {
			return nil, err
		}
		out[active] = n
	}
	return out, rows.Err()
}
