package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

type usersRepo struct{ q querier }

const userCols = `id, email, full_name, phone, password_hash, role, company_id, is_active, notifications_seen_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.PasswordHash, &u.Role, &u.CompanyID,
		&u.IsActive, &u.NotificationsSeenAt, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	row := r.q.QueryRow(ctx,
		`INSERT INTO users(id, email, full_name, phone, password_hash, role, company_id, is_active)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+userCols,
		u.ID, u.Email, u.FullName, u.Phone, u.PasswordHash, u.Role, u.CompanyID, u.IsActive,
	)
	out, err := scanUser(row)
	return out, mapErr(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
	return u, mapErr(err)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email=$1`, models.NormalizeEmail(email)))
	return u, mapErr(err)
}

func (r *usersRepo) List(ctx context.Context, f repo.UserFilter) ([]models.User, error) {
	f.Page = f.Page.Normalize()
	var w where
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.Query != "" {
		w.addAny([]string{"email ILIKE ?", "full_name ILIKE ?"}, likePattern(f.Query))
	}
	sql := `SELECT ` + userCols + ` FROM users` + w.sql() + ` ORDER BY created_at DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, sql, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active=$2, updated_at=now() WHERE id=$1`, id, active)
}

func (r *usersRepo) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`, id, hash)
}

func (r *usersRepo) MarkNotificationsSeen(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET notifications_seen_at=$2 WHERE id=$1`, id, at)
}

func (r *usersRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	rows, err := r.q.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[models.Role]int{}
	for rows.Next() {
		var role models.Role
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}
