package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/baharkarakas/jobcard-backend/internal/models"
)

type jobPhotosRepo struct{ q querier }

const jobPhotoCols = `id, job_card_id, uploaded_by, object_key, content_type, size_bytes, caption, created_at`

func scanJobPhoto(row interface{ Scan(...any) error }) (models.JobPhoto, error) {
	var p models.JobPhoto
	err := row.Scan(&p.ID, &p.JobCardID, &p.UploadedBy, &p.ObjectKey, &p.ContentType, &p.SizeBytes, &p.Caption, &p.CreatedAt)
	return p, err
}

func (r *jobPhotosRepo) Create(ctx context.Context, p models.JobPhoto) (models.JobPhoto, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	out, err := scanJobPhoto(r.q.QueryRow(ctx,
		`INSERT INTO job_photos(id, job_card_id, uploaded_by, object_key, content_type, size_bytes, caption)
		 VALUES($1,$2,$3,$4,$5,$6,$7)
		 RETURNING `+jobPhotoCols,
		p.ID, p.JobCardID, p.UploadedBy, p.ObjectKey, p.ContentType, p.SizeBytes, p.Caption,
	))
	return out, mapErr(err)
}

func (r *jobPhotosRepo) GetByID(ctx context.Context, id string) (models.JobPhoto, error) {
	p, err := scanJobPhoto(r.q.QueryRow(ctx, `SELECT `+jobPhotoCols+` FROM job_photos WHERE id=$1`, id))
	return p, mapErr(err)
}

func (r *jobPhotosRepo) ListByJobCard(ctx context.Context, jobCardID string) ([]models.JobPhoto, error) {
	rows, err := r.q.Query(ctx, `SELECT `+jobPhotoCols+` FROM job_photos WHERE job_card_id=$1 ORDER BY created_at ASC`, jobCardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobPhoto
	for rows.Next() {
		p, err := scanJobPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *jobPhotosRepo) CountByJobCard(ctx context.Context, jobCardID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM job_photos WHERE job_card_id=$1`, jobCardID).Scan(&n)
	return n, err
}
