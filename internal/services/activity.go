package services

import (
	"context"

	"github.com/baharkarakas/jobcard-backend/internal/models"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
)

// record writes an activity row with the same store the caller is using,
// so inside WithTx it commits or rolls back with the change it describes.
func record(ctx context.Context, store repo.Store, l models.ActivityLog) error {
	return store.ActivityLogs().Create(ctx, l)
}
