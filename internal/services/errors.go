package services

import (
	"errors"
	"fmt"

	"github.com/baharkarakas/jobcard-backend/internal/jobcard"
	repo "github.com/baharkarakas/jobcard-backend/internal/repository"
	"github.com/baharkarakas/jobcard-backend/internal/validate"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrCompanyLocked      = errors.New("company is rejected or suspended")
	ErrCompanyNotApproved = errors.New("company is not approved yet")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrTooLarge           = errors.New("upload too large")
)

// translate maps repository and lifecycle errors onto service sentinels, keeping the message.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repo.ErrConflict):
		return fmt.Errorf("%w: already exists", ErrConflict)
	case errors.Is(err, repo.ErrStale):
		return fmt.Errorf("%w: modified concurrently, reload and retry", ErrConflict)
	case errors.Is(err, jobcard.ErrNotAllowed), errors.Is(err, jobcard.ErrNotAssigned):
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	case errors.Is(err, jobcard.ErrReasonRequired):
		return validate.Errs{{Field: "reason", Msg: "required"}}
	case errors.Is(err, jobcard.ErrNoProvider):
		return validate.Errs{{Field: "provider_id", Msg: "required"}}
	case errors.Is(err, jobcard.ErrInvalidTransition),
		errors.Is(err, jobcard.ErrPhotoRequired):
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	return err
}
